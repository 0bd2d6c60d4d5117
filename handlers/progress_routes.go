// handlers/progress_routes.go
package handlers

import (
	"errors"
	"log"
	"time"
	"unicode/utf8"

	"galaxy-learn-backend/middleware"
	"galaxy-learn-backend/models"
	"galaxy-learn-backend/services"
	"galaxy-learn-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// RoutePrefix is the fixed mount point for every endpoint.
const RoutePrefix = "/api/game"

const maxAchievementIDLen = 100

func SetupProgressRoutes(app *fiber.App, progress *services.ProgressService, achievements *services.AchievementService, auth services.AuthClient) {
	// 🔐 Secured routes — every one requires a valid bearer token
	secured := app.Group(RoutePrefix, middleware.RequireUser(auth))

	secured.Post("/initialize-user", func(c *fiber.Ctx) error {
		ident := middleware.IdentityFrom(c)

		type Req struct {
			Username string `json:"username"`
		}
		var req Req
		_ = c.BodyParser(&req) // body is optional

		username := ident.Username
		if s := utils.SanitizeText(req.Username); s != "" {
			username = s
		}

		prog, err := progress.FetchOrInit(c.UserContext(), ident.ID, username, ident.Email)
		if err != nil {
			return internalError(c, "failed to initialize user", err)
		}

		// Older records may predate usernames and handles
		changed := false
		if prog.Username == "" && username != "" {
			prog.Username = username
			changed = true
		}
		if prog.Handle == "" && prog.Username != "" {
			prog.Handle = utils.HandleFromUsername(prog.Username)
			changed = true
		}
		if changed {
			prog.UpdatedAt = time.Now()
			if err := progress.Save(c.UserContext(), prog); err != nil {
				return internalError(c, "failed to save user", err)
			}
		}

		return respondUser(c, prog)
	})

	secured.Get("/profile", func(c *fiber.Ctx) error {
		ident := middleware.IdentityFrom(c)

		prog, err := progress.FetchOrInit(c.UserContext(), ident.ID, ident.Username, ident.Email)
		if err != nil {
			return internalError(c, "failed to fetch profile", err)
		}

		name := prog.Name
		if name == "" {
			name = ident.Name
		}
		email := prog.Email
		if email == "" {
			email = ident.Email
		}

		// Account fields from the auth gateway override stale stored copies
		type ProfileUser struct {
			models.UserProgress
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		return c.JSON(fiber.Map{
			"success": true,
			"user":    ProfileUser{UserProgress: *prog, Name: name, Email: email},
		})
	})

	secured.Post("/update-progress", func(c *fiber.Ctx) error {
		ident := middleware.IdentityFrom(c)

		type Req struct {
			XP                *float64 `json:"xp"`
			CompletedMissions *float64 `json:"completedMissions"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.XP == nil || req.CompletedMissions == nil {
			return badRequest(c, "Valores de progresso inválidos")
		}
		xp, ok := asNonNegativeInt(*req.XP)
		if !ok {
			return badRequest(c, "xp deve ser um número inteiro não negativo")
		}
		completed, ok := asNonNegativeInt(*req.CompletedMissions)
		if !ok {
			return badRequest(c, "completedMissions deve ser um número inteiro não negativo")
		}

		prog, err := progress.FetchOrInit(c.UserContext(), ident.ID, ident.Username, ident.Email)
		if err != nil {
			return internalError(c, "failed to fetch progress", err)
		}

		if err := services.ValidateProgressUpdate(prog, xp, completed); err != nil {
			switch {
			case errors.Is(err, services.ErrXPDecrease):
				return badRequest(c, "XP não pode diminuir")
			case errors.Is(err, services.ErrMissionsDecrease):
				return badRequest(c, "Missões completadas não podem diminuir")
			default:
				return badRequest(c, "Valores de progresso inválidos")
			}
		}

		prog.XP = xp
		prog.Level = services.LevelForXP(xp)
		prog.CompletedMissions = completed
		prog.UpdatedAt = time.Now()

		if err := progress.Save(c.UserContext(), prog); err != nil {
			return internalError(c, "failed to save progress", err)
		}
		return respondUser(c, prog)
	})

	secured.Post("/complete-mission", func(c *fiber.Ctx) error {
		ident := middleware.IdentityFrom(c)

		type Req struct {
			MissionXP *float64 `json:"missionXP"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.MissionXP == nil {
			return badRequest(c, "missionXP deve ser um número inteiro positivo")
		}
		missionXP, ok := asNonNegativeInt(*req.MissionXP)
		if !ok || missionXP <= 0 {
			return badRequest(c, "missionXP deve ser um número inteiro positivo")
		}

		prog, err := progress.FetchOrInit(c.UserContext(), ident.ID, ident.Username, ident.Email)
		if err != nil {
			return internalError(c, "failed to fetch progress", err)
		}

		services.ApplyMissionCompletion(prog, missionXP)

		if err := progress.Save(c.UserContext(), prog); err != nil {
			return internalError(c, "failed to save progress", err)
		}
		log.Printf("🚀 Mission completed: %s → XP=%d, Lvl=%d, Missions=%d",
			ident.ID, prog.XP, prog.Level, prog.CompletedMissions)
		return respondUser(c, prog)
	})

	secured.Post("/unlock-planet", func(c *fiber.Ctx) error {
		ident := middleware.IdentityFrom(c)

		type Req struct {
			PlanetID *float64 `json:"planetId"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.PlanetID == nil {
			return badRequest(c, "planetId inválido")
		}
		planetID, ok := asNonNegativeInt(*req.PlanetID)
		if !ok || planetID <= 0 {
			return badRequest(c, "planetId inválido")
		}

		prog, err := progress.FetchOrInit(c.UserContext(), ident.ID, ident.Username, ident.Email)
		if err != nil {
			return internalError(c, "failed to fetch progress", err)
		}

		if services.ApplyPlanetUnlock(prog, planetID) {
			if err := progress.Save(c.UserContext(), prog); err != nil {
				return internalError(c, "failed to save progress", err)
			}
			log.Printf("🪐 Planet unlocked: %d → %s", planetID, ident.ID)
		}
		return respondUser(c, prog)
	})

	secured.Post("/update-name", func(c *fiber.Ctx) error {
		ident := middleware.IdentityFrom(c)

		type Req struct {
			Name string `json:"name"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "O nome deve ter entre 3 e 50 caracteres")
		}
		name := utils.SanitizeText(req.Name)
		if n := utf8.RuneCountInString(name); name == "" || n < 3 || n > 50 {
			return badRequest(c, "O nome deve ter entre 3 e 50 caracteres")
		}

		prog, err := progress.FetchOrInit(c.UserContext(), ident.ID, ident.Username, ident.Email)
		if err != nil {
			return internalError(c, "failed to fetch progress", err)
		}

		prog.Name = name
		prog.UpdatedAt = time.Now()

		if err := progress.Save(c.UserContext(), prog); err != nil {
			return internalError(c, "failed to save name", err)
		}
		return respondUser(c, prog)
	})

	secured.Post("/update-avatar", func(c *fiber.Ctx) error {
		ident := middleware.IdentityFrom(c)

		type Req struct {
			AvatarID string `json:"avatarId"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "avatarId inválido")
		}
		avatarID := utils.SanitizeText(req.AvatarID)
		if avatarID == "" {
			return badRequest(c, "avatarId inválido")
		}

		prog, err := progress.FetchOrInit(c.UserContext(), ident.ID, ident.Username, ident.Email)
		if err != nil {
			return internalError(c, "failed to fetch progress", err)
		}

		prog.AvatarID = avatarID
		prog.UpdatedAt = time.Now()

		if err := progress.Save(c.UserContext(), prog); err != nil {
			return internalError(c, "failed to save avatar", err)
		}
		return respondUser(c, prog)
	})

	secured.Get("/achievements", func(c *fiber.Ctx) error {
		ident := middleware.IdentityFrom(c)

		list, err := achievements.List(c.UserContext(), ident.ID)
		if err != nil {
			return internalError(c, "failed to fetch achievements", err)
		}
		return c.JSON(fiber.Map{
			"success":      true,
			"achievements": list,
		})
	})

	secured.Post("/unlock-achievement", func(c *fiber.Ctx) error {
		ident := middleware.IdentityFrom(c)

		type Req struct {
			AchievementID string `json:"achievementId"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "achievementId inválido")
		}
		achievementID := utils.SanitizeText(req.AchievementID)
		if achievementID == "" || len(achievementID) > maxAchievementIDLen {
			return badRequest(c, "achievementId inválido")
		}

		list, isNew, err := achievements.Unlock(c.UserContext(), ident, achievementID)
		if err != nil {
			return internalError(c, "failed to unlock achievement", err)
		}
		return c.JSON(fiber.Map{
			"success":      true,
			"achievements": list,
			"isNew":        isNew,
		})
	})

	secured.Post("/update-mission-stats", func(c *fiber.Ctx) error {
		ident := middleware.IdentityFrom(c)

		type Req struct {
			IsPerfect        *bool                  `json:"isPerfect"`
			IsFast           *bool                  `json:"isFast"`
			QuestionsCorrect map[string]interface{} `json:"questionsCorrect"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Estatísticas de missão inválidas")
		}

		prog, err := progress.FetchOrInit(c.UserContext(), ident.ID, ident.Username, ident.Email)
		if err != nil {
			return internalError(c, "failed to fetch progress", err)
		}

		isPerfect := req.IsPerfect != nil && *req.IsPerfect
		isFast := req.IsFast != nil && *req.IsFast
		services.MergeMissionStats(prog, isPerfect, isFast, req.QuestionsCorrect)

		if err := progress.Save(c.UserContext(), prog); err != nil {
			return internalError(c, "failed to save mission stats", err)
		}
		return respondUser(c, prog)
	})
}

// asNonNegativeInt accepts only whole, non-negative JSON numbers.
func asNonNegativeInt(f float64) (int, bool) {
	n := int(f)
	if float64(n) != f || n < 0 {
		return 0, false
	}
	return n, true
}

func respondUser(c *fiber.Ctx, prog *models.UserProgress) error {
	return c.JSON(fiber.Map{
		"success": true,
		"user":    prog,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func internalError(c *fiber.Ctx, what string, err error) error {
	log.Printf("❌ %s: %v", what, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Erro interno do servidor",
	})
}
