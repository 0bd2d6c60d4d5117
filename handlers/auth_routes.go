// handlers/auth_routes.go
package handlers

import (
	"errors"
	"log"

	"galaxy-learn-backend/services"
	"galaxy-learn-backend/utils"

	"github.com/gofiber/fiber/v2"
)

const minPasswordLen = 6

func SetupAuthRoutes(app *fiber.App, auth services.AuthClient, progress *services.ProgressService) {
	public := app.Group(RoutePrefix)

	public.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Galaxy Learn API operacional",
		})
	})

	public.Post("/signup", func(c *fiber.Ctx) error {
		if !auth.Configured() {
			log.Printf("❌ [SIGNUP] auth gateway credentials not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Configuração do servidor incompleta",
			})
		}

		type Req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Todos os campos são obrigatórios")
		}

		username := utils.SanitizeText(req.Username)
		if username == "" || req.Email == "" || req.Password == "" {
			return badRequest(c, "Todos os campos são obrigatórios")
		}
		if !utils.ValidEmail(req.Email) {
			return badRequest(c, "Email inválido")
		}
		if len(req.Password) < minPasswordLen {
			return badRequest(c, "A senha deve ter pelo menos 6 caracteres")
		}

		ident, err := auth.CreateUser(c.UserContext(), req.Email, req.Password, username)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDuplicateEmail):
				return badRequest(c, "Este email já está cadastrado")
			case errors.Is(err, services.ErrInvalidEmail):
				return badRequest(c, "Email inválido")
			case errors.Is(err, services.ErrNotAuthorized):
				return badRequest(c, "Não autorizado a criar conta")
			default:
				return internalError(c, "signup failed", err)
			}
		}

		// The progress record is keyed by the freshly created account id
		if _, err := progress.FetchOrInit(c.UserContext(), ident.ID, username, req.Email); err != nil {
			return internalError(c, "failed to initialize progress after signup", err)
		}

		log.Printf("✅ Account created: %s (%s)", ident.ID, req.Email)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Conta criada. Confirme seu email para ativá-la.",
			"user": fiber.Map{
				"id":       ident.ID,
				"username": username,
				"email":    req.Email,
			},
		})
	})
}
