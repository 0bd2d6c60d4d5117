package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"galaxy-learn-backend/models"
	"galaxy-learn-backend/storage"
	"galaxy-learn-backend/utils"
)

func userKey(id string) string { return "user:" + id }

// Monotonic-progress violations, surfaced as 400s by the handlers.
var (
	ErrXPDecrease       = errors.New("xp cannot decrease")
	ErrMissionsDecrease = errors.New("completed missions cannot decrease")
)

// LevelForXP computes the level for a given XP total: one level per 1000 XP,
// starting at level 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/1000 + 1
}

// ValidateProgressUpdate rejects any regression of xp or completedMissions
// against the stored record. Equality and increase always pass.
func ValidateProgressUpdate(current *models.UserProgress, newXP, newCompleted int) error {
	if newXP < current.XP {
		return ErrXPDecrease
	}
	if newCompleted < current.CompletedMissions {
		return ErrMissionsDecrease
	}
	return nil
}

// ApplyMissionCompletion awards the mission's XP, recomputes the level and
// marks the journey as started. Never idempotent: every call accumulates.
func ApplyMissionCompletion(current *models.UserProgress, missionXP int) {
	current.XP += missionXP
	current.Level = LevelForXP(current.XP)
	current.CompletedMissions++
	current.HasStartedJourney = true
	current.UpdatedAt = time.Now()
}

// ApplyPlanetUnlock appends planetID to the unlocked set. Returns false when
// the planet was already unlocked (record left untouched).
func ApplyPlanetUnlock(current *models.UserProgress, planetID int) bool {
	for _, p := range current.UnlockedPlanets {
		if p == planetID {
			return false
		}
	}
	current.UnlockedPlanets = append(current.UnlockedPlanets, planetID)
	current.UpdatedAt = time.Now()
	return true
}

// MergeMissionStats increments the perfect/fast counters and shallow-merges
// questionsCorrect: new values overwrite matching keys, other keys stay.
func MergeMissionStats(current *models.UserProgress, isPerfect, isFast bool, questionsCorrect map[string]interface{}) {
	if isPerfect {
		current.PerfectMissions++
	}
	if isFast {
		current.FastCompletions++
	}
	if current.QuestionsCorrect == nil {
		current.QuestionsCorrect = map[string]interface{}{}
	}
	for k, v := range questionsCorrect {
		current.QuestionsCorrect[k] = v
	}
	current.UpdatedAt = time.Now()
}

type ProgressService struct {
	Store storage.Store
}

func NewProgressService(store storage.Store) *ProgressService {
	return &ProgressService{Store: store}
}

// FetchOrInit returns the stored progress record for id, creating and
// persisting a default one when absent. Records written under older schema
// versions get their missing fields backfilled; the backfill is persisted so
// storage converges to the current schema instead of being re-patched on
// every read.
func (s *ProgressService) FetchOrInit(ctx context.Context, id, username, email string) (*models.UserProgress, error) {
	raw, ok, err := s.Store.Get(ctx, userKey(id))
	if err != nil {
		return nil, fmt.Errorf("fetch progress for %s: %w", id, err)
	}

	if !ok {
		prog := models.DefaultUserProgress(id, username, email)
		if username != "" {
			prog.Handle = utils.HandleFromUsername(username)
		}
		if err := s.Save(ctx, prog); err != nil {
			return nil, err
		}
		log.Printf("🪐 Initialized progress record for %s", id)
		return prog, nil
	}

	var prog models.UserProgress
	if err := json.Unmarshal(raw, &prog); err != nil {
		return nil, fmt.Errorf("decode progress for %s: %w", id, err)
	}
	if prog.ApplyDefaults() {
		if err := s.Save(ctx, &prog); err != nil {
			return nil, err
		}
	}
	return &prog, nil
}

// Save overwrites the stored record unconditionally. Last writer wins.
func (s *ProgressService) Save(ctx context.Context, prog *models.UserProgress) error {
	raw, err := json.Marshal(prog)
	if err != nil {
		return err
	}
	if err := s.Store.Set(ctx, userKey(prog.ID), raw); err != nil {
		return fmt.Errorf("save progress for %s: %w", prog.ID, err)
	}
	return nil
}
