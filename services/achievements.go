package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"galaxy-learn-backend/models"
	"galaxy-learn-backend/storage"
)

func achievementsKey(id string) string { return "user:" + id + ":achievements" }

type AchievementService struct {
	Store    storage.Store
	Progress *ProgressService
}

func NewAchievementService(store storage.Store, progress *ProgressService) *AchievementService {
	return &AchievementService{Store: store, Progress: progress}
}

// List returns the user's unlocked achievements in unlock order. Empty list
// when the key is absent.
func (s *AchievementService) List(ctx context.Context, userID string) ([]models.AchievementRecord, error) {
	raw, ok, err := s.Store.Get(ctx, achievementsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("fetch achievements for %s: %w", userID, err)
	}
	if !ok {
		return []models.AchievementRecord{}, nil
	}

	var list []models.AchievementRecord
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode achievements for %s: %w", userID, err)
	}
	if list == nil {
		list = []models.AchievementRecord{}
	}
	return list, nil
}

// Unlock appends achievementID to the user's list unless already present.
// Idempotent: a repeat unlock returns the existing list and false. The
// progress record's achievements counter is kept equal to the list length.
func (s *AchievementService) Unlock(ctx context.Context, ident *Identity, achievementID string) ([]models.AchievementRecord, bool, error) {
	list, err := s.List(ctx, ident.ID)
	if err != nil {
		return nil, false, err
	}

	for _, rec := range list {
		if rec.AchievementID == achievementID {
			return list, false, nil
		}
	}

	list = append(list, models.NewAchievementRecord(achievementID))
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, false, err
	}
	if err := s.Store.Set(ctx, achievementsKey(ident.ID), raw); err != nil {
		return nil, false, fmt.Errorf("save achievements for %s: %w", ident.ID, err)
	}

	prog, err := s.Progress.FetchOrInit(ctx, ident.ID, ident.Username, ident.Email)
	if err != nil {
		return nil, false, err
	}
	prog.Achievements = len(list)
	prog.UpdatedAt = time.Now()
	if err := s.Progress.Save(ctx, prog); err != nil {
		return nil, false, err
	}

	log.Printf("🏆 Achievement unlocked: %s → %s", achievementID, ident.ID)
	return list, true, nil
}
