package models

import (
	"time"

	"github.com/google/uuid"
)

// AchievementRecord is one unlocked achievement. The full list for a user is
// stored as JSON at key "user:{id}:achievements", ordered by unlock time.
type AchievementRecord struct {
	ID            string    `json:"id"`
	AchievementID string    `json:"achievementId"`
	UnlockedDate  time.Time `json:"unlockedDate"`
}

func NewAchievementRecord(achievementID string) AchievementRecord {
	return AchievementRecord{
		ID:            uuid.NewString(),
		AchievementID: achievementID,
		UnlockedDate:  time.Now(),
	}
}
