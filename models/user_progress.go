package models

import (
	"time"
)

// TotalMissions is the number of planet missions shipped with the app.
const TotalMissions = 4

// UserProgress tracks gamified progression for each user. One record per
// account, stored as JSON at key "user:{id}".
type UserProgress struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Handle   string `json:"handle,omitempty"`
	AvatarID string `json:"avatarId,omitempty"`

	// Core progression
	XP           int `json:"xp"`
	Level        int `json:"level"`
	Achievements int `json:"achievements"` // kept equal to the achievement list length

	// Mission counters
	CompletedMissions int   `json:"completedMissions"`
	TotalMissionCount int   `json:"totalMissions"`
	UnlockedPlanets   []int `json:"unlockedPlanets"`
	HasStartedJourney bool  `json:"hasStartedJourney"`

	// Mission statistics
	PerfectMissions  int                    `json:"perfectMissions"`
	FastCompletions  int                    `json:"fastCompletions"`
	QuestionsCorrect map[string]interface{} `json:"questionsCorrect"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultUserProgress builds the zero-valued record for a fresh account.
func DefaultUserProgress(id, username, email string) *UserProgress {
	now := time.Now()
	return &UserProgress{
		ID:                id,
		Username:          username,
		Email:             email,
		XP:                0,
		Level:             1,
		TotalMissionCount: TotalMissions,
		UnlockedPlanets:   []int{},
		QuestionsCorrect:  map[string]interface{}{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// ApplyDefaults backfills fields that records written under older schema
// versions are missing. Returns true when anything was patched so the caller
// can persist the migrated record.
func (p *UserProgress) ApplyDefaults() bool {
	patched := false
	if p.UnlockedPlanets == nil {
		p.UnlockedPlanets = []int{}
		patched = true
	}
	if p.QuestionsCorrect == nil {
		p.QuestionsCorrect = map[string]interface{}{}
		patched = true
	}
	if p.TotalMissionCount == 0 {
		p.TotalMissionCount = TotalMissions
		patched = true
	}
	if p.Level < 1 {
		p.Level = 1
		patched = true
	}
	return patched
}
