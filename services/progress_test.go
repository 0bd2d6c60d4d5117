package services

import (
	"context"
	"encoding/json"
	"testing"

	"galaxy-learn-backend/models"
	"galaxy-learn-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{999, 1},
		{1000, 2},
		{1500, 2},
		{2500, 3},
		{10000, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelForXP(tt.xp), "xp=%d", tt.xp)
	}
}

func TestValidateProgressUpdate(t *testing.T) {
	current := &models.UserProgress{XP: 100, CompletedMissions: 2}

	assert.NoError(t, ValidateProgressUpdate(current, 100, 2))
	assert.NoError(t, ValidateProgressUpdate(current, 150, 3))
	assert.ErrorIs(t, ValidateProgressUpdate(current, 50, 3), ErrXPDecrease)
	assert.ErrorIs(t, ValidateProgressUpdate(current, 150, 1), ErrMissionsDecrease)
	assert.ErrorIs(t, ValidateProgressUpdate(current, 50, 1), ErrXPDecrease)
}

func TestApplyMissionCompletionAccumulates(t *testing.T) {
	prog := models.DefaultUserProgress("u1", "ana", "ana@example.com")

	ApplyMissionCompletion(prog, 500)
	assert.Equal(t, 500, prog.XP)
	assert.Equal(t, 1, prog.Level)
	assert.Equal(t, 1, prog.CompletedMissions)
	assert.True(t, prog.HasStartedJourney)

	ApplyMissionCompletion(prog, 600)
	assert.Equal(t, 1100, prog.XP)
	assert.Equal(t, 2, prog.Level)
	assert.Equal(t, 2, prog.CompletedMissions)
	assert.True(t, prog.HasStartedJourney)
}

func TestApplyPlanetUnlockIdempotent(t *testing.T) {
	prog := models.DefaultUserProgress("u1", "ana", "ana@example.com")

	assert.True(t, ApplyPlanetUnlock(prog, 2))
	assert.False(t, ApplyPlanetUnlock(prog, 2))
	assert.Equal(t, []int{2}, prog.UnlockedPlanets)

	assert.True(t, ApplyPlanetUnlock(prog, 3))
	assert.Equal(t, []int{2, 3}, prog.UnlockedPlanets)
}

func TestMergeMissionStats(t *testing.T) {
	prog := models.DefaultUserProgress("u1", "ana", "ana@example.com")
	prog.QuestionsCorrect = map[string]interface{}{"q1": true, "q2": false}

	MergeMissionStats(prog, true, false, map[string]interface{}{"q2": true, "q3": true})
	assert.Equal(t, 1, prog.PerfectMissions)
	assert.Equal(t, 0, prog.FastCompletions)
	assert.Equal(t, map[string]interface{}{"q1": true, "q2": true, "q3": true}, prog.QuestionsCorrect)

	MergeMissionStats(prog, false, true, nil)
	assert.Equal(t, 1, prog.PerfectMissions)
	assert.Equal(t, 1, prog.FastCompletions)
}

func TestFetchOrInitCreatesDefault(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewProgressService(store)
	ctx := context.Background()

	prog, err := svc.FetchOrInit(ctx, "u1", "Ana Lima", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", prog.ID)
	assert.Equal(t, 0, prog.XP)
	assert.Equal(t, 1, prog.Level)
	assert.Equal(t, 0, prog.CompletedMissions)
	assert.Equal(t, models.TotalMissions, prog.TotalMissionCount)
	assert.Equal(t, "ana-lima", prog.Handle)

	raw, ok, err := store.Get(ctx, "user:u1")
	require.NoError(t, err)
	require.True(t, ok, "default record must be persisted")
	var stored models.UserProgress
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "u1", stored.ID)
}

func TestFetchOrInitBackfillsLegacyRecord(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewProgressService(store)
	ctx := context.Background()

	legacy := []byte(`{"id":"u1","username":"ana","email":"ana@example.com","xp":1200,"level":2,"achievements":1,"completedMissions":1}`)
	require.NoError(t, store.Set(ctx, "user:u1", legacy))

	prog, err := svc.FetchOrInit(ctx, "u1", "ana", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1200, prog.XP)
	assert.Equal(t, 1, prog.CompletedMissions)
	assert.NotNil(t, prog.UnlockedPlanets)
	assert.NotNil(t, prog.QuestionsCorrect)
	assert.Equal(t, models.TotalMissions, prog.TotalMissionCount)
	assert.False(t, prog.HasStartedJourney)

	raw, ok, err := store.Get(ctx, "user:u1")
	require.NoError(t, err)
	require.True(t, ok)
	var stored models.UserProgress
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, models.TotalMissions, stored.TotalMissionCount, "backfill must be written back to storage")
	assert.NotNil(t, stored.UnlockedPlanets)
	assert.NotNil(t, stored.QuestionsCorrect)
}
