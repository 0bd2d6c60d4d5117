package services

import (
	"context"
	"testing"

	"galaxy-learn-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAchievementFixture() (*AchievementService, *ProgressService, *Identity) {
	store := storage.NewMemoryStore()
	progress := NewProgressService(store)
	return NewAchievementService(store, progress), progress, &Identity{
		ID:       "u1",
		Username: "ana",
		Email:    "ana@example.com",
	}
}

func TestListEmptyWhenAbsent(t *testing.T) {
	svc, _, ident := newAchievementFixture()

	list, err := svc.List(context.Background(), ident.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUnlockIdempotent(t *testing.T) {
	svc, progress, ident := newAchievementFixture()
	ctx := context.Background()

	list, isNew, err := svc.Unlock(ctx, ident, "first-mission")
	require.NoError(t, err)
	assert.True(t, isNew)
	require.Len(t, list, 1)
	assert.Equal(t, "first-mission", list[0].AchievementID)
	assert.NotEmpty(t, list[0].ID)
	assert.False(t, list[0].UnlockedDate.IsZero())

	prog, err := progress.FetchOrInit(ctx, ident.ID, ident.Username, ident.Email)
	require.NoError(t, err)
	assert.Equal(t, 1, prog.Achievements)

	list, isNew, err = svc.Unlock(ctx, ident, "first-mission")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Len(t, list, 1)

	prog, err = progress.FetchOrInit(ctx, ident.ID, ident.Username, ident.Email)
	require.NoError(t, err)
	assert.Equal(t, 1, prog.Achievements, "counter stays equal to the list length")
}

func TestUnlockKeepsOrder(t *testing.T) {
	svc, progress, ident := newAchievementFixture()
	ctx := context.Background()

	for _, id := range []string{"first-mission", "perfect-run", "speed-demon"} {
		_, _, err := svc.Unlock(ctx, ident, id)
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, ident.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first-mission", list[0].AchievementID)
	assert.Equal(t, "perfect-run", list[1].AchievementID)
	assert.Equal(t, "speed-demon", list[2].AchievementID)

	prog, err := progress.FetchOrInit(ctx, ident.ID, ident.Username, ident.Email)
	require.NoError(t, err)
	assert.Equal(t, 3, prog.Achievements)
}
