package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

func TestRunStore_RecordAndList(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runs := store.RunStore()
	base := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		report := &domain.IndexReport{
			RunID:            fmt.Sprintf("run-%d", i),
			StartedAt:        base.Add(time.Duration(i) * time.Hour),
			EndedAt:          base.Add(time.Duration(i)*time.Hour + 90*time.Second),
			VideosDiscovered: 10,
			VideosToProcess:  3,
			VideosProcessed:  2,
			VideosFailed:     1,
			ScenesSkipped:    4,
			NewScenes:        17,
			TotalScenes:      100 + i,
		}
		require.NoError(t, runs.RecordRun(ctx, report))
	}

	list, err := runs.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)

	latest := list[0]
	assert.Equal(t, "run-2", latest.RunID)
	assert.Equal(t, "run-1", list[1].RunID)
	assert.True(t, base.Add(2*time.Hour).Equal(latest.StartedAt))
	assert.Equal(t, 90*time.Second, latest.Duration())
	assert.Equal(t, 10, latest.VideosDiscovered)
	assert.Equal(t, 3, latest.VideosToProcess)
	assert.Equal(t, 2, latest.VideosProcessed)
	assert.Equal(t, 1, latest.VideosFailed)
	assert.Equal(t, 4, latest.ScenesSkipped)
	assert.Equal(t, 17, latest.NewScenes)
	assert.Equal(t, 102, latest.TotalScenes)
	assert.True(t, latest.Success())
}

func TestRunStore_RecordsFailure(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.RunStore().RecordRun(ctx, &domain.IndexReport{
		RunID: "failed", StartedAt: now, EndedAt: now, Error: "load index: corrupt",
	}))

	list, err := store.RunStore().ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Success())
	assert.Equal(t, "load index: corrupt", list[0].Error)
}

func TestRunStore_RecordRun_ReplacesSameID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.RunStore().RecordRun(ctx, &domain.IndexReport{RunID: "r", StartedAt: now, EndedAt: now}))
	require.NoError(t, store.RunStore().RecordRun(ctx, &domain.IndexReport{RunID: "r", StartedAt: now, EndedAt: now, NewScenes: 5}))

	list, err := store.RunStore().ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].NewScenes)
}

func TestRunStore_InvalidInput(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.ErrorIs(t, store.RunStore().RecordRun(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.RunStore().RecordRun(context.Background(), &domain.IndexReport{}), domain.ErrInvalidInput)

	list, err := store.RunStore().ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
