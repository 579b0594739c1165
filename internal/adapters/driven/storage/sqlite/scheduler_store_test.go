package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	now := time.Now().UTC().Truncate(time.Millisecond)
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDLibraryIndex,
		Name:        "Library Index",
		Interval:    time.Hour,
		LastRun:     now.Add(-time.Hour),
		NextRun:     now,
		LastError:   "",
		LastSuccess: now.Add(-time.Hour),
		Enabled:     true,
	}

	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	retrieved, err := schedulerStore.GetTask(ctx, domain.TaskIDLibraryIndex)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, task.Name, retrieved.Name)
	assert.Equal(t, task.Interval, retrieved.Interval)
	assert.True(t, retrieved.Enabled)
	assert.Empty(t, retrieved.LastError)
	assert.True(t, task.LastRun.Equal(retrieved.LastRun))
	assert.True(t, task.NextRun.Equal(retrieved.NextRun))
	assert.True(t, task.LastSuccess.Equal(retrieved.LastSuccess))
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	task, err := store.SchedulerStore().GetTask(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSchedulerStore_SaveTask_Update(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	task := &domain.ScheduledTask{ID: "t", Name: "Task", Interval: time.Minute, Enabled: true}
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	task.LastError = "ffmpeg not found"
	task.Enabled = false
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	retrieved, err := schedulerStore.GetTask(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg not found", retrieved.LastError)
	assert.False(t, retrieved.Enabled)
	assert.True(t, retrieved.LastRun.IsZero())
}

func TestSchedulerStore_SaveTask_Nil(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.SchedulerStore().SaveTask(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchedulerStore_ListAndDeleteTasks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	for _, id := range []string{"b", "a"} {
		require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{ID: id, Name: id, Interval: time.Minute}))
	}

	tasks, err := schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)

	require.NoError(t, schedulerStore.DeleteTask(ctx, "a"))
	tasks, err = schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].ID)
}

func TestSchedulerStore_TaskHistory(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	schedulerStore := store.SchedulerStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		result := &domain.TaskResult{
			TaskID:         domain.TaskIDLibraryIndex,
			StartedAt:      base.Add(time.Duration(i) * time.Minute),
			EndedAt:        base.Add(time.Duration(i)*time.Minute + time.Second),
			Success:        i%2 == 0,
			ItemsProcessed: i,
		}
		if !result.Success {
			result.Error = "boom"
		}
		require.NoError(t, schedulerStore.RecordResult(ctx, result))
	}
	require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{TaskID: "other", StartedAt: base, EndedAt: base}))

	history, err := schedulerStore.GetTaskHistory(ctx, domain.TaskIDLibraryIndex, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 4, history[0].ItemsProcessed)
	assert.True(t, history[0].Success)
	assert.Equal(t, "boom", history[1].Error)
	assert.True(t, base.Add(4*time.Minute).Equal(history[0].StartedAt))

	require.NoError(t, schedulerStore.PruneHistory(ctx, 2))

	history, err = schedulerStore.GetTaskHistory(ctx, domain.TaskIDLibraryIndex, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	other, err := schedulerStore.GetTaskHistory(ctx, "other", 10)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSchedulerStore_RecordResult_Nil(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.SchedulerStore().RecordResult(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
