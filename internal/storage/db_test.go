package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/internal/types"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	original := DB
	t.Cleanup(func() { DB = original })

	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "test.db")))
}

func TestSaveTask_UpsertPreservesId(t *testing.T) {
	setupTestDB(t)

	task := &types.PipelineTask{TaskId: "t-1", SourcePath: "/v.mp4", Status: types.TaskStatusPending}
	require.NoError(t, SaveTask(task))
	firstId := task.Id

	task.Status = types.TaskStatusRunning
	task.Id = 0 // a fresh struct for the same TaskId must reuse the row
	require.NoError(t, SaveTask(task))
	assert.Equal(t, firstId, task.Id)

	got, err := GetTask("t-1")
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusRunning, got.Status)
}

func TestGetTask_NotFound(t *testing.T) {
	setupTestDB(t)

	_, err := GetTask("missing")
	assert.Error(t, err)
}

func TestGetTaskHistory_OrderAndLimit(t *testing.T) {
	setupTestDB(t)

	for _, id := range []string{"t-1", "t-2", "t-3"} {
		require.NoError(t, SaveTask(&types.PipelineTask{TaskId: id}))
	}

	tasks, err := GetTaskHistory(2)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestDeleteTask(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, SaveTask(&types.PipelineTask{TaskId: "t-del"}))
	require.NoError(t, DeleteTask("t-del"))

	_, err := GetTask("t-del")
	assert.Error(t, err)
}

func TestMarkStaleTasks(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, SaveTask(&types.PipelineTask{TaskId: "t-run", Status: types.TaskStatusRunning}))
	require.NoError(t, SaveTask(&types.PipelineTask{TaskId: "t-done", Status: types.TaskStatusCompleted}))

	n, err := MarkStaleTasks()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := GetTask("t-run")
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusFailed, got.Status)
	assert.NotEmpty(t, got.FailReason)

	done, err := GetTask("t-done")
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusCompleted, done.Status)
}

func TestOperationsWithoutInit(t *testing.T) {
	original := DB
	DB = nil
	t.Cleanup(func() { DB = original })

	assert.ErrorIs(t, SaveTask(&types.PipelineTask{}), ErrNotInitialized)
	_, err := GetTask("x")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = MarkStaleTasks()
	assert.ErrorIs(t, err, ErrNotInitialized)
}
