package storage

import (
	"errors"

	"gorm.io/gorm"

	"sceneforge/internal/types"
)

var ErrNotInitialized = errors.New("database not initialized")

// SaveTask upserts by TaskId, keeping the row's primary key stable across
// updates.
func SaveTask(task *types.PipelineTask) error {
	if DB == nil {
		return ErrNotInitialized
	}

	var existing types.PipelineTask
	result := DB.Where("task_id = ?", task.TaskId).First(&existing)
	if result.Error == nil {
		task.Id = existing.Id
		return DB.Save(task).Error
	}
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(task).Error
	}
	return result.Error
}

func GetTask(taskId string) (*types.PipelineTask, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}
	var task types.PipelineTask
	if err := DB.Where("task_id = ?", taskId).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func GetTaskHistory(limit int) ([]types.PipelineTask, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}
	var tasks []types.PipelineTask
	if err := DB.Order("create_time desc").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func DeleteTask(taskId string) error {
	if DB == nil {
		return ErrNotInitialized
	}
	return DB.Where("task_id = ?", taskId).Delete(&types.PipelineTask{}).Error
}

// MarkStaleTasks fails any task still marked running. Called on startup so a
// crashed run does not show as in-flight forever.
func MarkStaleTasks() (int64, error) {
	if DB == nil {
		return 0, ErrNotInitialized
	}
	result := DB.Model(&types.PipelineTask{}).
		Where("status = ?", types.TaskStatusRunning).
		Updates(map[string]interface{}{
			"status":      types.TaskStatusFailed,
			"fail_reason": "task interrupted by server restart",
			"status_msg":  "Interrupted",
		})
	return result.RowsAffected, result.Error
}
