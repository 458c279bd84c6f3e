package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"sceneforge/internal/dto"
	"sceneforge/internal/service"
	"sceneforge/internal/storage"
	"sceneforge/internal/types"
	"sceneforge/log"
)

// TaskHandlers provides handlers for queued task types.
type TaskHandlers struct {
	service *service.Service
}

func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandlePipelineTask runs a full pipeline for a queued task.
func (h *TaskHandlers) HandlePipelineTask(ctx context.Context, t *asynq.Task) error {
	var payload PipelineTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] processing pipeline task",
		zap.String("task_id", payload.TaskID),
		zap.String("source", payload.Source))

	_, err := h.service.RunPipeline(ctx, payload.TaskID, dto.StartPipelineTaskReq{
		Source:       payload.Source,
		SkipExisting: payload.SkipExisting,
		DryRun:       payload.DryRun,
		MaxUnits:     payload.MaxUnits,
	})
	if err != nil {
		task, _ := storage.GetTask(payload.TaskID)
		if task != nil && task.Status != types.TaskStatusFailed {
			task.Status = types.TaskStatusFailed
			task.FailReason = err.Error()
			_ = storage.SaveTask(task)
		}
		return err
	}

	log.GetLogger().Info("[Queue] pipeline task completed",
		zap.String("task_id", payload.TaskID))

	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux.
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypePipelineTask, h.HandlePipelineTask)
}

// StartWorker starts the Asynq worker with registered handlers. Blocks until
// the server shuts down.
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
