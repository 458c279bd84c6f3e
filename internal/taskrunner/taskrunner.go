// Package taskrunner executes pipeline tasks on in-memory workers. It is the
// default execution mode; the asynq-backed queue takes over when Redis is
// configured.
package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"sceneforge/internal/dto"
	"sceneforge/internal/service"
	"sceneforge/internal/storage"
	"sceneforge/internal/types"
	"sceneforge/log"
)

const (
	defaultQueueSize = 64
	// One worker keeps the remote API load to a single in-flight unit.
	defaultConcurrency = 1
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// PipelineTaskPayload contains pipeline task enqueue data.
type PipelineTaskPayload struct {
	TaskID       string `json:"task_id"`
	Source       string `json:"source"`
	SkipExisting bool   `json:"skip_existing"`
	DryRun       bool   `json:"dry_run"`
	MaxUnits     int    `json:"max_units"`
}

// Runner executes queued tasks with in-memory workers.
type Runner struct {
	service *service.Service
	config  Config

	queue  chan PipelineTaskPayload
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(svc *service.Service, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		service: svc,
		config:  cfg,
		queue:   make(chan PipelineTaskPayload, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// SubmitPipelineTask queues a full pipeline run.
func (r *Runner) SubmitPipelineTask(payload PipelineTaskPayload) error {
	if payload.Source == "" {
		return errors.New("pipeline task source is required")
	}
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- payload:
		log.GetLogger().Info("pipeline task queued",
			zap.String("task_id", payload.TaskID),
			zap.Int("pending", len(r.queue)))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(id int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case payload := <-r.queue:
			r.runTask(id, payload)
		}
	}
}

func (r *Runner) runTask(workerID int, payload PipelineTaskPayload) {
	logger := log.GetLogger().With(
		zap.Int("worker", workerID),
		zap.String("task_id", payload.TaskID))
	logger.Info("pipeline task started")

	_, err := r.service.RunPipeline(r.ctx, payload.TaskID, dto.StartPipelineTaskReq{
		Source:       payload.Source,
		SkipExisting: payload.SkipExisting,
		DryRun:       payload.DryRun,
		MaxUnits:     payload.MaxUnits,
	})
	if err != nil {
		logger.Error("pipeline task failed", zap.Error(err))
		r.markTaskFailed(payload.TaskID, err)
		return
	}
	logger.Info("pipeline task finished")
}

func (r *Runner) markTaskFailed(taskID string, taskErr error) {
	if taskID == "" {
		return
	}

	task, err := storage.GetTask(taskID)
	if err != nil || task == nil {
		return
	}
	if task.Status == types.TaskStatusFailed {
		return // RunPipeline already recorded the failure
	}

	task.Status = types.TaskStatusFailed
	task.FailReason = taskErr.Error()
	task.StatusMsg = "Failed"
	_ = storage.SaveTask(task)
}

// Close stops workers and rejects new tasks.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued tasks waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
