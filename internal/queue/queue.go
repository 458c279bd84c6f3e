// Package queue provides optional Redis-backed task processing using Asynq.
// It is used instead of the in-memory runner when durable queueing across
// restarts is needed.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"sceneforge/config"
	"sceneforge/internal/taskrunner"
	"sceneforge/log"
)

// Task type names
const (
	TypePipelineTask = "pipeline:run"
)

// PipelineTaskPayload contains the data for a pipeline run task.
type PipelineTaskPayload struct {
	TaskID       string `json:"task_id"`
	Source       string `json:"source"`
	SkipExisting bool   `json:"skip_existing"`
	DryRun       bool   `json:"dry_run"`
	MaxUnits     int    `json:"max_units"`
}

// Queue manages task enqueueing and processing.
type Queue struct {
	client *asynq.Client
	server *asynq.Server
	config config.QueueConfig
}

// NewQueue creates a new Queue instance from Redis settings.
func NewQueue(cfg config.QueueConfig) *Queue {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
				// Exponential backoff: 10s, 20s, 40s, ...
				return time.Duration(10<<uint(n)) * time.Second
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.GetLogger().Error("queued task failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)

	return &Queue{
		client: client,
		server: server,
		config: cfg,
	}
}

// EnqueuePipelineTask adds a pipeline run to the queue.
func (q *Queue) EnqueuePipelineTask(payload PipelineTaskPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Generation alone can take minutes per unit, so the timeout is generous.
	task := asynq.NewTask(TypePipelineTask, data,
		asynq.TaskID(uuid.NewString()),
		asynq.MaxRetry(2),
		asynq.Timeout(60*time.Minute),
		asynq.Queue("default"),
	)

	info, err := q.client.Enqueue(task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.GetLogger().Info("pipeline task enqueued",
		zap.String("task_id", payload.TaskID),
		zap.String("queue_id", info.ID),
		zap.String("queue", info.Queue))

	return nil
}

// Submitter adapts the queue to the handler's task submission interface, so
// the HTTP surface does not care whether tasks run in-process or via Redis.
type Submitter struct {
	q *Queue
}

func NewSubmitter(q *Queue) *Submitter {
	return &Submitter{q: q}
}

func (s *Submitter) SubmitPipelineTask(p taskrunner.PipelineTaskPayload) error {
	return s.q.EnqueuePipelineTask(PipelineTaskPayload{
		TaskID:       p.TaskID,
		Source:       p.Source,
		SkipExisting: p.SkipExisting,
		DryRun:       p.DryRun,
		MaxUnits:     p.MaxUnits,
	})
}

// Close gracefully shuts down the queue.
func (q *Queue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	q.server.Shutdown()
	return nil
}

// Client returns the underlying Asynq client.
func (q *Queue) Client() *asynq.Client {
	return q.client
}

// Server returns the underlying Asynq server.
func (q *Queue) Server() *asynq.Server {
	return q.server
}
