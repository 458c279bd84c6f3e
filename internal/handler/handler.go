package handler

import (
	"sceneforge/internal/service"
	"sceneforge/internal/taskrunner"
)

// TaskSubmitter queues a pipeline run for background execution. Satisfied by
// the in-memory runner and by the Redis-backed queue submitter.
type TaskSubmitter interface {
	SubmitPipelineTask(payload taskrunner.PipelineTaskPayload) error
}

// Handler carries the shared service and the submitter that hands tasks to
// the background executor.
type Handler struct {
	Service *service.Service
	Runner  TaskSubmitter
	hub     *ProgressHub
}

func NewHandler(svc *service.Service, runner TaskSubmitter) *Handler {
	h := &Handler{
		Service: svc,
		Runner:  runner,
		hub:     NewProgressHub(),
	}
	// Progress events flow from the pipeline through the hub to any
	// connected websocket clients.
	svc.Progress = h.hub.Broadcast
	return h
}
