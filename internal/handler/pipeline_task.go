package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sceneforge/config"
	"sceneforge/internal/dto"
	"sceneforge/internal/response"
	"sceneforge/internal/service"
	"sceneforge/internal/storage"
	"sceneforge/internal/taskrunner"
	"sceneforge/log"
	apperrors "sceneforge/pkg/errors"
)

func (h *Handler) StartPipelineTask(c *gin.Context) {
	var req dto.StartPipelineTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("StartPipelineTask ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "invalid parameters", err))
		return
	}
	log.GetLogger().Info("StartPipelineTask received request", zap.Any("req", req))

	data, err := h.Service.StartPipelineTask(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	if err := h.Runner.SubmitPipelineTask(taskrunner.PipelineTaskPayload{
		TaskID:       data.TaskId,
		Source:       req.Source,
		SkipExisting: req.SkipExisting,
		DryRun:       req.DryRun,
		MaxUnits:     req.MaxUnits,
	}); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "failed to queue task", err))
		return
	}
	response.Success(c, data)
}

// AnalyzeVideo runs analysis synchronously and returns the unit plan with a
// cost estimate. No generation happens here.
func (h *Handler) AnalyzeVideo(c *gin.Context) {
	var req dto.AnalyzeVideoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "invalid parameters", err))
		return
	}

	taskID := service.NewTaskID(req.Source)
	ctx := c.Request.Context()

	videoPath, err := h.Service.ResolveSource(ctx, taskID, req.Source)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	data, err := h.Service.AnalyzeVideo(ctx, taskID, videoPath)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h *Handler) GetPipelineTask(c *gin.Context) {
	var req dto.GetPipelineTaskReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "taskId is required")
		return
	}

	task, err := storage.GetTask(req.TaskId)
	if err != nil {
		response.Error(c, apperrors.CodeNotFound, "task not found")
		return
	}

	response.Success(c, dto.GetPipelineTaskResData{
		TaskId:         task.TaskId,
		Status:         task.Status,
		StatusMsg:      task.StatusMsg,
		FailReason:     task.FailReason,
		ProcessPercent: task.ProcessPct,
		UnitsTotal:     task.UnitsTotal,
		UnitsCompleted: task.UnitsCompleted,
		UnitsSkipped:   task.UnitsSkipped,
		UnitsFailed:    task.UnitsFailed,
		CostUSD:        task.CostUSD,
	})
}

func (h *Handler) GetTaskHistory(c *gin.Context) {
	tasks, err := storage.GetTaskHistory(200)
	if err != nil {
		response.Error(c, apperrors.CodeDBError, "failed to load task history: "+err.Error())
		return
	}
	response.Success(c, tasks)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "taskId is required")
		return
	}

	task, err := storage.GetTask(taskId)
	if err == nil && task.WorkDir != "" {
		if err := os.RemoveAll(task.WorkDir); err != nil {
			log.GetLogger().Error("DeleteTask RemoveAll err", zap.String("path", task.WorkDir), zap.Error(err))
			// continue to delete the DB row even if files remain
		}
	}

	if err := storage.DeleteTask(taskId); err != nil {
		response.Error(c, apperrors.CodeDBError, "failed to delete task: "+err.Error())
		return
	}
	response.Success(c, gin.H{"task_id": taskId})
}

func (h *Handler) RetryTask(c *gin.Context) {
	taskId := c.Param("taskId")
	task, err := storage.GetTask(taskId)
	if err != nil {
		response.Error(c, apperrors.CodeNotFound, "task not found")
		return
	}

	if err := h.Runner.SubmitPipelineTask(taskrunner.PipelineTaskPayload{
		TaskID:       task.TaskId,
		Source:       task.SourcePath,
		SkipExisting: true, // keep clips that already succeeded
	}); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "failed to queue retry", err))
		return
	}
	response.Success(c, gin.H{"task_id": taskId})
}

// DownloadFile serves generated artifacts from inside the tasks root only.
func (h *Handler) DownloadFile(c *gin.Context) {
	requested := strings.TrimPrefix(c.Param("filepath"), "/")
	if requested == "" || strings.Contains(requested, "..") {
		response.Error(c, apperrors.CodeInvalidParams, "invalid file path")
		return
	}

	root := config.Conf.App.TasksDir
	if root == "" {
		root = "./tasks"
	}
	full := filepath.Join(root, filepath.Clean(requested))
	if _, err := os.Stat(full); err != nil {
		response.Error(c, apperrors.CodeFileNotFound, "file not found")
		return
	}
	c.File(full)
}

func (h *Handler) GetConfig(c *gin.Context) {
	// API keys stay server-side
	redacted := config.Conf
	redacted.Generate.ApiKey = ""
	redacted.Analysis.ApiKey = ""
	redacted.Transcribe.ApiKey = ""
	response.Success(c, redacted)
}

func (h *Handler) UpdateConfig(c *gin.Context) {
	var incoming config.Config
	if err := c.ShouldBindJSON(&incoming); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "invalid config payload", err))
		return
	}

	// Preserve keys the redacted GET response omitted.
	if incoming.Generate.ApiKey == "" {
		incoming.Generate.ApiKey = config.Conf.Generate.ApiKey
	}
	if incoming.Analysis.ApiKey == "" {
		incoming.Analysis.ApiKey = config.Conf.Analysis.ApiKey
	}
	if incoming.Transcribe.ApiKey == "" {
		incoming.Transcribe.ApiKey = config.Conf.Transcribe.ApiKey
	}

	previous := config.Conf
	config.Conf = incoming
	if err := config.CheckConfig(); err != nil {
		config.Conf = previous
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "config rejected", err))
		return
	}
	if err := config.SaveConfig(); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "failed to persist config", err))
		return
	}
	response.Success(c, nil)
}
