package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"sceneforge/internal/dto"
	"sceneforge/internal/storage"
	"sceneforge/internal/types"
	"sceneforge/log"
	apperrors "sceneforge/pkg/errors"
)

// StartPipelineTask validates the request, persists a pending task row and
// returns the task id. Actual processing happens in the runner.
func (s *Service) StartPipelineTask(req dto.StartPipelineTaskReq) (*dto.StartPipelineTaskResData, error) {
	taskID := NewTaskID(req.Source)

	if err := os.MkdirAll(filepath.Join(taskDir(taskID), "output"), 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFileWriteError, "create task dir", err)
	}

	task := &types.PipelineTask{
		TaskId:     taskID,
		SourcePath: req.Source,
		WorkDir:    taskDir(taskID),
		Status:     types.TaskStatusPending,
		StatusMsg:  "Queued",
	}
	if err := storage.SaveTask(task); err != nil {
		log.GetLogger().Error("StartPipelineTask SaveTask err", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeDBError, "failed to save task", err)
	}

	return &dto.StartPipelineTaskResData{TaskId: taskID}, nil
}

// RunPipeline executes a full run for a previously created task: resolve the
// source, analyze, generate, assemble, then write the run summary. The task
// row tracks status the whole way.
func (s *Service) RunPipeline(ctx context.Context, taskID string, req dto.StartPipelineTaskReq) (*types.RunSummary, error) {
	task, err := storage.GetTask(taskID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "load task", err)
	}

	task.Status = types.TaskStatusRunning
	task.StatusMsg = "Resolving source"
	_ = storage.SaveTask(task)

	videoPath, err := s.ResolveSource(ctx, taskID, req.Source)
	if err != nil {
		s.failTask(task, err)
		return nil, err
	}

	task.StatusMsg = "Analyzing"
	_ = storage.SaveTask(task)
	analysis, err := s.AnalyzeVideo(ctx, taskID, videoPath)
	if err != nil {
		s.failTask(task, err)
		return nil, err
	}
	task.UnitsTotal = analysis.UnitCount
	task.StatusMsg = "Generating"
	_ = storage.SaveTask(task)

	summary, err := s.GenerateClips(ctx, taskID, GenerateOptions{
		SkipExisting: req.SkipExisting,
		DryRun:       req.DryRun,
		MaxUnits:     req.MaxUnits,
	})
	if err != nil {
		s.failTask(task, err)
		return nil, err
	}

	var outPath string
	if !req.DryRun {
		task.StatusMsg = "Assembling"
		_ = storage.SaveTask(task)
		outPath, err = s.AssembleOutputs(ctx, taskID, summary)
		if err != nil {
			s.failTask(task, err)
			return nil, err
		}
	}

	if err := s.WriteRunSummary(taskID, summary); err != nil {
		log.GetLogger().Warn("failed to write run summary", zap.String("task", taskID), zap.Error(err))
	}

	task.Status = types.TaskStatusCompleted
	task.StatusMsg = "Completed"
	if summary.AnyFailed() {
		task.StatusMsg = "Completed with failures"
	}
	task.ProcessPct = 100
	task.UnitsCompleted = summary.Completed
	task.UnitsSkipped = summary.Skipped
	task.UnitsFailed = summary.Failed
	task.CostUSD = summary.TotalCost
	_ = storage.SaveTask(task)

	s.reportProgress(taskID, 100, "done")
	log.GetLogger().Info("pipeline finished",
		zap.String("task", taskID),
		zap.String("output", outPath),
		zap.Bool("any_failed", summary.AnyFailed()))
	return summary, nil
}

func (s *Service) failTask(task *types.PipelineTask, cause error) {
	task.Status = types.TaskStatusFailed
	task.FailReason = cause.Error()
	task.StatusMsg = "Failed"
	_ = storage.SaveTask(task)
}

// WriteRunSummary persists the operator-facing report next to the output.
func (s *Service) WriteRunSummary(taskID string, summary *types.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	path := summaryPath(taskID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadRunSummary reads back a previously written run summary.
func LoadRunSummary(taskID string) (*types.RunSummary, error) {
	data, err := os.ReadFile(summaryPath(taskID))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFileNotFound, "read run summary", err)
	}
	var summary types.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFileNotFound, "decode run summary", err)
	}
	return &summary, nil
}
