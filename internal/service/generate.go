package service

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"sceneforge/config"
	"sceneforge/internal/timeline"
	"sceneforge/internal/types"
	"sceneforge/log"
	apperrors "sceneforge/pkg/errors"
)

// GenerateOptions controls one generation pass over a manifest.
type GenerateOptions struct {
	SkipExisting bool
	DryRun       bool
	MaxUnits     int
}

// GenerateClips dispatches each manifest unit to the remote generator, one
// at a time with a politeness pause in between. A unit failure is recorded
// and its siblings continue; only input-level problems abort the run.
func (s *Service) GenerateClips(ctx context.Context, taskID string, opts GenerateOptions) (*types.RunSummary, error) {
	manifest, err := timeline.LoadManifest(manifestPath(taskID))
	if err != nil {
		return nil, err
	}

	units := manifest.Units
	if opts.MaxUnits > 0 && opts.MaxUnits < len(units) {
		units = units[:opts.MaxUnits]
	}

	summary := &types.RunSummary{TaskID: taskID}
	started := time.Now()
	pause := time.Duration(config.Conf.Generate.PauseSec) * time.Second

	for i, u := range units {
		pct := uint8(40 + 50*i/maxInt(len(units), 1))
		s.reportProgress(taskID, pct, "generating "+u.ID())

		result := s.generateUnit(ctx, taskID, u, opts)
		summary.Results = append(summary.Results, result)
		switch result.Status {
		case types.UnitCompleted:
			summary.Completed++
			summary.TotalCost += result.CostUSD
		case types.UnitSkipped:
			summary.Skipped++
		case types.UnitFailed:
			summary.Failed++
		}

		if ctx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.CodeGenerateFailed, "generation cancelled", ctx.Err())
		}
		if i < len(units)-1 && pause > 0 && !opts.DryRun {
			time.Sleep(pause)
		}
	}

	summary.Elapsed = time.Since(started).Seconds()
	summary.FinishedAt = time.Now().UTC()

	log.GetLogger().Info("generation pass finished",
		zap.String("task", taskID),
		zap.Int("completed", summary.Completed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Float64("cost_usd", summary.TotalCost))
	return summary, nil
}

func (s *Service) generateUnit(ctx context.Context, taskID string, u timeline.Unit, opts GenerateOptions) types.UnitResult {
	result := types.UnitResult{UnitID: u.ID(), Kind: string(u.Kind)}
	outPath := clipPath(taskID, u.ID())
	started := time.Now()

	if opts.SkipExisting {
		if st, err := os.Stat(outPath); err == nil && st.Size() > 0 {
			result.Status = types.UnitSkipped
			result.ClipPath = outPath
			return result
		}
	}

	prompt := u.GenPrompt()
	if prompt == "" {
		prompt = u.DialogueText()
	}
	if prompt == "" {
		result.Status = types.UnitFailed
		result.FailReason = "unit has no prompt and no dialogue"
		return result
	}
	if u.Kind == timeline.KindGroup {
		prompt = types.GroupPromptPreamble + " " + prompt
	}

	if opts.DryRun {
		result.Status = types.UnitSkipped
		result.CostUSD = s.Generator.EstimateCost(u.Duration())
		return result
	}

	if err := s.Generator.GenerateClip(ctx, prompt, outPath); err != nil {
		log.GetLogger().Error("unit generation failed",
			zap.String("task", taskID),
			zap.String("unit", u.ID()),
			zap.Error(err))
		result.Status = types.UnitFailed
		result.FailReason = err.Error()
		return result
	}

	result.Status = types.UnitCompleted
	result.ClipPath = outPath
	result.CostUSD = s.Generator.EstimateCost(u.Duration())
	result.Elapsed = time.Since(started).Seconds()
	return result
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
