package service

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sceneforge/config"
	"sceneforge/internal/dto"
	"sceneforge/internal/timeline"
	"sceneforge/log"
	apperrors "sceneforge/pkg/errors"
)

// AnalyzeVideo runs the pre-generation half of the pipeline: probe, scene
// detection, segmentation, chunking, dialogue alignment, vision analysis and
// capacity packing. The result is the persisted unit manifest; no generation
// spend happens here.
func (s *Service) AnalyzeVideo(ctx context.Context, taskID, videoPath string) (*dto.AnalyzeResData, error) {
	logger := log.GetLogger()

	if _, err := os.Stat(videoPath); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeVideoNotFound, "video file not found", err)
	}

	total, err := s.Detector.ProbeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	if max := config.Conf.App.MaxSource; max > 0 && total > max {
		return nil, apperrors.WrapWithDetail(apperrors.CodeInvalidParams, "source video too long",
			timeline.FormatTimestamp(total), nil)
	}

	s.reportProgress(taskID, 5, "detecting scenes")
	boundaries, err := s.Detector.DetectBoundaries(ctx, videoPath, config.Conf.Segment.DetectThreshold)
	if err != nil {
		return nil, err
	}

	scenes := timeline.SegmentScenes(boundaries, total, config.Conf.Segment)
	logger.Info("scenes segmented",
		zap.String("task", taskID),
		zap.Int("scenes", len(scenes)),
		zap.Float64("total", total))

	s.reportProgress(taskID, 15, "aligning dialogue")
	units, err := s.buildUnits(ctx, taskID, videoPath, scenes)
	if err != nil {
		return nil, err
	}

	s.reportProgress(taskID, 30, "analyzing frames")
	if err := s.analyzeUnits(ctx, taskID, videoPath, units); err != nil {
		return nil, err
	}

	packed := timeline.CombineUnits(units, config.Conf.Combine)

	manifest := &timeline.Manifest{
		Version:     timeline.ManifestVersion,
		TaskID:      taskID,
		SourcePath:  videoPath,
		DurationSec: total,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Units:       packed,
	}
	if err := timeline.SaveManifest(manifestPath(taskID), manifest); err != nil {
		return nil, err
	}

	estimated := lo.SumBy(packed, func(u timeline.Unit) float64 {
		return s.Generator.EstimateCost(u.Duration())
	})

	logger.Info("analysis complete",
		zap.String("task", taskID),
		zap.Int("units", len(packed)),
		zap.Float64("estimated_cost_usd", estimated))

	return &dto.AnalyzeResData{
		TaskId:        taskID,
		ManifestPath:  manifestPath(taskID),
		SceneCount:    len(scenes),
		UnitCount:     len(packed),
		EstimatedCost: estimated,
	}, nil
}

// buildUnits chunks over-long scenes and attributes dialogue to each
// resulting window via the midpoint rule.
func (s *Service) buildUnits(ctx context.Context, taskID, videoPath string, scenes []timeline.Scene) ([]timeline.Unit, error) {
	var units []timeline.Unit

	for i := range scenes {
		scene := &scenes[i]

		segments, err := s.Transcriber.TranscribeWindow(ctx, videoPath, scene.Span)
		if err != nil {
			// Dialogue is annotation, not structure. A failed transcription
			// leaves the unit without text instead of failing the run.
			log.GetLogger().Warn("transcription failed, continuing without dialogue",
				zap.String("task", taskID),
				zap.String("scene", scene.ID),
				zap.Error(err))
			segments = nil
		}

		if scene.DurationSec <= config.Conf.Segment.MaxUnitDuration {
			scene.Dialogue = joinSegments(segments)
			units = append(units, timeline.SceneUnit(scene))
			continue
		}

		chunks := timeline.ChunkScene(*scene, config.Conf.Chunk)
		windows := lo.Map(chunks, func(c timeline.Chunk, _ int) timeline.Span {
			// Window offsets relative to the scene start match the
			// transcript's coordinate base.
			return timeline.Span{Start: c.Start - scene.Start, End: c.End - scene.Start}
		})
		var texts []string
		if segmentsUntimed(segments) {
			// No timestamps to take midpoints from; spread the text evenly
			// instead of dumping it all into the first window.
			texts = timeline.DistributeText(rawText(segments), len(windows))
		} else {
			texts = timeline.AlignDialogue(windows, segments)
		}
		for j := range chunks {
			chunks[j].Dialogue = texts[j]
			units = append(units, timeline.ChunkUnit(&chunks[j]))
		}
	}
	return units, nil
}

// analyzeUnits extracts representative frames and runs the vision call for
// each unit. Units are processed one at a time; only the frame grabs inside
// a unit run in parallel. Analysis failures are per-unit: the unit keeps its
// dialogue as prompt and the run continues.
func (s *Service) analyzeUnits(ctx context.Context, taskID, videoPath string, units []timeline.Unit) error {
	for _, u := range units {
		count := frameCountFor(u.Duration())
		window := u.Window()

		paths := make([]string, count)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < count; i++ {
			i := i
			g.Go(func() error {
				sub := frameWindow(window, i, count)
				got, err := s.Frames.ExtractFrames(gctx, videoPath, sub, 1, framesDir(taskID, u.ID()+frameSuffix(i)))
				if err != nil {
					return err
				}
				paths[i] = got[0]
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.GetLogger().Warn("frame extraction failed for unit",
				zap.String("task", taskID),
				zap.String("unit", u.ID()),
				zap.Error(err))
			paths = nil
		}

		analysis, err := s.Analyzer.AnalyzeUnit(ctx, u, lo.Compact(paths))
		if err != nil {
			log.GetLogger().Warn("vision analysis failed, falling back to dialogue prompt",
				zap.String("task", taskID),
				zap.String("unit", u.ID()),
				zap.Error(err))
			analysis = timeline.Analysis{Prompt: u.DialogueText()}
		}
		setAnalysis(u, analysis)
	}
	return nil
}

// frameCountFor picks how many representative stills a unit needs.
func frameCountFor(duration float64) int {
	switch {
	case duration <= 2:
		return 1
	case duration <= 4:
		return 2
	default:
		return 3
	}
}

// frameWindow slices the unit window into count equal parts and returns the
// i-th, so parallel grabs sample distinct moments.
func frameWindow(w timeline.Span, i, count int) timeline.Span {
	step := w.Duration() / float64(count)
	return timeline.Span{
		Start: w.Start + float64(i)*step,
		End:   w.Start + float64(i+1)*step,
	}
}

func frameSuffix(i int) string {
	return string(rune('a' + i))
}

func setAnalysis(u timeline.Unit, a timeline.Analysis) {
	switch u.Kind {
	case timeline.KindScene:
		u.Scene.Analysis = a
	case timeline.KindChunk:
		u.Chunk.Analysis = a
	}
}

func joinSegments(segments []timeline.DialogueSegment) string {
	texts := timeline.AlignDialogue([]timeline.Span{{Start: 0, End: 1e9}}, segments)
	return texts[0]
}

// segmentsUntimed reports whether the transcript carries no timing at all.
// Midpoint attribution is meaningless for such a transcript.
func segmentsUntimed(segments []timeline.DialogueSegment) bool {
	if len(segments) == 0 {
		return false
	}
	for _, s := range segments {
		if s.Start != 0 || s.End != 0 {
			return false
		}
	}
	return true
}

func rawText(segments []timeline.DialogueSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
