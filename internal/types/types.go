package types

import (
	"context"
	"time"

	"sceneforge/internal/timeline"
)

// PipelineTask tracks one end-to-end run from source video to generated
// clips. Persisted so the server survives restarts and the history API can
// list past runs.
type PipelineTask struct {
	Id             int64   `gorm:"primaryKey;autoIncrement" json:"-"`
	TaskId         string  `gorm:"uniqueIndex;size:64" json:"task_id"`
	SourcePath     string  `json:"source_path"`
	WorkDir        string  `json:"work_dir"`
	Status         uint8   `json:"status"`
	StatusMsg      string  `json:"status_msg"`
	FailReason     string  `json:"fail_reason"`
	ProcessPct     uint8   `json:"process_percent"`
	UnitsTotal     int     `json:"units_total"`
	UnitsCompleted int     `json:"units_completed"`
	UnitsSkipped   int     `json:"units_skipped"`
	UnitsFailed    int     `json:"units_failed"`
	CostUSD        float64 `json:"cost_usd"`
	CreateTime     int64   `gorm:"autoCreateTime" json:"create_time"`
	UpdateTime     int64   `gorm:"autoUpdateTime" json:"update_time"`
}

// Task status values
const (
	TaskStatusPending   uint8 = 0
	TaskStatusRunning   uint8 = 1
	TaskStatusCompleted uint8 = 2
	TaskStatusFailed    uint8 = 3
)

// UnitResult records one generation unit's outcome inside a run.
type UnitResult struct {
	UnitID     string  `json:"unit_id"`
	Kind       string  `json:"kind"`
	Status     string  `json:"status"` // completed | skipped | failed
	ClipPath   string  `json:"clip_path,omitempty"`
	FailReason string  `json:"fail_reason,omitempty"`
	CostUSD    float64 `json:"cost_usd"`
	Elapsed    float64 `json:"elapsed_seconds"`
}

// Unit result status values
const (
	UnitCompleted = "completed"
	UnitSkipped   = "skipped"
	UnitFailed    = "failed"
)

// SceneResult records one scene that was stitched back from its chunk clips,
// with the dialogue re-joined across the chunk overlaps.
type SceneResult struct {
	SceneID  string `json:"scene_id"`
	Path     string `json:"path"`
	Dialogue string `json:"dialogue,omitempty"`
}

// RunSummary is the operator-facing report for one pipeline run.
type RunSummary struct {
	TaskID     string        `json:"task_id"`
	Completed  int           `json:"completed"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	TotalCost  float64       `json:"total_cost_usd"`
	Elapsed    float64       `json:"elapsed_seconds"`
	Results    []UnitResult  `json:"results"`
	Scenes     []SceneResult `json:"scenes,omitempty"`
	FinishedAt time.Time     `json:"finished_at"`
}

// AnyFailed reports whether the run should exit non-zero.
func (s *RunSummary) AnyFailed() bool {
	return s.Failed > 0
}

// SceneDetector finds cut timestamps in a source video.
type SceneDetector interface {
	DetectBoundaries(ctx context.Context, videoPath string, threshold float64) ([]float64, error)
	ProbeDuration(ctx context.Context, videoPath string) (float64, error)
}

// FrameExtractor pulls representative still images out of a source window.
type FrameExtractor interface {
	ExtractFrames(ctx context.Context, videoPath string, window timeline.Span, count int, outDir string) ([]string, error)
}

// Transcriber produces timed dialogue segments for a source window. An
// implementation may return segments without timing, in which case the
// fallback text distribution applies.
type Transcriber interface {
	TranscribeWindow(ctx context.Context, videoPath string, window timeline.Span) ([]timeline.DialogueSegment, error)
}

// VisionAnalyzer turns still frames plus unit metadata into a description
// and a generation prompt. The pipeline threads the returned fields through
// without interpreting them.
type VisionAnalyzer interface {
	AnalyzeUnit(ctx context.Context, unit timeline.Unit, framePaths []string) (timeline.Analysis, error)
}

// ClipGenerator submits a prompt to the remote video generator and returns
// the local path of the downloaded clip.
type ClipGenerator interface {
	GenerateClip(ctx context.Context, prompt string, outPath string) error
	EstimateCost(durationSec float64) float64
}

// Assembler performs the ffmpeg-side inverse operations.
type Assembler interface {
	CutSegment(ctx context.Context, srcPath string, start, end float64, outPath string) error
	StitchWithCrossfade(ctx context.Context, steps []timeline.StitchStep, outPath string) error
	ConcatClips(ctx context.Context, clipPaths []string, outPath string) error
}

// ProgressFunc receives coarse progress updates during a run. pct is 0-100.
type ProgressFunc func(taskID string, pct uint8, msg string)
