package dto

import "sceneforge/internal/types"

// StartPipelineTaskReq starts a full source-to-clips run.
type StartPipelineTaskReq struct {
	Source       string `json:"source" binding:"required"` // local path or URL
	SkipExisting bool   `json:"skip_existing"`
	DryRun       bool   `json:"dry_run"`
	MaxUnits     int    `json:"max_units"`
}

type StartPipelineTaskResData struct {
	TaskId string `json:"task_id"`
}

// GetPipelineTaskReq queries one task's status.
type GetPipelineTaskReq struct {
	TaskId string `form:"taskId" binding:"required"`
}

type GetPipelineTaskResData struct {
	TaskId         string  `json:"task_id"`
	Status         uint8   `json:"status"`
	StatusMsg      string  `json:"status_msg"`
	FailReason     string  `json:"fail_reason,omitempty"`
	ProcessPercent uint8   `json:"process_percent"`
	UnitsTotal     int     `json:"units_total"`
	UnitsCompleted int     `json:"units_completed"`
	UnitsSkipped   int     `json:"units_skipped"`
	UnitsFailed    int     `json:"units_failed"`
	CostUSD        float64 `json:"cost_usd"`
	OutputPath     string  `json:"output_path,omitempty"`
}

// AnalyzeVideoReq runs analysis only, producing a manifest and a cost
// estimate without any generation spend.
type AnalyzeVideoReq struct {
	Source string `json:"source" binding:"required"`
}

// AnalyzeResData is returned by the analyze-only endpoint: the unit plan
// before any generation spend.
type AnalyzeResData struct {
	TaskId        string  `json:"task_id"`
	ManifestPath  string  `json:"manifest_path"`
	SceneCount    int     `json:"scene_count"`
	UnitCount     int     `json:"unit_count"`
	EstimatedCost float64 `json:"estimated_cost_usd"`
}

// RunSummaryRes wraps the run report for API responses.
type RunSummaryRes struct {
	Error int32             `json:"error"`
	Msg   string            `json:"msg"`
	Data  *types.RunSummary `json:"data"`
}
