package timeline

import (
	"fmt"
	"sort"

	"sceneforge/config"
	"sceneforge/pkg/errors"
)

// CutSegment is one member's slice of a combined clip, offsets relative to
// the generated clip's own timeline.
type CutSegment struct {
	SceneID string  `json:"scene_id"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// SplitPlan maps a combined group's clip back to its member scenes. Member k
// occupies the window beginning at the sum of the durations of members
// 0..k-1. The group's own source span plays no part here: the generated clip
// starts at zero regardless of where the members sat in the source video.
func SplitPlan(g CombinedGroup) []CutSegment {
	segs := make([]CutSegment, 0, len(g.Members))
	var offset float64
	for _, m := range g.Members {
		d := m.Span.Duration()
		segs = append(segs, CutSegment{
			SceneID: m.ID,
			Start:   offset,
			End:     offset + d,
		})
		offset += d
	}
	return segs
}

// StitchStep joins the running result to the next chunk clip with a
// crossfade starting FadeOffset seconds into the running result.
type StitchStep struct {
	ChunkID    string  `json:"chunk_id"`
	ClipPath   string  `json:"clip_path"`
	FadeOffset float64 `json:"fade_offset"`
	FadeDur    float64 `json:"fade_duration"`
}

// StitchPlan orders a scene's chunk clips and computes the crossfade offset
// for each join. Adjacent chunks share cfg.Overlap seconds of source, so the
// fade starts at ChunkLength-Overlap into the accumulated result and runs
// for the overlap duration; each join therefore advances the result by
// ChunkLength-Overlap, matching ChunkCoverage.
//
// All chunks of the scene must be present: a partial set would silently drop
// source time, so it is an error instead.
func StitchPlan(chunks []Chunk, clipPaths map[string]string, cfg config.ChunkConfig) ([]StitchStep, error) {
	if len(chunks) == 0 {
		return nil, errors.New(errors.CodeStitchPartial, "no chunks to stitch")
	}

	ordered := append([]Chunk(nil), chunks...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ChunkIndex < ordered[j].ChunkIndex
	})

	want := ordered[0].ChunkCount
	if len(ordered) != want {
		return nil, errors.WrapWithDetail(errors.CodeStitchPartial, "incomplete chunk set",
			fmt.Sprintf("scene %s: have %d of %d chunks", ordered[0].ParentSceneID, len(ordered), want), nil)
	}
	for i, c := range ordered {
		if c.ChunkIndex != i+1 {
			return nil, errors.WrapWithDetail(errors.CodeStitchPartial, "incomplete chunk set",
				fmt.Sprintf("scene %s: missing chunk %d", c.ParentSceneID, i+1), nil)
		}
	}

	stride := cfg.ChunkLength - cfg.Overlap
	steps := make([]StitchStep, 0, len(ordered))
	offset := 0.0
	for i, c := range ordered {
		path, ok := clipPaths[c.ID]
		if !ok {
			return nil, errors.WrapWithDetail(errors.CodeStitchPartial, "missing clip",
				fmt.Sprintf("chunk %s has no generated clip", c.ID), nil)
		}
		step := StitchStep{ChunkID: c.ID, ClipPath: path}
		if i > 0 {
			step.FadeOffset = offset
			step.FadeDur = cfg.Overlap
		}
		steps = append(steps, step)
		offset += stride
	}
	return steps, nil
}
