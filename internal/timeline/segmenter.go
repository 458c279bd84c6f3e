package timeline

import (
	"fmt"
	"math"
	"sort"

	"sceneforge/config"
)

// SegmentScenes turns boundary timestamps into scene records. Boundaries are
// sorted and deduplicated first; 0.0 and the total duration are added when
// missing. Scenes shorter than the minimum are dropped and the surviving
// scenes renumbered with no gaps; scenes over the unit ceiling are kept but
// flagged so the chunker picks them up.
func SegmentScenes(boundaries []float64, totalDuration float64, cfg config.SegmentConfig) []Scene {
	bounds := normalizeBoundaries(boundaries, totalDuration)

	// With fewer than 2 usable boundaries the whole media is one scene.
	if len(bounds) < 2 {
		bounds = []float64{0, totalDuration}
	}

	var scenes []Scene
	for i := 0; i < len(bounds)-1; i++ {
		span := Span{Start: bounds[i], End: bounds[i+1]}
		if span.Duration() < cfg.MinSceneDuration {
			continue
		}
		scenes = append(scenes, Scene{
			Span:            span,
			StartTime:       FormatTimestamp(span.Start),
			EndTime:         FormatTimestamp(span.End),
			DurationSec:     span.Duration(),
			DurationWarning: span.Duration() > cfg.MaxUnitDuration,
		})
	}

	// Rank-ordered ids, renumbered after drops.
	for i := range scenes {
		scenes[i].ID = fmt.Sprintf("scene_%02d", i+1)
	}
	return scenes
}

func normalizeBoundaries(boundaries []float64, totalDuration float64) []float64 {
	bounds := make([]float64, 0, len(boundaries)+2)
	for _, b := range boundaries {
		if b >= 0 && b <= totalDuration+DefaultEpsilon {
			bounds = append(bounds, math.Min(b, totalDuration))
		}
	}
	bounds = append(bounds, 0, totalDuration)
	sort.Float64s(bounds)

	dedup := bounds[:1]
	for _, b := range bounds[1:] {
		if b-dedup[len(dedup)-1] > DefaultEpsilon {
			dedup = append(dedup, b)
		}
	}
	return dedup
}
