package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/config"
)

func segCfg() config.SegmentConfig {
	return config.SegmentConfig{
		DetectThreshold:  0.4,
		MinSceneDuration: 0.5,
		MaxUnitDuration:  8.0,
	}
}

func TestSegmentScenes_NoInternalCuts(t *testing.T) {
	scenes := SegmentScenes([]float64{0.0, 10.0}, 10.0, segCfg())

	require.Len(t, scenes, 1)
	assert.Equal(t, "scene_01", scenes[0].ID)
	assert.InDelta(t, 10.0, scenes[0].DurationSec, 1e-9)
	assert.True(t, scenes[0].DurationWarning)
}

func TestSegmentScenes_DropsSubMinimum(t *testing.T) {
	scenes := SegmentScenes([]float64{0.0, 0.3, 10.0}, 10.0, segCfg())

	require.Len(t, scenes, 1)
	// dropped scene leaves no gap in the id sequence
	assert.Equal(t, "scene_01", scenes[0].ID)
	assert.InDelta(t, 0.3, scenes[0].Start, 1e-9)
	assert.InDelta(t, 10.0, scenes[0].End, 1e-9)
}

func TestSegmentScenes_RenumbersAfterDrops(t *testing.T) {
	scenes := SegmentScenes([]float64{0.0, 3.0, 3.2, 6.0, 9.0}, 9.0, segCfg())

	require.Len(t, scenes, 3)
	assert.Equal(t, "scene_01", scenes[0].ID)
	assert.Equal(t, "scene_02", scenes[1].ID)
	assert.Equal(t, "scene_03", scenes[2].ID)
	// the 3.0-3.2 candidate was dropped; its neighbors remain intact
	assert.InDelta(t, 3.2, scenes[1].Start, 1e-9)
	assert.InDelta(t, 6.0, scenes[1].End, 1e-9)
}

func TestSegmentScenes_FlagsOverMaximum(t *testing.T) {
	scenes := SegmentScenes([]float64{0.0, 8.0, 20.0}, 20.0, segCfg())

	require.Len(t, scenes, 2)
	// exactly 8.0s stays unflagged: the ceiling is inclusive
	assert.False(t, scenes[0].DurationWarning)
	assert.True(t, scenes[1].DurationWarning)
}

func TestSegmentScenes_FewerThanTwoBoundaries(t *testing.T) {
	scenes := SegmentScenes(nil, 6.5, segCfg())

	require.Len(t, scenes, 1)
	assert.InDelta(t, 0.0, scenes[0].Start, 1e-9)
	assert.InDelta(t, 6.5, scenes[0].End, 1e-9)
}

func TestSegmentScenes_UnsortedAndDuplicateBoundaries(t *testing.T) {
	scenes := SegmentScenes([]float64{5.0, 0.0, 5.0, 5.0005, 12.0}, 12.0, segCfg())

	require.Len(t, scenes, 2)
	assert.InDelta(t, 0.0, scenes[0].Start, 1e-9)
	assert.InDelta(t, 5.0, scenes[0].End, 1e-9)
	assert.InDelta(t, 5.0, scenes[1].Start, 1e-9)
	assert.InDelta(t, 12.0, scenes[1].End, 1e-9)
}

func TestSegmentScenes_ClipsOutOfRangeBoundaries(t *testing.T) {
	scenes := SegmentScenes([]float64{-1.0, 4.0, 99.0}, 8.0, segCfg())

	require.Len(t, scenes, 2)
	assert.InDelta(t, 0.0, scenes[0].Start, 1e-9)
	assert.InDelta(t, 8.0, scenes[1].End, 1e-9)
}

func TestSegmentScenes_FormatsTimestamps(t *testing.T) {
	scenes := SegmentScenes([]float64{0.0, 3661.5}, 3661.5, segCfg())

	require.Len(t, scenes, 1)
	assert.Equal(t, "00:00:00.000", scenes[0].StartTime)
	assert.Equal(t, "01:01:01.500", scenes[0].EndTime)
}
