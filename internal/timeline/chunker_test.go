package timeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/config"
)

func chunkCfg() config.ChunkConfig {
	return config.ChunkConfig{
		ChunkLength: 7.0,
		Overlap:     1.0,
		MinTail:     2.0,
	}
}

func testScene(id string, start, end float64) Scene {
	span := Span{Start: start, End: end}
	return Scene{
		ID:          id,
		Span:        span,
		StartTime:   FormatTimestamp(start),
		EndTime:     FormatTimestamp(end),
		DurationSec: span.Duration(),
	}
}

func TestChunkScene_SeventeenSeconds(t *testing.T) {
	chunks := ChunkScene(testScene("scene_01", 0, 17), chunkCfg())

	require.Len(t, chunks, 3)
	assert.InDelta(t, 0.0, chunks[0].Start, 1e-9)
	assert.InDelta(t, 7.0, chunks[0].End, 1e-9)
	assert.InDelta(t, 6.0, chunks[1].Start, 1e-9)
	assert.InDelta(t, 13.0, chunks[1].End, 1e-9)
	assert.InDelta(t, 12.0, chunks[2].Start, 1e-9)
	assert.InDelta(t, 17.0, chunks[2].End, 1e-9)

	for i := 1; i < len(chunks); i++ {
		overlap := chunks[i-1].End - chunks[i].Start
		assert.InDelta(t, 1.0, overlap, 1e-9, "chunks %d/%d must overlap by exactly the configured second", i, i+1)
	}
}

func TestChunkScene_ShortTailAbsorbed(t *testing.T) {
	// 14.5s: second window would leave a 1.5s tail, below the minimum,
	// so the second chunk runs to the scene end instead.
	chunks := ChunkScene(testScene("scene_01", 0, 14.5), chunkCfg())

	require.Len(t, chunks, 2)
	assert.InDelta(t, 7.0, chunks[0].End, 1e-9)
	assert.InDelta(t, 6.0, chunks[1].Start, 1e-9)
	assert.InDelta(t, 14.5, chunks[1].End, 1e-9)
}

func TestChunkScene_NonZeroOrigin(t *testing.T) {
	chunks := ChunkScene(testScene("scene_03", 30, 47), chunkCfg())

	require.Len(t, chunks, 3)
	assert.InDelta(t, 30.0, chunks[0].Start, 1e-9)
	assert.InDelta(t, 47.0, chunks[2].End, 1e-9)
}

func TestChunkScene_MetadataBackfill(t *testing.T) {
	chunks := ChunkScene(testScene("scene_02", 0, 17), chunkCfg())

	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, fmt.Sprintf("scene_02_chunk_%02d", i+1), c.ID)
		assert.Equal(t, i+1, c.ChunkIndex)
		assert.Equal(t, 3, c.ChunkCount, "count is backfilled on every chunk after emission")
		assert.Equal(t, "scene_02", c.ParentSceneID)
		assert.True(t, c.IsChunk)
	}
	assert.Zero(t, chunks[0].OverlapPrev)
	assert.InDelta(t, 1.0, chunks[0].OverlapNext, 1e-9)
	assert.InDelta(t, 1.0, chunks[2].OverlapPrev, 1e-9)
	assert.Zero(t, chunks[2].OverlapNext)
}

func TestChunkScene_CoverageProperty(t *testing.T) {
	cfg := chunkCfg()
	for _, dur := range []float64{8.5, 9.0, 12.3, 14.5, 17.0, 25.0, 40.7, 61.0} {
		scene := testScene("scene_01", 0, dur)
		chunks := ChunkScene(scene, cfg)

		require.NotEmpty(t, chunks, "duration %.1f", dur)
		assert.InDelta(t, dur, ChunkCoverage(chunks, cfg.Overlap), DefaultEpsilon,
			"sum of chunk lengths minus shared overlap must equal scene duration (%.1fs)", dur)

		assert.InDelta(t, scene.Start, chunks[0].Start, 1e-9)
		assert.InDelta(t, scene.End, chunks[len(chunks)-1].End, 1e-9)
		for i := 1; i < len(chunks); i++ {
			assert.InDelta(t, cfg.Overlap, chunks[i-1].End-chunks[i].Start, 1e-9)
		}
	}
}

func TestChunkScene_NoUndersizedChunks(t *testing.T) {
	cfg := chunkCfg()
	for dur := 8.1; dur < 30; dur += 0.7 {
		for _, c := range ChunkScene(testScene("scene_01", 0, dur), cfg) {
			assert.GreaterOrEqual(t, c.DurationSec, cfg.MinTail-DefaultEpsilon,
				"duration %.1f produced an undersized chunk", dur)
		}
	}
}
