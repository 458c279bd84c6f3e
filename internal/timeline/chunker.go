package timeline

import (
	"fmt"

	"sceneforge/config"
)

// ChunkScene splits an over-long scene into overlapping fixed-length windows.
// Each chunk after the first starts overlap seconds before its predecessor
// ends. A trailing remainder shorter than MinTail is absorbed into the final
// chunk instead of becoming its own undersized window. The union of the chunk
// spans covers the scene exactly, with only the declared pairwise overlap.
//
// ChunkCount is backfilled in a second pass once the full list exists, since
// the count is unknowable while still emitting.
func ChunkScene(scene Scene, cfg config.ChunkConfig) []Chunk {
	var chunks []Chunk

	cur := scene.Start
	for cur < scene.End-DefaultEpsilon {
		chunkEnd := cur + cfg.ChunkLength
		if chunkEnd > scene.End {
			chunkEnd = scene.End
		}
		if tail := scene.End - chunkEnd; tail > DefaultEpsilon && tail < cfg.MinTail {
			// The next window would be too short to generate; absorb it here.
			chunkEnd = scene.End
		}

		span := Span{Start: cur, End: chunkEnd}
		chunks = append(chunks, Chunk{
			ParentSceneID: scene.ID,
			Span:          span,
			StartTime:     FormatTimestamp(span.Start),
			EndTime:       FormatTimestamp(span.End),
			DurationSec:   span.Duration(),
			IsChunk:       true,
		})

		if chunkEnd >= scene.End-DefaultEpsilon {
			break
		}
		cur = chunkEnd - cfg.Overlap
	}

	for i := range chunks {
		chunks[i].ChunkIndex = i + 1
		chunks[i].ChunkCount = len(chunks)
		chunks[i].ID = fmt.Sprintf("%s_chunk_%02d", scene.ID, i+1)
		if i > 0 {
			chunks[i].OverlapPrev = cfg.Overlap
		}
		if i < len(chunks)-1 {
			chunks[i].OverlapNext = cfg.Overlap
		}
	}
	return chunks
}

// ChunkCoverage returns the summed chunk lengths minus the shared overlap.
// For a correct chunking this equals the parent scene's duration.
func ChunkCoverage(chunks []Chunk, overlap float64) float64 {
	var sum float64
	for _, c := range chunks {
		sum += c.DurationSec
	}
	if len(chunks) > 1 {
		sum -= float64(len(chunks)-1) * overlap
	}
	return sum
}
