package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_NilPayloadIsAnError(t *testing.T) {
	for _, kind := range []UnitKind{KindScene, KindChunk, KindGroup} {
		err := Unit{Kind: kind}.Validate()
		assert.Error(t, err, "kind %s with nil payload", kind)
	}
}

func TestValidate_MismatchedPayload(t *testing.T) {
	scene := Scene{ID: "scene_01", Span: Span{Start: 0, End: 3}, DurationSec: 3}
	chunk := Chunk{ID: "scene_01_chunk_01", Span: Span{Start: 0, End: 3}, ChunkIndex: 1, ChunkCount: 1}

	u := Unit{Kind: KindChunk, Scene: &scene, Chunk: &chunk}
	assert.Error(t, u.Validate())

	assert.Error(t, Unit{Kind: "mystery", Scene: &scene}.Validate())
}
