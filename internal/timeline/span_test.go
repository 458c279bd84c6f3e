package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpan_Contains(t *testing.T) {
	s := Span{Start: 6, End: 13}

	assert.True(t, s.Contains(6), "start is inclusive")
	assert.True(t, s.Contains(12.999))
	assert.False(t, s.Contains(13), "end is exclusive")
	assert.False(t, s.Contains(5.5))
}

func TestSpan_Midpoint(t *testing.T) {
	assert.InDelta(t, 9.5, Span{Start: 6, End: 13}.Midpoint(), 1e-9)
}

func TestSpan_Valid(t *testing.T) {
	assert.True(t, Span{Start: 0, End: 0.5}.Valid())
	assert.False(t, Span{Start: 3, End: 3}.Valid())
	assert.False(t, Span{Start: 5, End: 4}.Valid())
	assert.False(t, Span{Start: -1, End: 4}.Valid())
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00.000", FormatTimestamp(0))
	assert.Equal(t, "00:00:07.250", FormatTimestamp(7.25))
	assert.Equal(t, "00:01:05.000", FormatTimestamp(65))
	assert.Equal(t, "01:01:01.500", FormatTimestamp(3661.5))
}

func TestUnit_Validate(t *testing.T) {
	s := testScene("scene_01", 0, 5)
	assert.NoError(t, SceneUnit(&s).Validate())

	assert.Error(t, Unit{Kind: KindScene}.Validate())
	assert.Error(t, Unit{Kind: "mystery"}.Validate())

	c := Chunk{ID: "scene_01_chunk_01", ChunkIndex: 2, ChunkCount: 1, Span: Span{0, 7}}
	assert.Error(t, ChunkUnit(&c).Validate(), "count below index is malformed")

	g := CombinedGroup{ID: "combined_01", Members: []Scene{s}}
	assert.Error(t, GroupUnit(&g).Validate(), "one-member groups must have been unwrapped")
}

func TestUnit_Accessors(t *testing.T) {
	s := testScene("scene_01", 2, 6)
	s.Dialogue = "hello"
	u := SceneUnit(&s)

	assert.Equal(t, "scene_01", u.ID())
	assert.InDelta(t, 4.0, u.Duration(), 1e-9)
	assert.Equal(t, Span{Start: 2, End: 6}, u.Window())
	assert.Equal(t, "hello", u.DialogueText())

	u.SetPrompt("a prompt")
	assert.Equal(t, "a prompt", s.Prompt, "SetPrompt writes through to the underlying scene")
}
