package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJsonFromText(t *testing.T) {
	t.Run("markdown fence", func(t *testing.T) {
		text := "Here you go:\n```json\n{\"a\": 1}\n```\nanything else"
		assert.Equal(t, `{"a": 1}`, ExtractJsonFromText(text))
	})

	t.Run("bare object with prose", func(t *testing.T) {
		text := `The result is {"description": "a dog"} as requested.`
		assert.Equal(t, `{"description": "a dog"}`, ExtractJsonFromText(text))
	})

	t.Run("array", func(t *testing.T) {
		assert.Equal(t, `[1, 2]`, ExtractJsonFromText(`values: [1, 2]`))
	})

	t.Run("no json returns raw", func(t *testing.T) {
		assert.Equal(t, "just words", ExtractJsonFromText("just words"))
	})
}

func TestDecodeModelJson(t *testing.T) {
	var out struct {
		Description string `json:"description"`
	}
	err := DecodeModelJson("```json\n{\"description\": \"x\"}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, "x", out.Description)
}

func TestSanitizePathName(t *testing.T) {
	assert.Equal(t, "my_video_v2", SanitizePathName("my video/v2"))
	assert.Equal(t, "clip.mp4", SanitizePathName(" clip.mp4 "))
	assert.Equal(t, "unnamed", SanitizePathName("///"))
}

func TestNaturalSortPaths(t *testing.T) {
	paths := []string{
		"/out/scene_10.mp4",
		"/out/scene_2.mp4",
		"/out/scene_1.mp4",
	}
	NaturalSortPaths(paths)
	assert.Equal(t, []string{
		"/out/scene_1.mp4",
		"/out/scene_2.mp4",
		"/out/scene_10.mp4",
	}, paths)
}

func TestGenerateRandString(t *testing.T) {
	s := GenerateRandString(8)
	assert.Len(t, s, 8)
	assert.NotEqual(t, s, GenerateRandString(8))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42.5s", FormatDuration(42.5))
	assert.Equal(t, "2m05s", FormatDuration(125))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$1.60", FormatCost(1.6))
}
