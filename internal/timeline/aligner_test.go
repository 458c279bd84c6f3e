package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignDialogue_MidpointRule(t *testing.T) {
	// Chunk windows for a 17s scene, relative to scene start.
	windows := []Span{{0, 7}, {6, 13}, {12, 17}}
	segments := []DialogueSegment{
		{Text: "First line.", Start: 0.5, End: 2.0},     // mid 1.25 -> window 0
		{Text: "Boundary line.", Start: 6.2, End: 7.4},  // mid 6.8, inside both [0,7) and [6,13); first match wins
		{Text: "Middle line.", Start: 8.0, End: 10.0},   // mid 9.0 -> window 1
		{Text: "Closing line.", Start: 14.0, End: 16.5}, // mid 15.25 -> window 2
	}

	texts := AlignDialogue(windows, segments)

	require.Len(t, texts, 3)
	assert.Equal(t, "First line. Boundary line.", texts[0])
	assert.Equal(t, "Middle line.", texts[1])
	assert.Equal(t, "Closing line.", texts[2])
}

func TestAlignDialogue_ExactlyOneOwnerPerSegment(t *testing.T) {
	windows := []Span{{0, 7}, {6, 13}, {12, 17}}
	segments := []DialogueSegment{
		{Text: "a.", Start: 0, End: 1},
		{Text: "b.", Start: 5.9, End: 6.3},
		{Text: "c.", Start: 6.8, End: 7.2},
		{Text: "d.", Start: 11.5, End: 12.5},
		{Text: "e.", Start: 16.0, End: 17.0},
	}

	texts := AlignDialogue(windows, segments)

	total := 0
	for _, txt := range texts {
		if txt == NoDialoguePlaceholder {
			continue
		}
		for _, seg := range segments {
			if containsWord(txt, seg.Text) {
				total++
			}
		}
	}
	assert.Equal(t, len(segments), total, "each segment must land in exactly one window")
}

func containsWord(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func TestAlignDialogue_MidpointPastLastWindow(t *testing.T) {
	// A segment trailing past the last window end is attributed to the last
	// window rather than dropped.
	windows := []Span{{0, 7}, {6, 13}}
	segments := []DialogueSegment{{Text: "Trailing.", Start: 12.5, End: 13.8}}

	texts := AlignDialogue(windows, segments)

	assert.Equal(t, "Trailing.", texts[1])
}

func TestAlignDialogue_EmptyWindowGetsPlaceholder(t *testing.T) {
	windows := []Span{{0, 7}, {6, 13}, {12, 17}}
	segments := []DialogueSegment{
		{Text: "Only early speech.", Start: 1, End: 3},
	}

	texts := AlignDialogue(windows, segments)

	assert.Equal(t, "Only early speech.", texts[0])
	assert.Equal(t, NoDialoguePlaceholder, texts[1])
	assert.Equal(t, NoDialoguePlaceholder, texts[2])
}

func TestAlignDialogue_AllSilentStaysEmpty(t *testing.T) {
	texts := AlignDialogue([]Span{{0, 7}, {6, 13}}, nil)

	assert.Equal(t, []string{"", ""}, texts)
}

func TestDistributeText_EvenSplitWithRemainder(t *testing.T) {
	text := "One. Two. Three. Four. Five."

	texts := DistributeText(text, 2)

	require.Len(t, texts, 2)
	assert.Equal(t, "One. Two.", texts[0])
	assert.Equal(t, "Three. Four. Five.", texts[1])
}

func TestDistributeText_SingleWindow(t *testing.T) {
	texts := DistributeText("No punctuation at all", 1)

	assert.Equal(t, []string{"No punctuation at all"}, texts)
}

func TestDistributeText_MoreWindowsThanSentences(t *testing.T) {
	texts := DistributeText("Only one.", 3)

	require.Len(t, texts, 3)
	assert.Equal(t, NoDialoguePlaceholder, texts[0])
	assert.Equal(t, NoDialoguePlaceholder, texts[1])
	assert.Equal(t, "Only one.", texts[2])
}

func TestDistributeText_EmptyText(t *testing.T) {
	texts := DistributeText("   ", 2)

	assert.Equal(t, []string{"", ""}, texts)
}

func TestJoinChunkDialogue_DropsNearDuplicateBoundarySentence(t *testing.T) {
	joined := JoinChunkDialogue([]string{
		"We begin the journey. The storm arrives.",
		"The storm arrives! Shelter is found.",
	})

	assert.Equal(t, "We begin the journey. The storm arrives. Shelter is found.", joined)
}

func TestJoinChunkDialogue_KeepsDistinctSentences(t *testing.T) {
	joined := JoinChunkDialogue([]string{
		"A completely different opening.",
		"Nothing like the previous text.",
	})

	assert.Equal(t, "A completely different opening. Nothing like the previous text.", joined)
}

func TestJoinChunkDialogue_SkipsPlaceholders(t *testing.T) {
	joined := JoinChunkDialogue([]string{
		"Spoken words.",
		NoDialoguePlaceholder,
		"More words.",
	})

	assert.Equal(t, "Spoken words. More words.", joined)
}
