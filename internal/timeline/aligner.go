package timeline

import (
	"regexp"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// DialogueSegment is one timed transcript line, offsets relative to the
// owning scene's start. Consumed read-only.
type DialogueSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NoDialoguePlaceholder marks a unit with no attributed dialogue when its
// siblings have some, so downstream prompts read as visual-only continuity
// rather than an accidental omission.
const NoDialoguePlaceholder = "(visual continuity, no dialogue)"

// AlignDialogue assigns each transcript segment to exactly one window using
// the midpoint rule: the segment belongs to the first window whose half-open
// span contains the segment's temporal midpoint. Because every window after
// the first begins before its predecessor ends, first-match resolves the
// overlap region deterministically and each midpoint lands in exactly one
// output slot. Windows are relative to the same origin as the segments (the
// scene start).
//
// Returns the dialogue text per window, in window order.
func AlignDialogue(windows []Span, segments []DialogueSegment) []string {
	parts := make([][]string, len(windows))

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		mid := (seg.Start + seg.End) / 2
		idx := -1
		for i, w := range windows {
			if w.Contains(mid) {
				idx = i
				break
			}
		}
		if idx == -1 {
			// Midpoint at or past the last window's end; attribute to the
			// final window so no segment is lost.
			idx = len(windows) - 1
		}
		parts[idx] = append(parts[idx], text)
	}

	out := make([]string, len(windows))
	for i, p := range parts {
		out[i] = strings.Join(p, " ")
	}
	return fillPlaceholders(out)
}

var sentenceSplitRe = regexp.MustCompile(`[^.!?]+[.!?]*`)

// DistributeText is the fallback for untimed transcripts: the raw text is
// split into sentence-like pieces and spread evenly across the windows in
// order, remainder going to the last window.
func DistributeText(text string, windowCount int) []string {
	out := make([]string, windowCount)
	if windowCount == 0 {
		return out
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fillPlaceholders(out)
	}
	if windowCount == 1 {
		out[0] = text
		return out
	}

	var sentences []string
	for _, s := range sentenceSplitRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	per := len(sentences) / windowCount
	for i := 0; i < windowCount; i++ {
		lo := i * per
		hi := lo + per
		if i == windowCount-1 {
			hi = len(sentences) // remainder goes to the last window
		}
		out[i] = strings.Join(sentences[lo:hi], " ")
	}
	return fillPlaceholders(out)
}

func fillPlaceholders(texts []string) []string {
	if len(texts) < 2 {
		return texts
	}
	any := false
	for _, t := range texts {
		if t != "" {
			any = true
			break
		}
	}
	if !any {
		return texts
	}
	for i, t := range texts {
		if t == "" {
			texts[i] = NoDialoguePlaceholder
		}
	}
	return texts
}

const dedupeSimilarity = 0.8

// JoinChunkDialogue reassembles per-chunk dialogue into one scene transcript
// for reporting after a stitch. Adjacent chunks share an overlap second, so
// per-chunk transcripts can repeat the boundary sentence; a leading sentence
// of the next chunk that nearly matches the previous chunk's trailing
// sentence is dropped.
func JoinChunkDialogue(texts []string) string {
	var parts []string
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" || t == NoDialoguePlaceholder {
			continue
		}
		if len(parts) > 0 {
			prevTail := lastSentence(parts[len(parts)-1])
			head, rest := splitFirstSentence(t)
			ratio := levenshtein.RatioForStrings([]rune(prevTail), []rune(head), levenshtein.DefaultOptions)
			if ratio >= dedupeSimilarity {
				t = strings.TrimSpace(rest)
				if t == "" {
					continue
				}
			}
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}

func lastSentence(text string) string {
	sentences := sentenceSplitRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return text
	}
	return strings.TrimSpace(sentences[len(sentences)-1])
}

func splitFirstSentence(text string) (string, string) {
	loc := sentenceSplitRe.FindStringIndex(text)
	if loc == nil {
		return text, ""
	}
	return strings.TrimSpace(text[loc[0]:loc[1]]), text[loc[1]:]
}
