// Package timeline implements the temporal accounting behind the clip
// pipeline: scene segmentation from boundary timestamps, overlapped chunking
// of over-long scenes, dialogue-to-window alignment, capacity packing of
// short scenes, and the inverse split/stitch plans. Every timestamp here is
// an absolute offset in seconds from the start of the source video.
package timeline

import "fmt"

// DefaultEpsilon is the tolerance for float timestamp comparisons. Spans of
// the same parent may not leave gaps larger than this.
const DefaultEpsilon = 0.001

// Span is a half-open time interval [Start, End) in seconds.
type Span struct {
	Start float64 `json:"start_seconds"`
	End   float64 `json:"end_seconds"`
}

// Duration returns End - Start.
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// Contains reports whether t falls inside the half-open interval.
func (s Span) Contains(t float64) bool {
	return t >= s.Start && t < s.End
}

// Midpoint returns the temporal center of the span.
func (s Span) Midpoint() float64 {
	return (s.Start + s.End) / 2
}

// Valid reports whether the span is well-formed (Start < End, Start >= 0).
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End > s.Start
}

// FormatTimestamp converts seconds to HH:MM:SS.mmm for display.
func FormatTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(seconds/60) % 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}
