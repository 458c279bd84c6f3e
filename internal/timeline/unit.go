package timeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Analysis holds the text fields returned by the vision collaborator for one
// unit. The pipeline threads them through unchanged.
type Analysis struct {
	Description    string          `json:"description,omitempty"`
	Prompt         string          `json:"scene_prompt,omitempty"`
	CinematicNotes string          `json:"cinematic_notes,omitempty"`
	Diagnostics    map[string]bool `json:"diagnostics,omitempty"`
}

// Scene is one detected scene. Immutable after segmentation except for the
// dialogue and analysis annotations filled in by later phases.
type Scene struct {
	ID string `json:"id"`
	Span
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationSec     float64 `json:"duration"`
	DurationWarning bool    `json:"duration_warning,omitempty"`
	Dialogue        string  `json:"dialogue,omitempty"`
	Analysis
}

// Chunk is a fixed-length window cut from an over-long scene. Chunks are
// exclusively owned by their parent scene and overlap their neighbors by the
// configured overlap.
type Chunk struct {
	ID            string `json:"id"`
	ParentSceneID string `json:"parent_scene_id"`
	ChunkIndex    int    `json:"chunk_number"` // 1-based
	ChunkCount    int    `json:"total_chunks"` // backfilled once all chunks exist
	Span
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	DurationSec float64 `json:"duration"`
	IsChunk     bool    `json:"is_chunk"`
	OverlapPrev float64 `json:"overlap_with_previous"`
	OverlapNext float64 `json:"overlap_with_next"`
	Dialogue    string  `json:"dialogue,omitempty"`
	Analysis
}

// CombinedGroup packs a run of adjacent short scenes into one generation
// call. It exists only between the combine and split-back phases.
type CombinedGroup struct {
	ID        string   `json:"id"`
	MemberIDs []string `json:"member_ids"`
	Span
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	DurationSec float64 `json:"duration"` // sum of member durations, not span length
	Members     []Scene `json:"members"`
	Prompt      string  `json:"scene_prompt,omitempty"`
}

// UnitKind tags the Unit variant.
type UnitKind string

const (
	KindScene UnitKind = "scene"
	KindChunk UnitKind = "chunk"
	KindGroup UnitKind = "combined"
)

// Unit is the tagged variant dispatched to the generation collaborator:
// exactly one of Scene, Chunk, Group is set, selected by Kind.
type Unit struct {
	Kind  UnitKind       `json:"kind"`
	Scene *Scene         `json:"scene,omitempty"`
	Chunk *Chunk         `json:"chunk,omitempty"`
	Group *CombinedGroup `json:"combined,omitempty"`
}

func SceneUnit(s *Scene) Unit { return Unit{Kind: KindScene, Scene: s} }
func ChunkUnit(c *Chunk) Unit { return Unit{Kind: KindChunk, Chunk: c} }
func GroupUnit(g *CombinedGroup) Unit {
	return Unit{Kind: KindGroup, Group: g}
}

// ID returns the unit's stable identifier.
func (u Unit) ID() string {
	switch u.Kind {
	case KindScene:
		return u.Scene.ID
	case KindChunk:
		return u.Chunk.ID
	case KindGroup:
		return u.Group.ID
	}
	return ""
}

// Duration returns the unit's playable duration in seconds.
func (u Unit) Duration() float64 {
	switch u.Kind {
	case KindScene:
		return u.Scene.DurationSec
	case KindChunk:
		return u.Chunk.DurationSec
	case KindGroup:
		return u.Group.DurationSec
	}
	return 0
}

// Window returns the unit's source-video span.
func (u Unit) Window() Span {
	switch u.Kind {
	case KindScene:
		return u.Scene.Span
	case KindChunk:
		return u.Chunk.Span
	case KindGroup:
		return u.Group.Span
	}
	return Span{}
}

// GenPrompt returns the text prompt handed to the generation collaborator.
func (u Unit) GenPrompt() string {
	switch u.Kind {
	case KindScene:
		return u.Scene.Prompt
	case KindChunk:
		return u.Chunk.Prompt
	case KindGroup:
		return u.Group.Prompt
	}
	return ""
}

// SetPrompt stores the generation prompt on the underlying variant.
func (u Unit) SetPrompt(p string) {
	switch u.Kind {
	case KindScene:
		u.Scene.Prompt = p
	case KindChunk:
		u.Chunk.Prompt = p
	case KindGroup:
		u.Group.Prompt = p
	}
}

// DialogueText returns the dialogue attributed to this unit. For a combined
// group that is the members' dialogue in order.
func (u Unit) DialogueText() string {
	switch u.Kind {
	case KindScene:
		return u.Scene.Dialogue
	case KindChunk:
		return u.Chunk.Dialogue
	case KindGroup:
		parts := make([]string, 0, len(u.Group.Members))
		for _, m := range u.Group.Members {
			if m.Dialogue != "" {
				parts = append(parts, m.Dialogue)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// Validate checks the variant is well-formed: exactly one payload matching
// the kind, with a valid span.
func (u Unit) Validate() error {
	// Payload mismatch is reported by kind, not id: a malformed unit may
	// have no payload to take an id from.
	switch u.Kind {
	case KindScene:
		if u.Scene == nil || u.Chunk != nil || u.Group != nil {
			return fmt.Errorf("unit kind %q with wrong payload", u.Kind)
		}
		if !u.Scene.Span.Valid() {
			return fmt.Errorf("unit %q: invalid span [%f, %f)", u.Scene.ID, u.Scene.Start, u.Scene.End)
		}
	case KindChunk:
		if u.Chunk == nil || u.Scene != nil || u.Group != nil {
			return fmt.Errorf("unit kind %q with wrong payload", u.Kind)
		}
		if !u.Chunk.Span.Valid() {
			return fmt.Errorf("unit %q: invalid span [%f, %f)", u.Chunk.ID, u.Chunk.Start, u.Chunk.End)
		}
		if u.Chunk.ChunkCount < u.Chunk.ChunkIndex {
			return fmt.Errorf("unit %q: chunk count %d below index %d", u.Chunk.ID, u.Chunk.ChunkCount, u.Chunk.ChunkIndex)
		}
	case KindGroup:
		if u.Group == nil || u.Scene != nil || u.Chunk != nil {
			return fmt.Errorf("unit kind %q with wrong payload", u.Kind)
		}
		if len(u.Group.Members) < 2 {
			return fmt.Errorf("unit %q: combined group with %d members", u.Group.ID, len(u.Group.Members))
		}
	default:
		return fmt.Errorf("unit has unknown kind %q", u.Kind)
	}
	return nil
}

// MarshalJSON keeps the zero Unit encoding as an explicit null so a manifest
// never hides a malformed entry.
func (u Unit) MarshalJSON() ([]byte, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	type alias Unit
	return json.Marshal(alias(u))
}
