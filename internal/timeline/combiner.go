package timeline

import (
	"fmt"
	"strings"

	"sceneforge/config"
)

// CombineUnits greedily packs consecutive short scenes into combined groups
// whose summed member duration stays at or under cfg.CapacityCap. Packing is
// order-preserving: a scene only ever joins the group currently being built,
// never an earlier one. Chunk units and scenes already longer than the cap
// pass through untouched and close the open group. A group that ends up with
// a single member is unwrapped back to the bare scene so the output never
// contains degenerate one-member groups.
//
// Group IDs are assigned sequentially in output order.
func CombineUnits(units []Unit, cfg config.CombineConfig) []Unit {
	out := make([]Unit, 0, len(units))
	var pending []Scene
	groupSeq := 0

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if len(pending) == 1 {
			solo := pending[0]
			out = append(out, SceneUnit(&solo))
		} else {
			groupSeq++
			g := newGroup(groupSeq, pending)
			out = append(out, GroupUnit(&g))
		}
		pending = nil
	}

	for _, u := range units {
		if u.Kind != KindScene || u.Duration() > cfg.CapacityCap {
			flush()
			out = append(out, u)
			continue
		}
		sc := *u.Scene
		if pendingDuration(pending)+sc.Span.Duration() > cfg.CapacityCap {
			flush()
		}
		pending = append(pending, sc)
	}
	flush()
	return out
}

func pendingDuration(scenes []Scene) float64 {
	var sum float64
	for _, s := range scenes {
		sum += s.Span.Duration()
	}
	return sum
}

func newGroup(seq int, members []Scene) CombinedGroup {
	g := CombinedGroup{
		ID:      fmt.Sprintf("combined_%02d", seq),
		Members: append([]Scene(nil), members...),
		Span: Span{
			Start: members[0].Span.Start,
			End:   members[len(members)-1].Span.End,
		},
	}
	for _, m := range members {
		g.MemberIDs = append(g.MemberIDs, m.ID)
		g.DurationSec += m.Span.Duration()
	}
	g.StartTime = FormatTimestamp(g.Span.Start)
	g.EndTime = FormatTimestamp(g.Span.End)
	g.Prompt = groupPrompt(members)
	return g
}

// groupPrompt merges the member prompts into one multi-beat prompt. Each beat
// is prefixed with its running time offset inside the group so the generator
// paces the beats across the clip instead of blending them.
func groupPrompt(members []Scene) string {
	var b strings.Builder
	var offset float64
	for _, m := range members {
		prompt := strings.TrimSpace(m.Prompt)
		if prompt == "" {
			prompt = strings.TrimSpace(m.Description)
		}
		if prompt == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "[%.1fs] %s", offset, prompt)
		offset += m.Span.Duration()
	}
	return b.String()
}
