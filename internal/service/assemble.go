package service

import (
	"context"
	"math"
	"os"
	"sort"

	"go.uber.org/zap"

	"sceneforge/config"
	"sceneforge/internal/timeline"
	"sceneforge/internal/types"
	"sceneforge/log"
	"sceneforge/pkg/util"
)

// AssembleOutputs is the inverse half: combined-group clips are cut back
// into per-scene files, chunk sequences are stitched with a crossfade, and
// the per-scene files are concatenated into the final output in scene order.
// A scene whose inputs failed generation is excluded without halting its
// siblings.
func (s *Service) AssembleOutputs(ctx context.Context, taskID string, summary *types.RunSummary) (string, error) {
	manifest, err := timeline.LoadManifest(manifestPath(taskID))
	if err != nil {
		return "", err
	}

	generated := make(map[string]string)
	for _, r := range summary.Results {
		if r.Status == types.UnitFailed || r.ClipPath == "" {
			continue
		}
		if !clipUsable(r.ClipPath) {
			log.GetLogger().Warn("generated clip missing or empty, excluding",
				zap.String("task", taskID),
				zap.String("unit", r.UnitID),
				zap.String("clip", r.ClipPath))
			continue
		}
		generated[r.UnitID] = r.ClipPath
	}

	s.reportProgress(taskID, 90, "assembling outputs")

	// Re-assembly rebuilds the per-scene records from scratch.
	summary.Scenes = nil

	sceneFiles := make(map[string]string)
	var sceneOrder []string
	noteScene := func(id, path string) {
		if _, seen := sceneFiles[id]; !seen {
			sceneOrder = append(sceneOrder, id)
		}
		sceneFiles[id] = path
	}
	failScene := func(id, reason string) {
		summary.Failed++
		summary.Results = append(summary.Results, types.UnitResult{
			UnitID:     id,
			Kind:       string(timeline.KindScene),
			Status:     types.UnitFailed,
			FailReason: reason,
		})
		log.GetLogger().Warn("scene excluded from final assembly",
			zap.String("task", taskID),
			zap.String("scene", id),
			zap.String("reason", reason))
	}

	chunksByScene := make(map[string][]timeline.Chunk)
	for _, u := range manifest.Units {
		switch u.Kind {
		case timeline.KindScene:
			path, ok := generated[u.Scene.ID]
			if !ok {
				failScene(u.Scene.ID, "clip was not generated")
				continue
			}
			noteScene(u.Scene.ID, path)

		case timeline.KindChunk:
			chunksByScene[u.Chunk.ParentSceneID] = append(chunksByScene[u.Chunk.ParentSceneID], *u.Chunk)

		case timeline.KindGroup:
			s.splitGroup(ctx, taskID, u.Group, generated, noteScene, failScene)
		}
	}

	for sceneID, chunks := range chunksByScene {
		clipPaths := make(map[string]string, len(chunks))
		for _, c := range chunks {
			if p, ok := generated[c.ID]; ok {
				clipPaths[c.ID] = p
			}
		}

		steps, err := timeline.StitchPlan(chunks, clipPaths, config.Conf.Chunk)
		if err != nil {
			failScene(sceneID, err.Error())
			continue
		}
		outPath := scenePath(taskID, sceneID)
		if err := s.Assembler.StitchWithCrossfade(ctx, steps, outPath); err != nil {
			failScene(sceneID, err.Error())
			continue
		}
		noteScene(sceneID, outPath)
		summary.Scenes = append(summary.Scenes, types.SceneResult{
			SceneID:  sceneID,
			Path:     outPath,
			Dialogue: stitchedDialogue(chunks),
		})
	}

	if len(sceneFiles) == 0 {
		return "", nil
	}

	ordered := make([]string, 0, len(sceneOrder))
	for _, id := range sceneOrder {
		ordered = append(ordered, sceneFiles[id])
	}
	util.NaturalSortPaths(ordered)

	if intro := config.Conf.Stitch.IntroPath; intro != "" {
		if clipUsable(intro) {
			ordered = append([]string{intro}, ordered...)
		} else {
			log.GetLogger().Warn("intro clip unusable, skipping", zap.String("path", intro))
		}
	}
	if outro := config.Conf.Stitch.OutroPath; outro != "" {
		if clipUsable(outro) {
			ordered = append(ordered, outro)
		} else {
			log.GetLogger().Warn("outro clip unusable, skipping", zap.String("path", outro))
		}
	}

	out := finalPath(taskID)
	if err := s.Assembler.ConcatClips(ctx, ordered, out); err != nil {
		return "", err
	}
	s.verifyAssembledDuration(ctx, taskID, ordered, out)
	return out, nil
}

// stitchedDialogue re-joins the per-chunk transcripts of a stitched scene.
// Adjacent chunks share an overlap second, so the boundary sentence is
// deduplicated in the join.
func stitchedDialogue(chunks []timeline.Chunk) string {
	ordered := make([]timeline.Chunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ChunkIndex < ordered[j].ChunkIndex })

	texts := make([]string, len(ordered))
	for i, c := range ordered {
		texts[i] = c.Dialogue
	}
	return timeline.JoinChunkDialogue(texts)
}

func clipUsable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// verifyAssembledDuration probes the inputs and the output and warns when
// they disagree by more than a second. Concat glitches tend to show up as
// duration drift rather than hard errors.
func (s *Service) verifyAssembledDuration(ctx context.Context, taskID string, inputs []string, outPath string) {
	var expected float64
	for _, p := range inputs {
		d, err := s.Detector.ProbeDuration(ctx, p)
		if err != nil {
			log.GetLogger().Warn("could not probe input clip, skipping duration check",
				zap.String("task", taskID), zap.String("clip", p), zap.Error(err))
			return
		}
		expected += d
	}

	actual, err := s.Detector.ProbeDuration(ctx, outPath)
	if err != nil {
		log.GetLogger().Warn("could not probe assembled output",
			zap.String("task", taskID), zap.Error(err))
		return
	}

	if diff := math.Abs(actual - expected); diff > 1.0 {
		log.GetLogger().Warn("assembled output duration differs from inputs",
			zap.String("task", taskID),
			zap.Float64("expected", expected),
			zap.Float64("actual", actual),
			zap.Float64("diff", diff))
	}
}

// splitGroup cuts a combined clip back into its member scenes. Each member
// cut fails independently so one bad cut does not lose the others.
func (s *Service) splitGroup(ctx context.Context, taskID string, g *timeline.CombinedGroup, generated map[string]string, noteScene func(id, path string), failScene func(id, reason string)) {
	clip, ok := generated[g.ID]
	if !ok {
		for _, id := range g.MemberIDs {
			failScene(id, "combined clip was not generated")
		}
		return
	}

	for _, seg := range timeline.SplitPlan(*g) {
		outPath := scenePath(taskID, seg.SceneID)
		if err := s.Assembler.CutSegment(ctx, clip, seg.Start, seg.End, outPath); err != nil {
			failScene(seg.SceneID, err.Error())
			continue
		}
		noteScene(seg.SceneID, outPath)
	}
}
