package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"sceneforge/internal/timeline"
	"sceneforge/log"
	"sceneforge/pkg/errors"
)

// StitchWithCrossfade joins the planned chunk clips into one continuous file.
// Video uses xfade and audio acrossfade; the filter graph chains the inputs
// pairwise, each join fading at the offset the plan computed.
func (f *FFmpeg) StitchWithCrossfade(ctx context.Context, steps []timeline.StitchStep, outPath string) error {
	if len(steps) == 0 {
		return errors.New(errors.CodeStitchFailed, "no clips to stitch")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(errors.CodeStitchFailed, "create output dir", err)
	}

	if len(steps) == 1 {
		return copyFile(steps[0].ClipPath, outPath)
	}

	args := []string{"-y"}
	for _, s := range steps {
		args = append(args, "-i", s.ClipPath)
	}

	var graph strings.Builder
	prevV, prevA := "[0:v]", "[0:a]"
	for i := 1; i < len(steps); i++ {
		outV := fmt.Sprintf("[v%d]", i)
		outA := fmt.Sprintf("[a%d]", i)
		if i == len(steps)-1 {
			outV, outA = "[vout]", "[aout]"
		}
		fmt.Fprintf(&graph, "%s[%d:v]xfade=transition=fade:duration=%.3f:offset=%.3f%s;",
			prevV, i, steps[i].FadeDur, steps[i].FadeOffset, outV)
		fmt.Fprintf(&graph, "%s[%d:a]acrossfade=d=%.3f%s;",
			prevA, i, steps[i].FadeDur, outA)
		prevV, prevA = outV, outA
	}

	args = append(args,
		"-filter_complex", strings.TrimSuffix(graph.String(), ";"),
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "18",
		"-c:a", "aac",
		outPath,
	)

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errors.WrapWithDetail(errors.CodeStitchFailed, "crossfade stitch failed",
			tailOf(string(output)), err)
	}

	log.GetLogger().Info("chunks stitched", zap.Int("clips", len(steps)), zap.String("out", outPath))
	return nil
}

// ConcatClips joins finalized per-scene files into the assembled output. The
// concat demuxer avoids a re-encode; when the inputs disagree on codec
// parameters it fails, and the concat filter re-encode path takes over.
func (f *FFmpeg) ConcatClips(ctx context.Context, clipPaths []string, outPath string) error {
	if len(clipPaths) == 0 {
		return errors.New(errors.CodeConcatFailed, "no clips to concatenate")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(errors.CodeConcatFailed, "create output dir", err)
	}
	if len(clipPaths) == 1 {
		return copyFile(clipPaths[0], outPath)
	}

	if err := f.concatDemuxer(ctx, clipPaths, outPath); err == nil {
		return nil
	} else {
		log.GetLogger().Warn("concat demuxer failed, falling back to filter re-encode", zap.Error(err))
	}
	return f.concatFilter(ctx, clipPaths, outPath)
}

func (f *FFmpeg) concatDemuxer(ctx context.Context, clipPaths []string, outPath string) error {
	listFile, err := os.CreateTemp(filepath.Dir(outPath), "concat-*.txt")
	if err != nil {
		return errors.Wrap(errors.CodeConcatFailed, "create concat list", err)
	}
	defer os.Remove(listFile.Name())

	for _, p := range clipPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		fmt.Fprintf(listFile, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	listFile.Close()

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile.Name(),
		"-c", "copy",
		outPath,
	}
	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errors.WrapWithDetail(errors.CodeConcatFailed, "concat demuxer failed",
			tailOf(string(output)), err)
	}
	return nil
}

func (f *FFmpeg) concatFilter(ctx context.Context, clipPaths []string, outPath string) error {
	args := []string{"-y"}
	for _, p := range clipPaths {
		args = append(args, "-i", p)
	}

	var graph strings.Builder
	for i := range clipPaths {
		fmt.Fprintf(&graph, "[%d:v][%d:a]", i, i)
	}
	fmt.Fprintf(&graph, "concat=n=%d:v=1:a=1[vout][aout]", len(clipPaths))

	args = append(args,
		"-filter_complex", graph.String(),
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "18",
		"-c:a", "aac",
		outPath,
	)

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errors.WrapWithDetail(errors.CodeConcatFailed, "concat filter failed",
			tailOf(string(output)), err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(errors.CodeClipInvalid, "read clip", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return errors.Wrap(errors.CodeFileWriteError, "write clip", err)
	}
	return nil
}
