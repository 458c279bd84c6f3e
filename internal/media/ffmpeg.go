// Package media wraps the ffmpeg and ffprobe binaries. Every call shells out
// with a context so a cancelled run kills the child process.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sceneforge/internal/storage"
	"sceneforge/internal/timeline"
	"sceneforge/log"
	"sceneforge/pkg/errors"
)

// FFmpeg implements the ffmpeg-backed collaborators: scene boundary
// detection, duration probing, frame extraction, segment cuts, crossfade
// stitching and final concatenation.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

func NewFFmpeg() *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  storage.FfmpegPath,
		ffprobePath: storage.FfprobePath,
	}
}

var ptsTimeRe = regexp.MustCompile(`pts_time:([0-9.]+)`)

// DetectBoundaries runs the scene filter and parses boundary timestamps from
// showinfo output. 0.0 and the total duration are appended so the result is
// directly consumable by the segmenter.
func (f *FFmpeg) DetectBoundaries(ctx context.Context, videoPath string, threshold float64) ([]float64, error) {
	total, err := f.ProbeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("select='gt(scene,%g)',showinfo", threshold),
		"-f", "null",
		"-",
	}
	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, errors.WrapWithDetail(errors.CodeBoundaryInvalid, "scene detection failed",
			tailOf(string(output)), err)
	}

	boundaries := []float64{0}
	for _, m := range ptsTimeRe.FindAllStringSubmatch(string(output), -1) {
		t, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		boundaries = append(boundaries, t)
	}
	boundaries = append(boundaries, total)

	log.GetLogger().Info("scene boundaries detected",
		zap.String("video", videoPath),
		zap.Int("count", len(boundaries)),
		zap.Float64("threshold", threshold))
	return boundaries, nil
}

// ProbeDuration returns the container duration in seconds.
func (f *FFmpeg) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return 0, errors.Wrap(errors.CodeVideoNotFound, "video file not found", err)
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	}
	cmd := exec.CommandContext(ctx, f.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, errors.Wrap(errors.CodeVideoCorrupt, "ffprobe failed", err)
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil || dur <= 0 {
		return 0, errors.New(errors.CodeVideoCorrupt, "video reports no usable duration")
	}
	return dur, nil
}

// ExtractFrames samples count stills evenly inside the window. Frame files
// are named frame_NN.jpg under outDir.
func (f *FFmpeg) ExtractFrames(ctx context.Context, videoPath string, window timeline.Span, count int, outDir string) ([]string, error) {
	if count < 1 {
		count = 1
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.CodeFrameExtract, "create frame dir", err)
	}

	var paths []string
	for i := 0; i < count; i++ {
		// Sample at (i+1)/(count+1) of the window so a single frame lands
		// in the middle instead of on the first frame.
		at := window.Start + window.Duration()*float64(i+1)/float64(count+1)
		outPath := filepath.Join(outDir, fmt.Sprintf("frame_%02d.jpg", i+1))

		args := []string{
			"-y",
			"-ss", fmt.Sprintf("%.3f", at),
			"-i", videoPath,
			"-frames:v", "1",
			"-q:v", "2",
			outPath,
		}
		cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
		if output, err := cmd.CombinedOutput(); err != nil {
			return nil, errors.WrapWithDetail(errors.CodeFrameExtract, "frame extraction failed",
				tailOf(string(output)), err)
		}
		paths = append(paths, outPath)
	}
	return paths, nil
}

// CutSegment re-encodes the [start, end) window of srcPath into outPath.
// Re-encoding keeps cut points frame-accurate; stream copy would snap to the
// nearest keyframe and break the duration round-trip.
func (f *FFmpeg) CutSegment(ctx context.Context, srcPath string, start, end float64, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(errors.CodeSplitFailed, "create output dir", err)
	}

	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", srcPath,
		"-t", fmt.Sprintf("%.3f", end-start),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		outPath,
	}
	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errors.WrapWithDetail(errors.CodeSplitFailed, "segment cut failed",
			tailOf(string(output)), err)
	}
	return nil
}

func tailOf(s string) string {
	const max = 500
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
