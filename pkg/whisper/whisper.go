// Package whisper implements the transcription collaborator using an
// OpenAI-compatible audio endpoint. Audio for the requested window is cut
// out with ffmpeg first so the returned offsets are scene-relative already.
package whisper

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"sceneforge/internal/storage"
	"sceneforge/internal/timeline"
	"sceneforge/log"
	"sceneforge/pkg/errors"
)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseUrl, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}
	cfg.HTTPClient = &http.Client{}
	if model == "" {
		model = openai.Whisper1
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// TranscribeWindow extracts the window's audio as mono 16k mp3 and sends it
// for transcription with segment timestamps. Offsets in the result are
// relative to the window start because the audio itself starts there.
func (c *Client) TranscribeWindow(ctx context.Context, videoPath string, window timeline.Span) ([]timeline.DialogueSegment, error) {
	audioPath, err := extractAudio(ctx, videoPath, window)
	if err != nil {
		return nil, err
	}
	defer os.Remove(audioPath)

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
		},
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeTranscriptBad, "transcription call failed", err)
	}

	segments := make([]timeline.DialogueSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, timeline.DialogueSegment{
			Text:  s.Text,
			Start: s.Start,
			End:   s.End,
		})
	}

	log.GetLogger().Debug("window transcribed",
		zap.Float64("start", window.Start),
		zap.Float64("end", window.End),
		zap.Int("segments", len(segments)))
	return segments, nil
}

func extractAudio(ctx context.Context, videoPath string, window timeline.Span) (string, error) {
	tmp, err := os.CreateTemp("", "audio-*.mp3")
	if err != nil {
		return "", errors.Wrap(errors.CodeTranscriptBad, "create temp audio file", err)
	}
	tmp.Close()
	outPath := tmp.Name()

	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", window.Start),
		"-i", videoPath,
		"-t", fmt.Sprintf("%.3f", window.Duration()),
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-b:a", "192k",
		filepath.Clean(outPath),
	}
	cmd := exec.CommandContext(ctx, storage.FfmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outPath)
		return "", errors.WrapWithDetail(errors.CodeTranscriptBad, "audio extraction failed",
			string(output), err)
	}
	return outPath, nil
}
