package service

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"sceneforge/config"
	"sceneforge/internal/storage"
	"sceneforge/log"
	apperrors "sceneforge/pkg/errors"
)

// ResolveSource turns the request source into a local video path. Local
// files pass through untouched; URLs are fetched with yt-dlp into the task
// directory.
func (s *Service) ResolveSource(ctx context.Context, taskID, source string) (string, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		if _, err := os.Stat(source); err != nil {
			return "", apperrors.Wrap(apperrors.CodeVideoNotFound, "video file not found", err)
		}
		return source, nil
	}

	if err := os.MkdirAll(taskDir(taskID), 0o755); err != nil {
		return "", apperrors.Wrap(apperrors.CodeFileWriteError, "create task dir", err)
	}

	outPath := filepath.Join(taskDir(taskID), "source.mp4")
	args := []string{
		"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		"--merge-output-format", "mp4",
		"-o", outPath,
		source,
	}
	if config.Conf.App.Proxy != "" {
		args = append([]string{"--proxy", config.Conf.App.Proxy}, args...)
	}

	cmd := exec.CommandContext(ctx, storage.YtdlpPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.GetLogger().Error("source download failed",
			zap.String("task", taskID),
			zap.String("source", source),
			zap.String("output", string(output)))
		return "", apperrors.Wrap(apperrors.CodeVideoDownload, "failed to download source video", err)
	}

	log.GetLogger().Info("source downloaded", zap.String("task", taskID), zap.String("path", outPath))
	return outPath, nil
}
