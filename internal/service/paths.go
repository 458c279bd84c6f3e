package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"sceneforge/config"
	"sceneforge/pkg/util"
)

func taskRoot() string {
	if dir := strings.TrimSpace(config.Conf.App.TasksDir); dir != "" {
		return dir
	}
	return "./tasks"
}

func taskDir(taskID string) string {
	return filepath.Join(taskRoot(), taskID)
}

func manifestPath(taskID string) string {
	return filepath.Join(taskDir(taskID), "manifest.json")
}

func framesDir(taskID, unitID string) string {
	return filepath.Join(taskDir(taskID), "frames", unitID)
}

func clipPath(taskID, unitID string) string {
	return filepath.Join(taskDir(taskID), "clips", unitID+".mp4")
}

func scenePath(taskID, sceneID string) string {
	return filepath.Join(taskDir(taskID), "scenes", sceneID+".mp4")
}

func finalPath(taskID string) string {
	return filepath.Join(taskDir(taskID), "output", "final.mp4")
}

func summaryPath(taskID string) string {
	return filepath.Join(taskDir(taskID), "output", "run_summary.json")
}

// NewTaskID derives a readable id from the source name plus a random suffix.
func NewTaskID(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if len(base) > 16 {
		base = base[:16]
	}
	return fmt.Sprintf("%s_%s", util.SanitizePathName(base), util.GenerateRandString(4))
}
