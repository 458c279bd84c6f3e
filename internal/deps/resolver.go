// Package deps resolves the external binaries the pipeline shells out to and
// reports what is missing before any task runs.
package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"sceneforge/internal/storage"
)

type DependencyTier string

const (
	DependencyTierMust     DependencyTier = "must"
	DependencyTierShould   DependencyTier = "should"
	DependencyTierOptional DependencyTier = "optional"
)

type DependencyStatus string

const (
	DependencyStatusOK      DependencyStatus = "ok"
	DependencyStatusMissing DependencyStatus = "missing"
	DependencyStatusError   DependencyStatus = "error"
)

type DependencySource string

const (
	DependencySourceConfigured DependencySource = "configured"
	DependencySourceLookPath   DependencySource = "lookpath"
)

type DependencySpec struct {
	ID             string
	Name           string
	Command        string
	Tier           DependencyTier
	ConfiguredPath string
	Hint           string
}

type DependencyState struct {
	DependencySpec
	ResolvedPath string
	Status       DependencyStatus
	Source       DependencySource
	Error        string
}

// PathResolver locates a binary, trying the configured path first and then
// PATH lookup. The function fields exist so tests can stub the filesystem.
type PathResolver struct {
	LookPath func(file string) (string, error)
	AbsPath  func(path string) (string, error)
	Stat     func(name string) (os.FileInfo, error)
}

func NewPathResolver() PathResolver {
	return PathResolver{
		LookPath: exec.LookPath,
		AbsPath:  filepath.Abs,
		Stat:     os.Stat,
	}
}

func (r PathResolver) Resolve(spec DependencySpec) DependencyState {
	state := DependencyState{DependencySpec: spec}
	configured := strings.TrimSpace(spec.ConfiguredPath)

	// A bare command name is not "configured", it still goes through PATH.
	if configured != "" && configured != spec.Command {
		state.Source = DependencySourceConfigured
		resolvedPath, err := r.resolveConfiguredPath(configured)
		if err == nil {
			state.Status = DependencyStatusOK
			state.ResolvedPath = resolvedPath
			return state
		}

		if absPath, absErr := r.AbsPath(configured); absErr == nil {
			state.ResolvedPath = absPath
		} else {
			state.ResolvedPath = configured
		}
		state.Error = err.Error()
		if isMissingPathError(err) {
			state.Status = DependencyStatusMissing
		} else {
			state.Status = DependencyStatusError
		}
		return state
	}

	state.Source = DependencySourceLookPath
	resolvedPath, err := r.LookPath(spec.Command)
	if err == nil {
		state.Status = DependencyStatusOK
		state.ResolvedPath = resolvedPath
		return state
	}

	state.Error = err.Error()
	if isMissingPathError(err) {
		state.Status = DependencyStatusMissing
		return state
	}
	state.Status = DependencyStatusError
	return state
}

func (r PathResolver) resolveConfiguredPath(configuredPath string) (string, error) {
	if resolvedPath, err := r.LookPath(configuredPath); err == nil {
		return resolvedPath, nil
	}

	absPath, err := r.AbsPath(configuredPath)
	if err != nil {
		return "", err
	}
	if _, err = r.Stat(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

func ResolveDependencyStates(specs []DependencySpec, resolver PathResolver) []DependencyState {
	resolved := make([]DependencyState, 0, len(specs))
	for _, spec := range specs {
		resolved = append(resolved, resolver.Resolve(spec))
	}
	return resolved
}

// BuildDependencyInventory lists the binaries the pipeline needs. ffmpeg and
// ffprobe carry cutting, probing, frame extraction and stitching; yt-dlp is
// only exercised by URL sources.
func BuildDependencyInventory() []DependencySpec {
	return []DependencySpec{
		{
			ID:             "ffmpeg",
			Name:           "ffmpeg",
			Command:        "ffmpeg",
			Tier:           DependencyTierMust,
			ConfiguredPath: storage.FfmpegPath,
			Hint:           "Required for scene detection, cutting, frame extraction and stitching.",
		},
		{
			ID:             "ffprobe",
			Name:           "ffprobe",
			Command:        "ffprobe",
			Tier:           DependencyTierMust,
			ConfiguredPath: storage.FfprobePath,
			Hint:           "Required for media duration probing.",
		},
		{
			ID:             "yt-dlp",
			Name:           "yt-dlp",
			Command:        "yt-dlp",
			Tier:           DependencyTierShould,
			ConfiguredPath: storage.YtdlpPath,
			Hint:           "Required only when the task source is a URL.",
		},
	}
}

// CheckDependency verifies every must-tier binary resolves. Resolved paths are
// written back to storage so later exec calls use the same binary.
func CheckDependency() error {
	states := ResolveDependencyStates(BuildDependencyInventory(), NewPathResolver())

	var missing []string
	for _, state := range states {
		if state.Status == DependencyStatusOK {
			applyResolvedPath(state.ID, state.ResolvedPath)
			continue
		}
		if state.Tier == DependencyTierMust {
			missing = append(missing, state.Name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required dependencies: %s\n%s",
			strings.Join(missing, ", "), FormatDependencyReport(states))
	}
	return nil
}

func applyResolvedPath(id, path string) {
	if path == "" {
		return
	}
	switch id {
	case "ffmpeg":
		storage.FfmpegPath = path
	case "ffprobe":
		storage.FfprobePath = path
	case "yt-dlp":
		storage.YtdlpPath = path
	}
}

func FormatDependencyReport(states []DependencyState) string {
	if len(states) == 0 {
		return "No dependencies to diagnose."
	}

	var builder strings.Builder
	builder.WriteString("Dependency status")

	for _, state := range states {
		resolvedPath := strings.TrimSpace(state.ResolvedPath)
		if resolvedPath == "" {
			resolvedPath = "unknown"
		}

		source := strings.TrimSpace(string(state.Source))
		if source == "" {
			source = "n/a"
		}

		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("- %s [%s]: %s | path=%s | source=%s",
			state.Name, strings.ToUpper(string(state.Tier)), state.Status, resolvedPath, source))
		if state.Error != "" {
			builder.WriteString("\n  error: ")
			builder.WriteString(state.Error)
		}
		if state.Hint != "" {
			builder.WriteString("\n  hint: ")
			builder.WriteString(state.Hint)
		}
	}

	return builder.String()
}

func isMissingPathError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		return true
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		if errors.Is(pathErr.Err, os.ErrNotExist) {
			return true
		}
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		if errors.Is(execErr.Err, exec.ErrNotFound) {
			return true
		}
	}

	message := strings.ToLower(err.Error())
	return strings.Contains(message, "not found") || strings.Contains(message, "cannot find")
}
