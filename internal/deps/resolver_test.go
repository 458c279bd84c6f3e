package deps

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func notFoundErr(command string) error {
	return &exec.Error{Name: command, Err: exec.ErrNotFound}
}

func TestPathResolverResolvePrefersConfiguredPath(t *testing.T) {
	binPath := filepath.Join(t.TempDir(), "ffmpeg-custom")
	if err := os.WriteFile(binPath, []byte("ffmpeg"), 0o755); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	resolver := NewPathResolver()
	resolver.LookPath = func(file string) (string, error) {
		return "", notFoundErr(file)
	}

	state := resolver.Resolve(DependencySpec{
		Name:           "ffmpeg",
		Command:        "ffmpeg",
		ConfiguredPath: binPath,
	})

	if state.Status != DependencyStatusOK {
		t.Fatalf("state.Status = %q, want %q", state.Status, DependencyStatusOK)
	}
	if state.Source != DependencySourceConfigured {
		t.Fatalf("state.Source = %q, want %q", state.Source, DependencySourceConfigured)
	}
	if state.ResolvedPath != binPath {
		t.Fatalf("state.ResolvedPath = %q, want %q", state.ResolvedPath, binPath)
	}
}

func TestPathResolverResolveBareCommandUsesLookPath(t *testing.T) {
	resolver := NewPathResolver()
	resolver.LookPath = func(file string) (string, error) {
		if file != "ffmpeg" {
			t.Fatalf("LookPath() received %q, want %q", file, "ffmpeg")
		}
		return "/mock/bin/ffmpeg", nil
	}

	// ConfiguredPath equal to the command name is treated as unconfigured.
	state := resolver.Resolve(DependencySpec{
		Name:           "ffmpeg",
		Command:        "ffmpeg",
		ConfiguredPath: "ffmpeg",
	})

	if state.Status != DependencyStatusOK {
		t.Fatalf("state.Status = %q, want %q", state.Status, DependencyStatusOK)
	}
	if state.Source != DependencySourceLookPath {
		t.Fatalf("state.Source = %q, want %q", state.Source, DependencySourceLookPath)
	}
	if state.ResolvedPath != "/mock/bin/ffmpeg" {
		t.Fatalf("state.ResolvedPath = %q, want %q", state.ResolvedPath, "/mock/bin/ffmpeg")
	}
}

func TestPathResolverResolveReportsMissingWhenNotFound(t *testing.T) {
	resolver := NewPathResolver()
	resolver.LookPath = func(file string) (string, error) {
		return "", notFoundErr(file)
	}

	state := resolver.Resolve(DependencySpec{Name: "yt-dlp", Command: "yt-dlp"})

	if state.Status != DependencyStatusMissing {
		t.Fatalf("state.Status = %q, want %q", state.Status, DependencyStatusMissing)
	}
	if state.ResolvedPath != "" {
		t.Fatalf("state.ResolvedPath = %q, want empty", state.ResolvedPath)
	}
	if state.Error == "" {
		t.Fatalf("state.Error should not be empty")
	}
}

func TestPathResolverResolveConfiguredStatFailureReturnsError(t *testing.T) {
	resolver := NewPathResolver()
	resolver.LookPath = func(file string) (string, error) {
		return "", notFoundErr(file)
	}
	resolver.AbsPath = func(path string) (string, error) {
		return "/mock/configured/path", nil
	}
	resolver.Stat = func(name string) (os.FileInfo, error) {
		if name != "/mock/configured/path" {
			t.Fatalf("Stat() received %q, want %q", name, "/mock/configured/path")
		}
		return nil, errors.New("permission denied")
	}

	state := resolver.Resolve(DependencySpec{
		Name:           "ffprobe",
		Command:        "ffprobe",
		ConfiguredPath: "some/custom/ffprobe",
	})

	if state.Status != DependencyStatusError {
		t.Fatalf("state.Status = %q, want %q", state.Status, DependencyStatusError)
	}
	if !strings.Contains(state.Error, "permission denied") {
		t.Fatalf("state.Error = %q, want to contain %q", state.Error, "permission denied")
	}
}

func TestBuildDependencyInventoryTiers(t *testing.T) {
	specs := BuildDependencyInventory()

	tiers := map[string]DependencyTier{}
	for _, spec := range specs {
		tiers[spec.ID] = spec.Tier
	}

	if tiers["ffmpeg"] != DependencyTierMust {
		t.Errorf("ffmpeg tier = %q, want %q", tiers["ffmpeg"], DependencyTierMust)
	}
	if tiers["ffprobe"] != DependencyTierMust {
		t.Errorf("ffprobe tier = %q, want %q", tiers["ffprobe"], DependencyTierMust)
	}
	if tiers["yt-dlp"] != DependencyTierShould {
		t.Errorf("yt-dlp tier = %q, want %q", tiers["yt-dlp"], DependencyTierShould)
	}
}

func TestFormatDependencyReportIncludesErrors(t *testing.T) {
	report := FormatDependencyReport([]DependencyState{
		{
			DependencySpec: DependencySpec{Name: "ffmpeg", Tier: DependencyTierMust, Hint: "install it"},
			Status:         DependencyStatusMissing,
			Source:         DependencySourceLookPath,
			Error:          "executable file not found",
		},
	})

	for _, want := range []string{"ffmpeg", "MUST", "missing", "executable file not found", "install it"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
