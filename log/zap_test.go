package log

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLogDir(t *testing.T) {
	t.Run("uses env override", func(t *testing.T) {
		expectedDir := filepath.Join("tmp", "logs")
		t.Setenv("SCENEFORGE_LOG_DIR", expectedDir)

		if logDir := ResolveLogDir(); logDir != expectedDir {
			t.Fatalf("ResolveLogDir() = %q, want %q", logDir, expectedDir)
		}
	})

	t.Run("falls back to current dir", func(t *testing.T) {
		t.Setenv("SCENEFORGE_LOG_DIR", "")

		if logDir := ResolveLogDir(); logDir != "." {
			t.Fatalf("ResolveLogDir() = %q, want %q", logDir, ".")
		}
	})
}

func TestInitLoggerCreatesLogDirectory(t *testing.T) {
	baseDir := t.TempDir()
	targetLogDir := filepath.Join(baseDir, "data", "logs")
	t.Setenv("SCENEFORGE_LOG_DIR", targetLogDir)

	InitLogger()
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil after InitLogger()")
	}
	defer GetLogger().Sync()

	GetLogger().Info("logger test line")
	_ = GetLogger().Sync()

	logFilePath := filepath.Join(targetLogDir, logFileName)
	if _, err := os.Stat(logFilePath); err != nil {
		t.Fatalf("expected log file %q to exist: %v", logFilePath, err)
	}
}
