package log

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

const logFileName = "sceneforge.log"

// InitLogger sets up the global logger: JSON at debug level into the log file,
// human-readable console output at info level.
func InitLogger() {
	logDir := ResolveLogDir()
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		panic("failed to create log directory: " + err.Error())
	}

	logFilePath := filepath.Join(logDir, logFileName)
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		panic("failed to open log file: " + err.Error())
	}

	fileSyncer := zapcore.AddSync(file)
	consoleSyncer := zapcore.AddSync(os.Stdout)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileSyncer, zap.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), consoleSyncer, zap.InfoLevel),
	)

	Logger = zap.New(core, zap.AddCaller())
}

// ResolveLogDir returns the directory holding the log file. SCENEFORGE_LOG_DIR
// overrides the default of the current working directory.
func ResolveLogDir() string {
	if dir := os.Getenv("SCENEFORGE_LOG_DIR"); dir != "" {
		return dir
	}
	return "."
}

func ResolveLogFilePath() string {
	return filepath.Join(ResolveLogDir(), logFileName)
}

func GetLogger() *zap.Logger {
	if Logger == nil {
		InitLogger()
	}
	return Logger
}
