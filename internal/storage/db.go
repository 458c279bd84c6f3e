package storage

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sceneforge/internal/types"
	"sceneforge/log"
)

var DB *gorm.DB

// External binary paths, resolved at startup; the defaults look them up on
// PATH.
var (
	FfmpegPath  = "ffmpeg"
	FfprobePath = "ffprobe"
	YtdlpPath   = "yt-dlp"
)

// InitDB opens the sqlite database at dbPath and migrates the schema.
func InitDB(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.GetLogger().Error("failed to create database directory", zap.String("dir", dir), zap.Error(err))
		return err
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.GetLogger().Error("failed to connect database", zap.Error(err))
		return err
	}

	if err := db.AutoMigrate(&types.PipelineTask{}); err != nil {
		log.GetLogger().Error("failed to migrate database", zap.Error(err))
		return err
	}

	DB = db
	log.GetLogger().Info("database initialized", zap.String("path", dbPath))
	return nil
}
