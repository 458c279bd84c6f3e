package main

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"sceneforge/config"
	"sceneforge/internal/deps"
	"sceneforge/internal/server"
	"sceneforge/internal/storage"
	"sceneforge/log"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	if !config.LoadConfig() {
		return
	}
	if err := config.CheckConfig(); err != nil {
		log.GetLogger().Error("invalid configuration", zap.Error(err))
		return
	}

	tasksDir := config.Conf.App.TasksDir
	if tasksDir == "" {
		tasksDir = "./tasks"
	}
	if err := storage.InitDB(filepath.Join(tasksDir, "sceneforge.db")); err != nil {
		log.GetLogger().Error("database initialization failed", zap.Error(err))
		return
	}

	// Zombie cleanup: tasks left running by a previous process are failed.
	if count, err := storage.MarkStaleTasks(); err != nil {
		log.GetLogger().Warn("failed to mark stale tasks", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("marked stale tasks as failed", zap.Int64("count", count))
	}

	if err := deps.CheckDependency(); err != nil {
		log.GetLogger().Error("dependency check failed", zap.Error(err))
		return
	}

	if err := server.StartBackend(); err != nil {
		log.GetLogger().Error("backend failed", zap.Error(err))
		os.Exit(1)
	}
}
