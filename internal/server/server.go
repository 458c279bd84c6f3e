// Package server wires the HTTP surface and the background task executor.
package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sceneforge/config"
	"sceneforge/internal/handler"
	"sceneforge/internal/queue"
	"sceneforge/internal/router"
	"sceneforge/internal/service"
	"sceneforge/internal/taskrunner"
	"sceneforge/log"
)

// StartBackend builds the service, starts the background task executor and
// serves the API. With queue.redis_addr configured tasks go through the
// Redis-backed queue and survive restarts; otherwise an in-memory runner
// executes them. Blocks until the listener fails.
func StartBackend() error {
	svc := service.NewService()

	var submitter handler.TaskSubmitter
	if addr := config.Conf.Queue.RedisAddr; addr != "" {
		q := queue.NewQueue(config.Conf.Queue)
		defer q.Close()
		go func() {
			if err := queue.StartWorker(q, svc); err != nil {
				log.GetLogger().Error("queue worker stopped", zap.Error(err))
			}
		}()
		log.GetLogger().Info("using redis-backed task queue", zap.String("redis_addr", addr))
		submitter = queue.NewSubmitter(q)
	} else {
		runner := taskrunner.New(svc, taskrunner.DefaultConfig())
		defer runner.Close()
		submitter = runner
	}

	hdl := handler.NewHandler(svc, submitter)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	router.SetupRouter(engine, hdl)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("backend listening", zap.String("addr", addr))
	return engine.Run(addr)
}
