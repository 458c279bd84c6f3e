package router

import (
	"sceneforge/internal/handler"

	"github.com/gin-gonic/gin"
)

func SetupRouter(r *gin.Engine, hdl *handler.Handler) {
	api := r.Group("/api")
	{
		api.POST("/pipeline/task", hdl.StartPipelineTask)
		api.POST("/pipeline/analyze", hdl.AnalyzeVideo)
		api.GET("/pipeline/task", hdl.GetPipelineTask)
		api.GET("/pipeline/history", hdl.GetTaskHistory)
		api.DELETE("/pipeline/task/:taskId", hdl.DeleteTask)
		api.POST("/pipeline/task/:taskId/retry", hdl.RetryTask)
		api.GET("/pipeline/progress", hdl.TaskProgressWS)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
		api.GET("/config", hdl.GetConfig)
		api.POST("/config", hdl.UpdateConfig)
	}
}
