// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 配置HTTP路由
func SetupRouter(handler *Handler, logger *zap.SugaredLogger, debugMode bool) *gin.Engine {
	if !debugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Errorw("panic recovered", "error", recovered, "path", c.Request.URL.Path)
		NewResponseHelper().InternalError(c, "内部エラーが発生しました")
		c.Abort()
	}))
	r.Use(requestIDMiddleware())
	r.Use(corsMiddleware())
	r.Use(requestLogMiddleware(logger))

	r.GET("/health", handler.Health)

	// WebSocket 事件流
	if handler.Hub != nil {
		r.GET("/ws", handler.Hub.ServeWS)
	}

	api := r.Group("/api")
	{
		api.POST("/evaluate", handler.EvaluateTurn)
		api.POST("/commit", handler.CommitTurn)
		api.POST("/reset", handler.ResetSession)
		api.POST("/sanitize", handler.SanitizeAction)

		api.GET("/facts", handler.GetFacts)
		api.PUT("/scene", handler.UpdateScene)

		injectionGroup := api.Group("/injection")
		{
			injectionGroup.POST("", handler.BuildInjection)
			injectionGroup.GET("/last", handler.GetLastInjection)
		}

		api.GET("/sanitizer/stats", handler.GetSanitizerStats)
		api.GET("/llm/status", handler.GetLLMStatus)
	}

	return r
}
