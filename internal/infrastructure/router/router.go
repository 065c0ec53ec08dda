package router

import (
	"net/http"
	"time"

	"kayako-stat-service/internal/interface/handler"
	"kayako-stat-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the API routes. metricsHandler is mounted at /metrics.
func NewRouter(h *handler.StatHandler, metricsHandler http.Handler, log logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "Healthy")
	})
	r.GET("/metrics", gin.WrapH(metricsHandler))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/imports", h.Upload)
		v1.GET("/imports", h.ListImports)
		v1.GET("/filters", h.Filters)
		v1.GET("/report", h.Report)
	}
	return r
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String())
	}
}
