package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hookq/hookq/internal/http/handler"
	"github.com/hookq/hookq/internal/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, jobHandler *handler.JobHandler, healthHandler *handler.HealthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.POST("/jobs", jobHandler.Submit)
	r.GET("/jobs/:id", jobHandler.GetByID)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	health := r.Group("/health")
	health.GET("/live", healthHandler.Live)
	health.GET("/ready", healthHandler.Ready)

	return r
}
