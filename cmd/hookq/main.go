package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hookq/hookq/config"
	"github.com/hookq/hookq/internal/health"
	httptransport "github.com/hookq/hookq/internal/http"
	"github.com/hookq/hookq/internal/http/handler"
	"github.com/hookq/hookq/internal/infrastructure/postgres"
	ctxlog "github.com/hookq/hookq/internal/log"
	"github.com/hookq/hookq/internal/metrics"
	"github.com/hookq/hookq/internal/ratelimit"
	"github.com/hookq/hookq/internal/scheduler"
	"github.com/hookq/hookq/internal/usecase"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	jobRepo := postgres.NewJobRepository(pool)
	gate := ratelimit.NewGate(cfg.RateLimitPerHost)

	jobUsecase := usecase.NewJobUsecase(jobRepo)
	jobHandler := handler.NewJobHandler(jobUsecase, logger)
	healthHandler := handler.NewHealthHandler(checker)

	executor := scheduler.NewExecutor(logger)
	for i := 0; i < cfg.WorkerCount; i++ {
		worker := scheduler.NewWorker(jobRepo, gate, executor, logger)
		go worker.Start(ctx)
	}

	monitor := scheduler.NewMonitor(jobRepo, logger)
	go monitor.Start(ctx)

	srv := http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: httptransport.NewRouter(logger, jobHandler, healthHandler),
	}

	go func() {
		logger.Info("server started", "port", cfg.Port, "workers", cfg.WorkerCount)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
