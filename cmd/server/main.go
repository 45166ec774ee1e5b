// Command server starts the recruitment HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpserver "github.com/fairyhunter13/agent-recruitment/internal/adapter/httpserver"
	"github.com/fairyhunter13/agent-recruitment/internal/adapter/observability"
	"github.com/fairyhunter13/agent-recruitment/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/agent-recruitment/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/agent-recruitment/internal/adapter/storage/miniostore"
	"github.com/fairyhunter13/agent-recruitment/internal/app"
	"github.com/fairyhunter13/agent-recruitment/internal/config"
	"github.com/fairyhunter13/agent-recruitment/internal/service/inflight"
	"github.com/fairyhunter13/agent-recruitment/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// Infra: DB pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Redis backs the in-flight pipeline guards.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()

	// Object store for CV documents.
	store, err := miniostore.New(ctx, cfg)
	if err != nil {
		slog.Error("object store connect failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Queue producer (Redpanda).
	producer, err := redpanda.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		slog.Error("redpanda producer connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			slog.Error("failed to close queue producer", slog.Any("error", err))
		}
	}()

	// Repositories
	jobRepo := postgres.NewJobRepo(pool)
	candRepo := postgres.NewCandidateRepo(pool)
	userRepo := postgres.NewUserRepo(pool)
	permRepo := postgres.NewPermissionRepo(pool)
	taskRepo := postgres.NewTaskRepo(pool)

	guard := inflight.New(rdb, cfg.InflightTTL)

	// Usecases
	jobSvc := usecase.NewJobService(jobRepo, permRepo)
	candSvc := usecase.NewCandidateService(candRepo, jobRepo, permRepo, store)
	userSvc := usecase.NewUserService(userRepo, permRepo, jobRepo)
	pipeSvc := usecase.NewPipelineService(candRepo, jobRepo, taskRepo, producer, guard)

	if cfg.SeedFile != "" {
		if err := runSeed(ctx, cfg.SeedFile, userSvc, jobSvc); err != nil {
			slog.Error("seed failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// HTTP server
	srv := httpserver.NewServer(cfg, jobSvc, candSvc, userSvc, pipeSvc)
	dbCheck, redisCheck, storeCheck := app.BuildReadinessChecks(cfg, pool, rdb, store)
	srv.ReadyChecks = []func(ctx context.Context) error{dbCheck, redisCheck, storeCheck}

	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
