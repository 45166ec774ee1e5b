// Package main provides the worker application entry point.
// The worker processes CV extraction and evaluation tasks from the Redpanda queue.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/agent-recruitment/internal/adapter/ai/openai"
	"github.com/fairyhunter13/agent-recruitment/internal/adapter/observability"
	"github.com/fairyhunter13/agent-recruitment/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/agent-recruitment/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/agent-recruitment/internal/adapter/storage/miniostore"
	"github.com/fairyhunter13/agent-recruitment/internal/adapter/textextractor/pdflocal"
	"github.com/fairyhunter13/agent-recruitment/internal/config"
	"github.com/fairyhunter13/agent-recruitment/internal/pipeline"
	"github.com/fairyhunter13/agent-recruitment/internal/service/inflight"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// The worker exposes its own /metrics endpoint so Prometheus can scrape
	// task and AI instrumentation from this process.
	observability.InitMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9090", mux); err != nil {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	slog.Info("starting worker", slog.String("env", cfg.AppEnv))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()

	store, err := miniostore.New(ctx, cfg)
	if err != nil {
		slog.Error("object store connect failed", slog.Any("error", err))
		os.Exit(1)
	}

	runner := &pipeline.Runner{
		Candidates: postgres.NewCandidateRepo(pool),
		Jobs:       postgres.NewJobRepo(pool),
		Tasks:      postgres.NewTaskRepo(pool),
		Store:      store,
		Extractor:  pdflocal.New(cfg.OCRLanguages),
		AI:         openai.New(cfg),
		Guard:      inflight.New(rdb, cfg.InflightTTL),
	}

	consumer, err := redpanda.NewConsumer(cfg.KafkaBrokers, "agent-recruitment-workers", runner)
	if err != nil {
		slog.Error("queue consumer init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = consumer.Close() }()

	slog.Info("worker consuming", slog.Any("brokers", cfg.KafkaBrokers))
	if err := consumer.Run(ctx); err != nil {
		slog.Error("worker stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("worker stopped")
}
