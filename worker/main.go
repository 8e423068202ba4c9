package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/regpulse/regpulse/backend/internal/audit"
	"github.com/regpulse/regpulse/backend/internal/config"
	"github.com/regpulse/regpulse/backend/internal/dedupe"
	"github.com/regpulse/regpulse/backend/internal/dispatch"
	"github.com/regpulse/regpulse/backend/internal/elasticsearch"
	"github.com/regpulse/regpulse/backend/internal/fetch"
	"github.com/regpulse/regpulse/backend/internal/logger"
	"github.com/regpulse/regpulse/backend/internal/registry"
)

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient := connectElasticsearch(ctx, log, cfg)
	if esClient == nil {
		log.Error("failed to connect to elasticsearch after retries")
		os.Exit(1)
	}
	log.Info("connected to elasticsearch")

	reg, err := registry.Default()
	if err != nil {
		log.Error("build source registry", slog.Any("err", err))
		os.Exit(1)
	}

	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	dispatch.Bootstrap(bootCtx, log, reg, esClient)
	cancel()

	opts := dispatch.Options{
		BatchLimit:  cfg.BatchLimit,
		SourceDelay: cfg.SourceDelay,
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := audit.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer publisher.Close()
		opts.Sink = publisher
		log.Info("audit publishing enabled", slog.String("topic", cfg.KafkaTopic))
	}

	orch := dispatch.New(log, reg, esClient, fetch.Defaults(log), opts)
	guard := &dispatch.SingleFlight{}

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	log.Info("sync worker running",
		slog.Duration("interval", cfg.SyncInterval),
		slog.Bool("sync_on_start", cfg.SyncOnStart),
	)

	if cfg.SyncOnStart {
		runOnce(ctx, log, orch, guard)
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, orch, guard)
		}
	}
}

// runOnce runs one guarded sync pass. A pass still in flight from the
// previous tick is not stacked on, just skipped.
func runOnce(ctx context.Context, log *slog.Logger, orch *dispatch.Orchestrator, guard *dispatch.SingleFlight) {
	if !guard.TryLock() {
		log.Warn("previous sync pass still running, skipping this tick")
		return
	}
	defer guard.Unlock()

	subCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	report := orch.SyncAll(subCtx)
	if !report.Success {
		log.Warn("sync pass unsuccessful",
			slog.Int("failed", report.Summary.FailedSources),
			slog.Int("processed", report.Summary.TotalSourcesProcessed),
		)
	}
}

// connectElasticsearch retries with exponential backoff until the
// cluster answers a ping or the context is cancelled.
func connectElasticsearch(ctx context.Context, log *slog.Logger, cfg *config.Worker) *elasticsearch.Client {
	seen := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)
	indices := elasticsearch.Indices{
		Records: cfg.RecordIndex,
		Results: cfg.ResultIndex,
		Sources: cfg.SourceIndex,
	}

	maxRetries := 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, indices, seen, log)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := esClient.Ping(pingCtx)
			cancel()
			if pingErr == nil {
				return esClient
			}
			log.Warn("elasticsearch ping failed, retrying",
				slog.Any("err", pingErr),
				slog.Int("attempt", i+1),
				slog.Int("max_retries", maxRetries),
				slog.Duration("retry_in", retryDelay),
			)
		} else {
			log.Warn("failed to create elasticsearch client, retrying",
				slog.Any("err", err),
				slog.Int("attempt", i+1),
				slog.Int("max_retries", maxRetries),
			)
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil
		}
		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}
	return nil
}
