package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

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
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	seen := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)
	indices := elasticsearch.Indices{
		Records: cfg.RecordIndex,
		Results: cfg.ResultIndex,
		Sources: cfg.SourceIndex,
	}
	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, indices, seen, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	reg, err := registry.Default()
	if err != nil {
		log.Error("build source registry", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

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
	}

	orch := dispatch.New(log, reg, esClient, fetch.Defaults(log), opts)
	srv := &server{
		log:   log,
		cfg:   cfg,
		es:    esClient,
		orch:  orch,
		guard: &dispatch.SingleFlight{},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/sync/status", srv.handleStatus)
	r.Post("/sync/all", srv.handleSyncAll)
	r.Get("/sync/sources", srv.handleSources)
	r.Get("/sync/history", srv.handleHistory)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Minute,
	}

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log   *slog.Logger
	cfg   *config.API
	es    *elasticsearch.Client
	orch  *dispatch.Orchestrator
	guard *dispatch.SingleFlight
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.es.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.Status())
}

// handleSyncAll triggers one whole-registry pass. Only one pass may run
// at a time; a second trigger gets a 409 instead of queueing.
func (s *server) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	if !s.guard.TryLock() {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "sync already in progress"})
		return
	}
	defer s.guard.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	report := s.orch.SyncAll(ctx)
	writeJSON(w, http.StatusOK, report)
}

func (s *server) handleSources(w http.ResponseWriter, r *http.Request) {
	status := s.orch.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"totalSources":  status.TotalSources,
		"activeSources": status.ActiveSources,
		"sourceDistribution": map[string]any{
			"byPriority": status.SourcesByPriority,
			"byType":     status.SourcesByType,
			"byRegion":   status.SourcesByRegion,
		},
	})
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	days := clampInt(r.URL.Query().Get("days"), s.cfg.DefaultHistoryDays, s.cfg.MaxHistoryDays)
	history, err := s.es.SyncHistory(ctx, days)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":    days,
		"history": history,
	})
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
