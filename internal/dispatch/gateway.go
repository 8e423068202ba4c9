package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/regpulse/regpulse/backend/internal/models"
	"github.com/regpulse/regpulse/backend/internal/registry"
)

// Gateway is the persistence collaborator. Implementations own
// idempotence against exact duplicates and the repair of dangling
// source references; the dispatcher does neither.
type Gateway interface {
	CreateRecord(ctx context.Context, rec models.NormalizedRecord, sourceID string) error
	SourceExists(ctx context.Context, sourceID string) (bool, error)
	SaveSource(ctx context.Context, src models.SourceDescriptor) error
	ListActiveSources(ctx context.Context) ([]models.SourceDescriptor, error)
	SaveSyncResult(ctx context.Context, res models.SyncResult) error
}

// ResultSink receives per-source sync results for external audit.
// Publishing is best-effort; a sink error never fails a sync.
type ResultSink interface {
	Publish(ctx context.Context, res models.SyncResult) error
}

// SingleFlight keeps a manual trigger and a scheduled pass from running
// a whole-registry sync concurrently. The orchestrator itself does not
// exclude overlapping runs; that responsibility sits with callers.
type SingleFlight struct {
	mu   sync.Mutex
	busy bool
}

// TryLock claims the flight if it is free.
func (s *SingleFlight) TryLock() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

// Unlock releases the flight.
func (s *SingleFlight) Unlock() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Bootstrap mirrors the static catalog into the gateway so that source
// references resolve there. Errors are logged and skipped; a gateway
// outage at startup must not block syncing from the static registry.
func Bootstrap(ctx context.Context, log *slog.Logger, reg *registry.Registry, gw Gateway) {
	for _, src := range reg.List() {
		exists, err := gw.SourceExists(ctx, src.ID)
		if err != nil {
			log.Warn("source existence check failed", slog.String("source", src.ID), slog.Any("err", err))
			continue
		}
		if exists {
			continue
		}
		if err := gw.SaveSource(ctx, src); err != nil {
			log.Warn("source mirror failed", slog.String("source", src.ID), slog.Any("err", err))
		}
	}
}
