// Package dispatch drives the per-source sync pipeline and the
// priority-tiered whole-registry pass.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/regpulse/regpulse/backend/internal/fetch"
	"github.com/regpulse/regpulse/backend/internal/models"
	"github.com/regpulse/regpulse/backend/internal/normalize"
	"github.com/regpulse/regpulse/backend/internal/ratelimit"
	"github.com/regpulse/regpulse/backend/internal/registry"
	"github.com/regpulse/regpulse/backend/internal/validate"
)

// Options tune a whole-registry pass.
type Options struct {
	// BatchLimit bounds how many high-tier sources one pass attempts.
	// Politeness control, not a bug: completeness comes from repeated
	// passes.
	BatchLimit int
	// SourceDelay is the pause between sources within a pass.
	SourceDelay time.Duration
	// Sink, when set, receives every per-source result.
	Sink ResultSink
}

// Orchestrator owns the rate-limiter map and runs sources through
// admit -> fetch -> normalize -> validate -> persist, one at a time.
// Sources inside a tier are deliberately processed sequentially:
// upstream regulatory sites penalize bursty access.
type Orchestrator struct {
	log      *slog.Logger
	reg      *registry.Registry
	gateway  Gateway
	fetchers map[models.SourceType]fetch.Fetcher
	limiter  *ratelimit.Limiter
	opts     Options

	mu          sync.Mutex
	lastSummary *models.SyncSummary
	lastResults []models.SyncResult
}

// New wires an orchestrator. The registry is shared read-only; the
// limiter is owned by the orchestrator for its lifetime.
func New(log *slog.Logger, reg *registry.Registry, gw Gateway, fetchers map[models.SourceType]fetch.Fetcher, opts Options) *Orchestrator {
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = 10
	}
	return &Orchestrator{
		log:      log,
		reg:      reg,
		gateway:  gw,
		fetchers: fetchers,
		limiter:  ratelimit.New(),
		opts:     opts,
	}
}

// SyncSource runs one source through the full pipeline and returns its
// result. It never returns an error: failures are captured in the
// result's status and message.
func (o *Orchestrator) SyncSource(ctx context.Context, src models.SourceDescriptor) models.SyncResult {
	start := time.Now()
	res := models.SyncResult{
		SourceID:   src.ID,
		SourceName: src.Name,
		SyncedAt:   start.UTC(),
	}

	if !o.limiter.TryAcquire(src.ID, src.RateLimitPerHour) {
		// Out of budget for this window. Deferred, not failed.
		res.Status = models.StatusDeferred
		res.DurationMS = time.Since(start).Milliseconds()
		return res
	}

	fetcher, ok := o.fetchers[src.Type]
	if !ok {
		res.Status = models.StatusFailed
		res.ErrorMessage = fmt.Sprintf("no fetch strategy for source type %q", src.Type)
		res.DurationMS = time.Since(start).Milliseconds()
		return res
	}

	raw, err := fetcher.Fetch(ctx, src)
	if err != nil {
		res.Status = models.StatusFailed
		res.ErrorMessage = err.Error()
		res.DurationMS = time.Since(start).Milliseconds()
		return res
	}

	res.RecordsProcessed = len(raw)
	for _, rawRecord := range raw {
		added, warning := o.processRecord(ctx, rawRecord, src)
		if added {
			res.RecordsAdded++
		} else {
			res.RecordsSkipped++
			res.Warnings = append(res.Warnings, warning)
		}
	}

	if res.RecordsAdded > 0 {
		res.Status = models.StatusSuccess
	} else {
		res.Status = models.StatusPartial
	}
	res.DurationMS = time.Since(start).Milliseconds()
	return res
}

// processRecord normalizes, validates and persists a single raw record.
// One malformed record never sinks the rest of the batch.
func (o *Orchestrator) processRecord(ctx context.Context, raw models.RawRecord, src models.SourceDescriptor) (added bool, warning string) {
	rec := normalize.Record(raw, src)
	if rec == nil {
		return false, fmt.Sprintf("record from %s dropped: no usable title", src.Name)
	}
	if !validate.IsAcceptable(rec) {
		return false, fmt.Sprintf("record %q from %s rejected by validator", rec.Title, src.Name)
	}
	if err := o.gateway.CreateRecord(ctx, *rec, src.ID); err != nil {
		return false, fmt.Sprintf("persist record %q: %v", rec.Title, err)
	}
	return true, ""
}

// SyncAll runs the tiered whole-registry pass. It never raises: the
// report's Success flag is false only when every non-deferred attempted
// source failed.
func (o *Orchestrator) SyncAll(ctx context.Context) models.SyncReport {
	start := time.Now()
	sources := o.activeSources(ctx)

	high, _, _ := partitionByPriority(sources)
	batch := high
	if len(batch) > o.opts.BatchLimit {
		batch = batch[:o.opts.BatchLimit]
	}

	o.log.Info("sync pass starting",
		slog.Int("active_sources", len(sources)),
		slog.Int("batch", len(batch)),
	)

	results := make([]models.SyncResult, 0, len(batch))
	for i, src := range batch {
		res := o.SyncSource(ctx, src)
		results = append(results, res)
		o.emit(ctx, res)

		o.log.Info("source synced",
			slog.String("source", src.ID),
			slog.String("status", string(res.Status)),
			slog.Int("added", res.RecordsAdded),
			slog.Int("skipped", res.RecordsSkipped),
		)

		if i < len(batch)-1 && o.opts.SourceDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(o.opts.SourceDelay):
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	summary := summarize(results, time.Since(start))
	report := models.SyncReport{
		Success: reportSuccess(summary),
		Summary: summary,
		Details: results,
	}

	o.mu.Lock()
	o.lastSummary = &summary
	o.lastResults = results
	o.mu.Unlock()

	o.log.Info("sync pass completed",
		slog.Int("sources", summary.TotalSourcesProcessed),
		slog.Int("succeeded", summary.SuccessfulSources),
		slog.Int("failed", summary.FailedSources),
		slog.Int("deferred", summary.DeferredSources),
		slog.Int("records", summary.TotalRecords),
	)
	return report
}

// activeSources prefers persisted source configuration from the
// gateway and falls back to the static registry when the gateway has
// nothing usable.
func (o *Orchestrator) activeSources(ctx context.Context) []models.SourceDescriptor {
	persisted, err := o.gateway.ListActiveSources(ctx)
	if err != nil {
		o.log.Warn("loading sources from gateway failed, using static registry", slog.Any("err", err))
		return o.reg.Active()
	}
	if len(persisted) == 0 {
		return o.reg.Active()
	}
	return persisted
}

// emit persists and publishes one result, best-effort on both counts.
func (o *Orchestrator) emit(ctx context.Context, res models.SyncResult) {
	if err := o.gateway.SaveSyncResult(ctx, res); err != nil {
		o.log.Warn("saving sync result failed", slog.String("source", res.SourceID), slog.Any("err", err))
	}
	if o.opts.Sink != nil {
		if err := o.opts.Sink.Publish(ctx, res); err != nil {
			o.log.Warn("publishing sync result failed", slog.String("source", res.SourceID), slog.Any("err", err))
		}
	}
}

// Status is a pure read over the registry and the last pass. It never
// triggers a fetch.
func (o *Orchestrator) Status() models.StatusReport {
	all := o.reg.List()
	report := models.StatusReport{
		TotalSources:      len(all),
		SourcesByPriority: make(map[models.Priority]int),
		SourcesByType:     make(map[models.SourceType]int),
		SourcesByRegion:   make(map[string]int),
	}
	for _, src := range all {
		if src.IsActive {
			report.ActiveSources++
		}
		report.SourcesByPriority[src.Priority]++
		report.SourcesByType[src.Type]++
		report.SourcesByRegion[src.Region]++
	}

	o.mu.Lock()
	if o.lastSummary != nil {
		summary := *o.lastSummary
		report.LastSync = &summary
	}
	o.mu.Unlock()
	return report
}

// LastResults returns the per-source results of the most recent pass.
func (o *Orchestrator) LastResults() []models.SyncResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.SyncResult, len(o.lastResults))
	copy(out, o.lastResults)
	return out
}

func partitionByPriority(sources []models.SourceDescriptor) (high, medium, low []models.SourceDescriptor) {
	for _, src := range sources {
		switch src.Priority {
		case models.PriorityHigh:
			high = append(high, src)
		case models.PriorityLow:
			low = append(low, src)
		default:
			medium = append(medium, src)
		}
	}
	return high, medium, low
}

func summarize(results []models.SyncResult, elapsed time.Duration) models.SyncSummary {
	summary := models.SyncSummary{
		TotalSourcesProcessed: len(results),
		DurationMS:            elapsed.Milliseconds(),
		Timestamp:             time.Now().UTC(),
	}
	for _, res := range results {
		switch res.Status {
		case models.StatusSuccess:
			summary.SuccessfulSources++
		case models.StatusFailed:
			summary.FailedSources++
		case models.StatusDeferred:
			summary.DeferredSources++
		}
		summary.TotalRecords += res.RecordsAdded
	}
	return summary
}

func reportSuccess(s models.SyncSummary) bool {
	attempted := s.TotalSourcesProcessed - s.DeferredSources
	return s.FailedSources == 0 || s.FailedSources < attempted
}
