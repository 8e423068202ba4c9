package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/regpulse/regpulse/backend/internal/dispatch"
	"github.com/regpulse/regpulse/backend/internal/fetch"
	"github.com/regpulse/regpulse/backend/internal/models"
	"github.com/regpulse/regpulse/backend/internal/registry"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	created      []string
	savedResults []models.SyncResult
	sources      map[string]models.SourceDescriptor
	createErr    error
	listErr      error
}

func newStubGateway() *stubGateway {
	return &stubGateway{sources: make(map[string]models.SourceDescriptor)}
}

func (g *stubGateway) CreateRecord(_ context.Context, rec models.NormalizedRecord, _ string) error {
	if g.createErr != nil {
		return g.createErr
	}
	g.created = append(g.created, rec.Title)
	return nil
}

func (g *stubGateway) SourceExists(_ context.Context, id string) (bool, error) {
	_, ok := g.sources[id]
	return ok, nil
}

func (g *stubGateway) SaveSource(_ context.Context, src models.SourceDescriptor) error {
	g.sources[src.ID] = src
	return nil
}

func (g *stubGateway) ListActiveSources(_ context.Context) ([]models.SourceDescriptor, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return nil, nil
}

func (g *stubGateway) SaveSyncResult(_ context.Context, res models.SyncResult) error {
	g.savedResults = append(g.savedResults, res)
	return nil
}

type stubFetcher struct {
	records []models.RawRecord
	err     error
	calls   int
}

func (f *stubFetcher) Fetch(_ context.Context, _ models.SourceDescriptor) ([]models.RawRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type stubSink struct {
	published []models.SyncResult
}

func (s *stubSink) Publish(_ context.Context, res models.SyncResult) error {
	s.published = append(s.published, res)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSource(id string, priority models.Priority, perHour int) models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:               id,
		Name:             "Source " + id,
		Type:             models.SourceTypeAPI,
		Priority:         priority,
		Region:           "US",
		URL:              "https://example.org/" + id,
		RateLimitPerHour: perHour,
		IsActive:         true,
	}
}

func newOrchestrator(t *testing.T, sources []models.SourceDescriptor, gw dispatch.Gateway, f fetch.Fetcher, opts dispatch.Options) *dispatch.Orchestrator {
	t.Helper()
	reg, err := registry.New(sources)
	require.NoError(t, err)
	fetchers := map[models.SourceType]fetch.Fetcher{models.SourceTypeAPI: f}
	return dispatch.New(testLogger(), reg, gw, fetchers, opts)
}

func TestSyncSourceCountsAddedAndSkipped(t *testing.T) {
	src := testSource("one", models.PriorityHigh, 100)
	gw := newStubGateway()
	f := &stubFetcher{records: []models.RawRecord{
		{"title": "Class I Recall: Infusion Pump Batch 44"},
		{"title": "x"}, // dropped by normalization
		{"title": "Regulatory Update"}, // rejected by validation
	}}

	orch := newOrchestrator(t, []models.SourceDescriptor{src}, gw, f, dispatch.Options{})
	res := orch.SyncSource(context.Background(), src)

	require.Equal(t, models.StatusSuccess, res.Status)
	require.Equal(t, 3, res.RecordsProcessed)
	require.Equal(t, 1, res.RecordsAdded)
	require.Equal(t, 2, res.RecordsSkipped)
	require.Equal(t, res.RecordsAdded+res.RecordsSkipped, res.RecordsProcessed)
	require.Len(t, res.Warnings, 2)
	require.Len(t, gw.created, 1)
}

func TestSyncSourceEmptyFetchIsPartial(t *testing.T) {
	src := testSource("one", models.PriorityHigh, 100)
	orch := newOrchestrator(t, []models.SourceDescriptor{src}, newStubGateway(), &stubFetcher{}, dispatch.Options{})

	res := orch.SyncSource(context.Background(), src)

	require.Equal(t, models.StatusPartial, res.Status)
	require.Zero(t, res.RecordsProcessed)
	require.Zero(t, res.RecordsAdded)
	require.Zero(t, res.RecordsSkipped)
	require.Empty(t, res.ErrorMessage)
}

func TestSyncSourceFetchErrorIsFailed(t *testing.T) {
	src := testSource("one", models.PriorityHigh, 100)
	f := &stubFetcher{err: errors.New("connect: connection refused")}
	orch := newOrchestrator(t, []models.SourceDescriptor{src}, newStubGateway(), f, dispatch.Options{})

	res := orch.SyncSource(context.Background(), src)

	require.Equal(t, models.StatusFailed, res.Status)
	require.Contains(t, res.ErrorMessage, "connection refused")
	require.Zero(t, res.RecordsProcessed)
}

func TestSyncSourceUnknownTypeIsFailed(t *testing.T) {
	src := testSource("one", models.PriorityHigh, 100)
	orch := newOrchestrator(t, []models.SourceDescriptor{src}, newStubGateway(), &stubFetcher{}, dispatch.Options{})

	src.Type = models.SourceTypeScrape // no fetcher registered for it
	res := orch.SyncSource(context.Background(), src)

	require.Equal(t, models.StatusFailed, res.Status)
	require.Contains(t, res.ErrorMessage, "no fetch strategy")
}

func TestSyncSourceGatewayErrorSkipsRecord(t *testing.T) {
	src := testSource("one", models.PriorityHigh, 100)
	gw := newStubGateway()
	gw.createErr = errors.New("index unavailable")
	f := &stubFetcher{records: []models.RawRecord{
		{"title": "Perfectly valid record title"},
	}}

	orch := newOrchestrator(t, []models.SourceDescriptor{src}, gw, f, dispatch.Options{})
	res := orch.SyncSource(context.Background(), src)

	require.Equal(t, models.StatusPartial, res.Status)
	require.Equal(t, 1, res.RecordsSkipped)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "index unavailable")
}

func TestSyncSourceDefersWhenBudgetExhausted(t *testing.T) {
	src := testSource("one", models.PriorityHigh, 1)
	f := &stubFetcher{records: []models.RawRecord{
		{"title": "Valid record title here"},
	}}
	orch := newOrchestrator(t, []models.SourceDescriptor{src}, newStubGateway(), f, dispatch.Options{})

	first := orch.SyncSource(context.Background(), src)
	require.Equal(t, models.StatusSuccess, first.Status)

	second := orch.SyncSource(context.Background(), src)
	require.Equal(t, models.StatusDeferred, second.Status)
	require.Empty(t, second.ErrorMessage)
	require.Zero(t, second.RecordsProcessed)
	require.Equal(t, 1, f.calls, "deferred source must not be fetched")
}

func TestSyncAllSlicesHighTierToBatchLimit(t *testing.T) {
	var sources []models.SourceDescriptor
	for i := 0; i < 5; i++ {
		sources = append(sources, testSource(fmt.Sprintf("high-%d", i), models.PriorityHigh, 100))
	}
	sources = append(sources, testSource("medium-0", models.PriorityMedium, 100))

	f := &stubFetcher{records: []models.RawRecord{{"title": "Valid record title here"}}}
	gw := newStubGateway()
	orch := newOrchestrator(t, sources, gw, f, dispatch.Options{BatchLimit: 2})

	report := orch.SyncAll(context.Background())

	require.Equal(t, 2, report.Summary.TotalSourcesProcessed)
	require.Len(t, report.Details, 2)
	require.Equal(t, "high-0", report.Details[0].SourceID)
	require.Equal(t, "high-1", report.Details[1].SourceID)
	require.Len(t, gw.savedResults, 2)
}

func TestSyncAllSummaryArithmetic(t *testing.T) {
	sources := []models.SourceDescriptor{
		testSource("ok", models.PriorityHigh, 100),
		testSource("ok-2", models.PriorityHigh, 100),
	}

	f := &stubFetcher{records: []models.RawRecord{{"title": "Valid record title here"}}}
	sink := &stubSink{}
	orch := newOrchestrator(t, sources, newStubGateway(), f, dispatch.Options{Sink: sink})

	report := orch.SyncAll(context.Background())

	require.True(t, report.Success)
	require.Equal(t, 2, report.Summary.TotalSourcesProcessed)
	require.Equal(t, 2, report.Summary.SuccessfulSources)
	require.Zero(t, report.Summary.FailedSources)
	require.Zero(t, report.Summary.DeferredSources)
	require.Equal(t, 2, report.Summary.TotalRecords)
	require.Len(t, sink.published, 2)
}

func TestSyncAllFailsWhenEveryAttemptFails(t *testing.T) {
	sources := []models.SourceDescriptor{
		testSource("bad", models.PriorityHigh, 100),
	}
	f := &stubFetcher{err: errors.New("boom")}
	orch := newOrchestrator(t, sources, newStubGateway(), f, dispatch.Options{})

	report := orch.SyncAll(context.Background())

	// Every attempted source failed.
	require.False(t, report.Success)
	require.Equal(t, 1, report.Summary.FailedSources)
}

func TestSyncAllFallsBackToRegistryOnGatewayError(t *testing.T) {
	sources := []models.SourceDescriptor{testSource("one", models.PriorityHigh, 100)}
	gw := newStubGateway()
	gw.listErr = errors.New("search failed")
	f := &stubFetcher{records: []models.RawRecord{{"title": "Valid record title here"}}}

	orch := newOrchestrator(t, sources, gw, f, dispatch.Options{})
	report := orch.SyncAll(context.Background())

	require.Equal(t, 1, report.Summary.TotalSourcesProcessed)
	require.True(t, report.Success)
}

func TestStatusIsPureRead(t *testing.T) {
	sources := []models.SourceDescriptor{
		testSource("one", models.PriorityHigh, 100),
		testSource("two", models.PriorityMedium, 100),
	}
	inactive := testSource("three", models.PriorityLow, 100)
	inactive.IsActive = false
	inactive.Region = "EU"
	sources = append(sources, inactive)

	f := &stubFetcher{}
	orch := newOrchestrator(t, sources, newStubGateway(), f, dispatch.Options{})

	status := orch.Status()
	require.Equal(t, 3, status.TotalSources)
	require.Equal(t, 2, status.ActiveSources)
	require.Equal(t, 1, status.SourcesByPriority[models.PriorityHigh])
	require.Equal(t, 1, status.SourcesByPriority[models.PriorityLow])
	require.Equal(t, 2, status.SourcesByRegion["US"])
	require.Equal(t, 1, status.SourcesByRegion["EU"])
	require.Nil(t, status.LastSync)
	require.Zero(t, f.calls, "status must not trigger fetches")

	orch.SyncAll(context.Background())
	status = orch.Status()
	require.NotNil(t, status.LastSync)
}

func TestSingleFlight(t *testing.T) {
	var guard dispatch.SingleFlight
	require.True(t, guard.TryLock())
	require.False(t, guard.TryLock())
	guard.Unlock()
	require.True(t, guard.TryLock())
}

func TestBootstrapMirrorsCatalog(t *testing.T) {
	sources := []models.SourceDescriptor{
		testSource("one", models.PriorityHigh, 100),
		testSource("two", models.PriorityMedium, 100),
	}
	reg, err := registry.New(sources)
	require.NoError(t, err)

	gw := newStubGateway()
	gw.sources["one"] = sources[0] // already mirrored

	dispatch.Bootstrap(context.Background(), testLogger(), reg, gw)

	require.Len(t, gw.sources, 2)
	require.Contains(t, gw.sources, "two")
}
