package models

import "time"

// ResultStatus is the outcome of one source's sync within a pass.
type ResultStatus string

const (
	// StatusSuccess means at least one record was added.
	StatusSuccess ResultStatus = "success"
	// StatusPartial means the fetch worked but nothing new was added.
	StatusPartial ResultStatus = "partial"
	// StatusFailed means the fetch itself errored.
	StatusFailed ResultStatus = "failed"
	// StatusDeferred means the rate bucket was empty and the source was
	// skipped for this pass. Not a failure.
	StatusDeferred ResultStatus = "deferred"
)

// SyncResult is the per-source audit record of one sync.
// For any run that began processing, RecordsProcessed equals
// RecordsAdded + RecordsSkipped.
type SyncResult struct {
	SourceID         string       `json:"sourceId"`
	SourceName       string       `json:"sourceName"`
	Status           ResultStatus `json:"status"`
	RecordsProcessed int          `json:"recordsProcessed"`
	RecordsAdded     int          `json:"recordsAdded"`
	RecordsSkipped   int          `json:"recordsSkipped"`
	DurationMS       int64        `json:"durationMs"`
	ErrorMessage     string       `json:"errorMessage,omitempty"`
	Warnings         []string     `json:"warnings,omitempty"`
	SyncedAt         time.Time    `json:"syncedAt"`
}

// SyncSummary aggregates one orchestrated pass. It covers only the
// attempted slice of the registry, never the whole catalog.
type SyncSummary struct {
	TotalSourcesProcessed int       `json:"totalSourcesProcessed"`
	SuccessfulSources     int       `json:"successfulSources"`
	FailedSources         int       `json:"failedSources"`
	DeferredSources       int       `json:"deferredSources"`
	TotalRecords          int       `json:"totalRecords"`
	DurationMS            int64     `json:"durationMs"`
	Timestamp             time.Time `json:"timestamp"`
}

// SyncReport is what a whole-registry sync returns to its caller.
// Success is false only when every non-deferred attempted source failed.
type SyncReport struct {
	Success bool         `json:"success"`
	Summary SyncSummary  `json:"summary"`
	Details []SyncResult `json:"details"`
}

// StatusReport is a read-only view of the registry plus the last run.
// Producing it never triggers a fetch.
type StatusReport struct {
	TotalSources      int                `json:"totalSources"`
	ActiveSources     int                `json:"activeSources"`
	SourcesByPriority map[Priority]int   `json:"sourcesByPriority"`
	SourcesByType     map[SourceType]int `json:"sourcesByType"`
	SourcesByRegion   map[string]int     `json:"sourcesByRegion"`
	LastSync          *SyncSummary       `json:"lastSync,omitempty"`
}

// SyncHistoryDay is one day's worth of persisted sync results, as served
// by the history endpoint.
type SyncHistoryDay struct {
	Date            string `json:"date"`
	TotalSyncs      int    `json:"totalSyncs"`
	SuccessfulSyncs int    `json:"successfulSyncs"`
	FailedSyncs     int    `json:"failedSyncs"`
	RecordsAdded    int    `json:"recordsAdded"`
}
