// Package fetch implements the three retrieval strategies a source can
// declare: JSON API, HTML scrape, and RSS feed. Strategies honor the
// descriptor's timeout per HTTP call and leave retries to the caller.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/regpulse/regpulse/backend/internal/models"
)

// Fetcher retrieves raw records from one source.
type Fetcher interface {
	Fetch(ctx context.Context, src models.SourceDescriptor) ([]models.RawRecord, error)
}

var errUnexpectedStatus = fmt.Errorf("unexpected response status")

// Error carries the source and HTTP status a fetch failed with.
type Error struct {
	SourceID   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.SourceID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.SourceID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Defaults returns one strategy per source type, sharing nothing but
// the logger. The orchestrator dispatches on the source's declared type.
func Defaults(log *slog.Logger) map[models.SourceType]Fetcher {
	return map[models.SourceType]Fetcher{
		models.SourceTypeAPI:    NewAPIFetcher(),
		models.SourceTypeScrape: NewScrapeFetcher(),
		models.SourceTypeRSS:    NewRSSFetcher(log),
	}
}

func newClient() *http.Client {
	// Timeouts are applied per request from the descriptor, so the
	// client itself carries none.
	return &http.Client{}
}
