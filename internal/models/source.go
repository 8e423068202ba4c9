package models

import "time"

// SourceType selects the fetch strategy used for a source.
type SourceType string

const (
	SourceTypeAPI    SourceType = "api"
	SourceTypeScrape SourceType = "scrape"
	SourceTypeRSS    SourceType = "rss"
)

// Priority controls the tier a source is processed in.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Source categories as used by the catalog.
const (
	CategoryRegulatory   = "regulatory"
	CategorySafety       = "safety"
	CategoryClinical     = "clinical"
	CategoryStandards    = "standards"
	CategoryGlobalHealth = "global_health"
)

// APIConfig holds the static request shape for an API source.
type APIConfig struct {
	// Params are appended to every request as query parameters.
	Params map[string]string `json:"params,omitempty"`
	// ResultPath is a dotted path into the JSON body where the record
	// list lives, e.g. "results" or "data.items". Empty means the body
	// itself is the result.
	ResultPath string `json:"resultPath,omitempty"`
}

// ScrapeConfig holds the CSS selectors used to pull articles out of an
// HTML page.
type ScrapeConfig struct {
	Article string `json:"article"`
	Title   string `json:"title"`
	Date    string `json:"date,omitempty"`
	Link    string `json:"link,omitempty"`
}

// SourceDescriptor is one immutable catalog entry. Only IsActive may be
// toggled after construction, between sync passes.
type SourceDescriptor struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Type             SourceType    `json:"type"`
	Category         string        `json:"category"`
	Priority         Priority      `json:"priority"`
	Region           string        `json:"region"`
	URL              string        `json:"url"`
	APIEndpoint      string        `json:"apiEndpoint,omitempty"`
	API              *APIConfig    `json:"apiConfig,omitempty"`
	Scrape           *ScrapeConfig `json:"scrapingConfig,omitempty"`
	RateLimitPerHour int           `json:"rateLimitPerHour"`
	TimeoutSeconds   int           `json:"timeoutSeconds"`
	MaxRetries       int           `json:"maxRetries"`
	IsActive         bool          `json:"isActive"`
}

// Endpoint returns the URL requests should be issued against.
func (s SourceDescriptor) Endpoint() string {
	if s.APIEndpoint != "" {
		return s.APIEndpoint
	}
	return s.URL
}

// Timeout converts TimeoutSeconds into a duration, with a sane floor.
func (s SourceDescriptor) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}
