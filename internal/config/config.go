package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr string
	RecordIndex       string
	ResultIndex       string
	SourceIndex       string
}

// Dispatcher holds the tunables of a sync pass plus the audit stream.
// Empty KafkaBrokers disables audit publishing.
type Dispatcher struct {
	BatchLimit     int
	SourceDelay    time.Duration
	DedupeCapacity int
	DedupeTTL      time.Duration
	KafkaBrokers   []string
	KafkaTopic     string
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	Dispatcher
	BindAddr           string
	DefaultHistoryDays int
	MaxHistoryDays     int
}

// Worker configures the scheduled sync loop.
type Worker struct {
	Common
	Dispatcher
	SyncInterval time.Duration
	SyncOnStart  bool
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval     time.Duration
	MaxRecordAge time.Duration
	MaxResultAge time.Duration
	BatchSize    int
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr: getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		RecordIndex:       getEnv("ELASTICSEARCH_RECORD_INDEX", "regulatory_records"),
		ResultIndex:       getEnv("ELASTICSEARCH_RESULT_INDEX", "sync_results"),
		SourceIndex:       getEnv("ELASTICSEARCH_SOURCE_INDEX", "data_sources"),
	}
}

func loadDispatcher() (Dispatcher, error) {
	d := Dispatcher{
		BatchLimit:     getInt("SYNC_BATCH_LIMIT", 10),
		SourceDelay:    getDuration("SYNC_SOURCE_DELAY", "1s"),
		DedupeCapacity: getInt("SYNC_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("SYNC_DEDUPE_TTL", "24h"),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "sync_results"),
	}

	if d.BatchLimit <= 0 {
		return d, fmt.Errorf("SYNC_BATCH_LIMIT must be positive")
	}
	if d.SourceDelay < 0 {
		return d, fmt.Errorf("SYNC_SOURCE_DELAY cannot be negative")
	}
	if d.DedupeCapacity <= 0 {
		return d, fmt.Errorf("SYNC_DEDUPE_CAPACITY must be positive")
	}
	if len(d.KafkaBrokers) > 0 && d.KafkaTopic == "" {
		return d, fmt.Errorf("KAFKA_TOPIC must be set when brokers are configured")
	}

	return d, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	disp, err := loadDispatcher()
	if err != nil {
		return nil, err
	}

	c := &API{
		Common:             loadCommon(),
		Dispatcher:         disp,
		BindAddr:           getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultHistoryDays: getInt("API_HISTORY_DAYS", 7),
		MaxHistoryDays:     getInt("API_MAX_HISTORY_DAYS", 90),
	}

	if c.DefaultHistoryDays <= 0 {
		return nil, fmt.Errorf("API_HISTORY_DAYS must be positive")
	}
	if c.MaxHistoryDays <= 0 {
		return nil, fmt.Errorf("API_MAX_HISTORY_DAYS must be positive")
	}
	if c.DefaultHistoryDays > c.MaxHistoryDays {
		return nil, fmt.Errorf("API_HISTORY_DAYS cannot exceed API_MAX_HISTORY_DAYS")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	disp, err := loadDispatcher()
	if err != nil {
		return nil, err
	}

	c := &Worker{
		Common:       loadCommon(),
		Dispatcher:   disp,
		SyncInterval: getDuration("WORKER_SYNC_INTERVAL", "1h"),
		SyncOnStart:  getBool("WORKER_SYNC_ON_START", true),
	}

	if c.SyncInterval <= 0 {
		return nil, fmt.Errorf("WORKER_SYNC_INTERVAL must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:       loadCommon(),
		Interval:     getDuration("RETENTION_INTERVAL", "24h"),
		MaxRecordAge: getDuration("RETENTION_MAX_RECORD_AGE", "2160h"), // 90 days
		MaxResultAge: getDuration("RETENTION_MAX_RESULT_AGE", "720h"),  // 30 days
		BatchSize:    getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_INTERVAL must be positive")
	}
	if c.MaxRecordAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_RECORD_AGE must be positive")
	}
	if c.MaxResultAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_RESULT_AGE must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
