// Package elasticsearch implements the storage gateway on top of
// go-elasticsearch. Record writes are idempotent: the document ID is a
// deterministic hash of the record's stable fields, so replaying the
// same record overwrites instead of duplicating, even across
// overlapping sync runs.
package elasticsearch

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/regpulse/regpulse/backend/internal/dedupe"
	"github.com/regpulse/regpulse/backend/internal/models"
)

// Indices names the three indices the gateway writes.
type Indices struct {
	Records string
	Results string
	Sources string
}

// Client wraps go-elasticsearch with helpers tailored to this project.
type Client struct {
	es      *elasticsearch.Client
	indices Indices
	log     *slog.Logger
	seen    *dedupe.Cache
}

// storedRecord is the persisted shape of a normalized record.
type storedRecord struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Content       string    `json:"content"`
	PublishedAt   time.Time `json:"publishedAt"`
	DocumentURL   string    `json:"documentUrl"`
	SourceID      string    `json:"sourceId"`
	SourceType    string    `json:"sourceType"`
	Priority      string    `json:"priority"`
	Region        string    `json:"region"`
	DeviceClasses []string  `json:"deviceClasses,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	IngestedAt    time.Time `json:"ingestedAt"`
}

// New instantiates the gateway client.
func New(addr string, indices Indices, seen *dedupe.Cache, logger *slog.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if seen == nil {
		seen = dedupe.NewCache(1, time.Nanosecond)
	}

	return &Client{es: es, indices: indices, log: logger, seen: seen}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

// Health pings cluster health for the readiness endpoint.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}

// DocumentID hashes the record's stable fields into a deterministic
// Elasticsearch document ID.
func DocumentID(rec models.NormalizedRecord) string {
	if rec.Title == "" {
		return ""
	}
	s := sha1.Sum([]byte(rec.Title + "|" + rec.DocumentURL + "|" + rec.PublishedAt.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(s[:])
}

// CreateRecord persists one normalized record under the given source.
// A dangling source reference is repaired here by creating a
// placeholder source document first.
func (c *Client) CreateRecord(ctx context.Context, rec models.NormalizedRecord, sourceID string) error {
	if err := c.ensureSource(ctx, sourceID, rec); err != nil {
		return err
	}

	docID := DocumentID(rec)
	if docID == "" {
		docID = uuid.NewString()
	}
	if c.seen.IsSeen(docID) {
		c.log.Debug("record already persisted this window", slog.String("id", docID))
		return nil
	}

	doc := storedRecord{
		Title:         rec.Title,
		Description:   rec.Description,
		Content:       rec.Content,
		PublishedAt:   rec.PublishedAt,
		DocumentURL:   rec.DocumentURL,
		SourceID:      sourceID,
		SourceType:    string(rec.SourceType),
		Priority:      string(rec.Priority),
		Region:        rec.Region,
		DeviceClasses: rec.DeviceClasses,
		Tags:          rec.Tags,
		IngestedAt:    time.Now().UTC(),
	}
	if err := c.index(ctx, c.indices.Records, docID, doc); err != nil {
		return err
	}

	c.seen.MarkSeen(docID)
	return nil
}

// ensureSource repairs missing source references with a placeholder.
func (c *Client) ensureSource(ctx context.Context, sourceID string, rec models.NormalizedRecord) error {
	exists, err := c.SourceExists(ctx, sourceID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	placeholder := models.SourceDescriptor{
		ID:       sourceID,
		Name:     sourceID,
		Type:     rec.SourceType,
		Priority: rec.Priority,
		Region:   rec.Region,
		IsActive: false,
	}
	c.log.Warn("unknown source reference, creating placeholder", slog.String("source", sourceID))
	return c.SaveSource(ctx, placeholder)
}

// SourceExists reports whether a source document is present.
func (c *Client) SourceExists(ctx context.Context, sourceID string) (bool, error) {
	req := esapi.ExistsRequest{Index: c.indices.Sources, DocumentID: sourceID}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return false, fmt.Errorf("source exists: %w", err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("source exists failed: %s", res.Status())
	}
}

// SaveSource upserts a source descriptor document.
func (c *Client) SaveSource(ctx context.Context, src models.SourceDescriptor) error {
	return c.index(ctx, c.indices.Sources, src.ID, src)
}

// ListActiveSources returns the persisted descriptors flagged active.
func (c *Client) ListActiveSources(ctx context.Context) ([]models.SourceDescriptor, error) {
	body := map[string]any{
		"size": 500,
		"query": map[string]any{
			"term": map[string]any{"isActive": true},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal source query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indices.Sources),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search sources: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search sources failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.SourceDescriptor `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode source response: %w", err)
	}

	sources := make([]models.SourceDescriptor, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		sources = append(sources, hit.Source)
	}
	return sources, nil
}

// SaveSyncResult appends one per-source result to the audit index.
func (c *Client) SaveSyncResult(ctx context.Context, result models.SyncResult) error {
	return c.index(ctx, c.indices.Results, uuid.NewString(), result)
}

func (c *Client) index(ctx context.Context, index, docID string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: docID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

// DeleteRecordsOlderThan ages out persisted records.
func (c *Client) DeleteRecordsOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	return c.deleteOlderThan(ctx, c.indices.Records, "ingestedAt", maxAge, batchSize)
}

// DeleteResultsOlderThan ages out persisted sync results.
func (c *Client) DeleteResultsOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	return c.deleteOlderThan(ctx, c.indices.Results, "syncedAt", maxAge, batchSize)
}

// deleteOlderThan removes documents older than maxAge using batched
// delete-by-query, looping until a batch comes back short.
func (c *Client) deleteOlderThan(ctx context.Context, index, field string, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	cutoff := time.Now().Add(-maxAge).UTC().Format(time.RFC3339)
	totalDeleted := int64(0)

	for {
		body := map[string]any{
			"query": map[string]any{
				"range": map[string]any{
					field: map[string]any{"lte": cutoff},
				},
			},
		}
		payload, err := json.Marshal(body)
		if err != nil {
			return totalDeleted, fmt.Errorf("marshal delete body: %w", err)
		}

		res, err := c.es.DeleteByQuery(
			[]string{index},
			bytes.NewReader(payload),
			c.es.DeleteByQuery.WithContext(ctx),
			c.es.DeleteByQuery.WithWaitForCompletion(true),
			c.es.DeleteByQuery.WithConflicts("proceed"),
			c.es.DeleteByQuery.WithScrollSize(batchSize),
		)
		if err != nil {
			return totalDeleted, fmt.Errorf("delete by query: %w", err)
		}

		if res.IsError() {
			data, _ := io.ReadAll(res.Body)
			res.Body.Close()
			return totalDeleted, fmt.Errorf("delete by query failed: %s", strings.TrimSpace(string(data)))
		}

		var parsed struct {
			Deleted int64 `json:"deleted"`
		}
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			res.Body.Close()
			return totalDeleted, fmt.Errorf("decode delete response: %w", err)
		}
		res.Body.Close()

		totalDeleted += parsed.Deleted
		if parsed.Deleted < int64(batchSize) {
			break
		}
	}

	return totalDeleted, nil
}
