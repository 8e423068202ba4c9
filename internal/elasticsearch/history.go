package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/regpulse/regpulse/backend/internal/models"
)

const historyPageSize = 5000

// SyncHistory returns per-day aggregates of the persisted sync results
// over the trailing window of days.
func (c *Client) SyncHistory(ctx context.Context, days int) ([]models.SyncHistoryDay, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	body := map[string]any{
		"size": historyPageSize,
		"query": map[string]any{
			"range": map[string]any{
				"syncedAt": map[string]any{"gte": since.Format(time.RFC3339)},
			},
		},
		"sort": []map[string]any{
			{"syncedAt": map[string]any{"order": "desc"}},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal history query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indices.Results),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search sync results: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search sync results failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.SyncResult `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode sync results: %w", err)
	}

	results := make([]models.SyncResult, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, hit.Source)
	}
	return bucketByDay(results), nil
}

// bucketByDay folds individual results into daily aggregates, newest
// day first.
func bucketByDay(results []models.SyncResult) []models.SyncHistoryDay {
	byDay := make(map[string]*models.SyncHistoryDay)
	for _, r := range results {
		day := r.SyncedAt.UTC().Format("2006-01-02")
		agg, ok := byDay[day]
		if !ok {
			agg = &models.SyncHistoryDay{Date: day}
			byDay[day] = agg
		}
		agg.TotalSyncs++
		switch r.Status {
		case models.StatusSuccess, models.StatusPartial:
			agg.SuccessfulSyncs++
		case models.StatusFailed:
			agg.FailedSyncs++
		}
		agg.RecordsAdded += r.RecordsAdded
	}

	days := make([]models.SyncHistoryDay, 0, len(byDay))
	for _, agg := range byDay {
		days = append(days, *agg)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	return days
}
