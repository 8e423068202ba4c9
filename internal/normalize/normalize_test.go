package normalize_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/regpulse/regpulse/backend/internal/models"
	"github.com/regpulse/regpulse/backend/internal/normalize"
	"github.com/stretchr/testify/require"
)

func fdaSource() models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:       "fda-510k",
		Name:     "FDA 510(k) Clearances",
		Type:     models.SourceTypeAPI,
		Priority: models.PriorityHigh,
		Region:   "US",
		URL:      "https://www.fda.gov",
	}
}

func TestRecordComposesFDATitle(t *testing.T) {
	raw := models.RawRecord{
		"device_name":   "AeroPace",
		"decision_date": "2025-01-15",
	}

	rec := normalize.Record(raw, fdaSource())
	require.NotNil(t, rec)
	require.Equal(t, "FDA 510(k): AeroPace", rec.Title)
	require.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), rec.PublishedAt)
	require.Equal(t, "https://www.fda.gov", rec.DocumentURL)
	require.Equal(t, models.PriorityHigh, rec.Priority)
	require.Equal(t, "US", rec.Region)
}

func TestRecordExplicitTitleWins(t *testing.T) {
	raw := models.RawRecord{
		"title":       "Updated Guidance on Software Devices",
		"device_name": "ShouldNotAppear",
	}

	rec := normalize.Record(raw, fdaSource())
	require.NotNil(t, rec)
	require.Equal(t, "Updated Guidance on Software Devices", rec.Title)
}

func TestRecordDropsShortTitle(t *testing.T) {
	tests := []struct {
		name string
		raw  models.RawRecord
	}{
		{name: "nil raw", raw: nil},
		{name: "no title fields", raw: models.RawRecord{"irrelevant": "x"}},
		{name: "too short", raw: models.RawRecord{"title": "abcd"}},
		{name: "whitespace only", raw: models.RawRecord{"title": "    "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Nil(t, normalize.Record(tt.raw, fdaSource()))
		})
	}
}

func TestRecordTruncatesLongFields(t *testing.T) {
	raw := models.RawRecord{
		"title":       strings.Repeat("t", 600),
		"description": strings.Repeat("d", 1500),
	}

	rec := normalize.Record(raw, fdaSource())
	require.NotNil(t, rec)
	require.Equal(t, models.MaxTitleLen, utf8.RuneCountInString(rec.Title))
	require.Equal(t, models.MaxDescriptionLen, utf8.RuneCountInString(rec.Description))
}

func TestRecordFallsBackToNowForBadDates(t *testing.T) {
	raw := models.RawRecord{
		"title": "Valid title here",
		"date":  "not a date at all",
	}

	before := time.Now().UTC()
	rec := normalize.Record(raw, fdaSource())
	after := time.Now().UTC()

	require.NotNil(t, rec)
	require.False(t, rec.PublishedAt.Before(before))
	require.False(t, rec.PublishedAt.After(after))
}

func TestRecordRejectsRelativeURLs(t *testing.T) {
	raw := models.RawRecord{
		"title": "Valid title here",
		"url":   "/relative/path",
	}

	rec := normalize.Record(raw, fdaSource())
	require.NotNil(t, rec)
	require.Equal(t, "https://www.fda.gov", rec.DocumentURL)
}

func TestRecordDeviceClasses(t *testing.T) {
	raw := models.RawRecord{
		"title":             "Cardiac monitor clearance",
		"device_class":      "2",
		"regulation_number": "870.2300",
	}

	rec := normalize.Record(raw, fdaSource())
	require.NotNil(t, rec)
	require.Equal(t, []string{"2", "870.2300"}, rec.DeviceClasses)
}

func TestRecordContentFallsBackToDescription(t *testing.T) {
	raw := models.RawRecord{
		"title":       "Valid title here",
		"description": "Short summary.",
	}

	rec := normalize.Record(raw, fdaSource())
	require.NotNil(t, rec)
	require.Equal(t, "Short summary.", rec.Content)
}

func TestRecordIsDeterministic(t *testing.T) {
	raw := models.RawRecord{
		"title":         "Deterministic record title",
		"description":   "Same in, same out.",
		"decision_date": "2025-03-01",
		"url":           "https://example.org/doc",
	}

	first := normalize.Record(raw, fdaSource())
	second := normalize.Record(raw, fdaSource())
	require.Equal(t, first, second)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  time.Time
		ok    bool
	}{
		{name: "rfc3339", input: "2025-01-15T10:30:00Z", want: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC), ok: true},
		{name: "date only", input: "2025-01-15", want: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "rss pubdate", input: "Mon, 03 Feb 2025 10:00:00 +0000", want: time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC), ok: true},
		{name: "us format", input: "1/15/2025", want: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "us format padded", input: "01/05/2025", want: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "epoch seconds", input: float64(1736899200), want: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "epoch millis", input: float64(1736899200000), want: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "garbage", input: "next tuesday", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "unsupported type", input: []string{"x"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalize.ParseDate(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}
