// Package normalize maps source-shaped raw payloads into the canonical
// record. Everything here is pure: the same raw record and descriptor
// always produce the same output, apart from the current-time fallback
// for unparseable dates.
package normalize

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/regpulse/regpulse/backend/internal/models"
)

// MinTitleLen is the floor below which a record is dropped outright.
const MinTitleLen = 5

// Ordered candidate fields per extraction concern. First present wins.
var (
	titleFields   = []string{"product_name", "device_name", "name", "subject", "headline"}
	descFields    = []string{"description", "summary", "statement", "indication_for_use", "purpose"}
	contentFields = []string{"content", "full_text", "body", "text", "details"}
	dateFields    = []string{"published_at", "decision_date", "date_received", "pubDate", "created_at", "updated_at", "date"}
	urlFields     = []string{"url", "link", "document_url", "pdf_url", "web_url"}
	classFields   = []string{"device_class", "product_code", "regulation_number"}
)

// Record maps a raw record into the canonical shape, or returns nil
// when no usable title can be produced. A nil return is a drop, not an
// error.
func Record(raw models.RawRecord, src models.SourceDescriptor) *models.NormalizedRecord {
	if raw == nil {
		return nil
	}

	title := extractTitle(raw, src)
	if utf8.RuneCountInString(title) < MinTitleLen {
		return nil
	}

	description := CollapseWhitespace(StringField(raw, descFields...))
	content := StringField(raw, contentFields...)
	if content == "" {
		content = description
	}

	publishedAt, ok := extractPublishedAt(raw)
	if !ok {
		// An unparseable date still leaves an informative record.
		publishedAt = time.Now().UTC()
	}

	documentURL := extractDocumentURL(raw)
	if documentURL == "" {
		documentURL = src.URL
	}

	return &models.NormalizedRecord{
		Title:         Truncate(title, models.MaxTitleLen),
		Description:   Truncate(description, models.MaxDescriptionLen),
		Content:       content,
		PublishedAt:   publishedAt,
		DocumentURL:   documentURL,
		SourceType:    src.Type,
		Priority:      EscalatePriority(src.Priority, title, description),
		Region:        src.Region,
		DeviceClasses: extractDeviceClasses(raw),
		Tags:          Tags(title + " " + description),
		RawData:       raw,
	}
}

// extractTitle prefers an explicit title, then applies FDA composition
// rules for FDA sources, then falls through the generic cascade.
func extractTitle(raw models.RawRecord, src models.SourceDescriptor) string {
	if t := StringField(raw, "title"); t != "" {
		return CollapseWhitespace(t)
	}
	if strings.Contains(src.ID, "fda") {
		if v := StringField(raw, "device_name"); v != "" {
			return "FDA 510(k): " + CollapseWhitespace(v)
		}
		if v := StringField(raw, "product_name"); v != "" {
			return "FDA PMA: " + CollapseWhitespace(v)
		}
	}
	return CollapseWhitespace(StringField(raw, titleFields...))
}

// StringField returns the first candidate field holding a non-empty
// string, trimmed.
func StringField(raw models.RawRecord, fields ...string) string {
	for _, field := range fields {
		if v, ok := raw[field].(string); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func extractPublishedAt(raw models.RawRecord) (time.Time, bool) {
	for _, field := range dateFields {
		v, present := raw[field]
		if !present || v == nil {
			continue
		}
		if ts, ok := ParseDate(v); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

var usDateRe = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)

// dateLayouts is the native-parse cascade tried before the MM/DD/YYYY
// and epoch fallbacks. RFC1123 variants cover RSS pubDate.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006",
}

// ParseDate turns a raw date value into a UTC timestamp. It never
// errors; a false return means the caller should fall back.
func ParseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), true
	case string:
		raw := strings.TrimSpace(d)
		if raw == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts.UTC(), true
			}
		}
		if m := usDateRe.FindStringSubmatch(raw); m != nil {
			if ts, err := time.Parse("1/2/2006", m[1]+"/"+m[2]+"/"+m[3]); err == nil {
				return ts.UTC(), true
			}
		}
		return time.Time{}, false
	case float64:
		return epochTime(int64(d)), true
	case int:
		return epochTime(int64(d)), true
	case int64:
		return epochTime(d), true
	default:
		return time.Time{}, false
	}
}

// epochTime treats values below 1e10 as seconds, above as milliseconds.
func epochTime(n int64) time.Time {
	if n < 10_000_000_000 {
		return time.Unix(n, 0).UTC()
	}
	return time.UnixMilli(n).UTC()
}

// extractDocumentURL accepts only values that look like absolute
// HTTP(S) URLs.
func extractDocumentURL(raw models.RawRecord) string {
	for _, field := range urlFields {
		v, ok := raw[field].(string)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return v
		}
	}
	return ""
}

func extractDeviceClasses(raw models.RawRecord) []string {
	var classes []string
	for _, field := range classFields {
		if v, ok := raw[field].(string); ok {
			if v = strings.TrimSpace(v); v != "" {
				classes = append(classes, v)
			}
		}
	}
	return classes
}
