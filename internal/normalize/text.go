package normalize

import (
	"html"
	"regexp"
	"strings"

	"github.com/regpulse/regpulse/backend/internal/models"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CollapseWhitespace decodes HTML entities and squeezes runs of
// whitespace, which scraped and feed text is full of.
func CollapseWhitespace(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Truncate caps a string at max runes. Applied at normalization time so
// downstream consumers never see oversized values.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// tagKeywords maps lowercase markers in title/description text onto
// regulatory tags.
var tagKeywords = []string{
	"medical device",
	"510k",
	"510(k)",
	"pma",
	"ce marking",
	"mdr",
	"ivdr",
	"iso",
	"recall",
	"quality",
	"safety",
	"clinical",
	"diagnostic",
	"therapeutic",
	"software",
	"ai",
	"digital",
}

// Tags collects regulatory tags mentioned in the text, preserving
// keyword order and dropping duplicates.
func Tags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	seen := make(map[string]struct{})
	for _, kw := range tagKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		tag := kw
		if tag == "510(k)" {
			tag = "510k"
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

var urgentMarkers = []string{"urgent", "critical", "recall"}

// EscalatePriority raises a record to high priority when its text
// carries urgency markers; otherwise the source's priority stands.
func EscalatePriority(base models.Priority, title, description string) models.Priority {
	lower := strings.ToLower(title + " " + description)
	for _, marker := range urgentMarkers {
		if strings.Contains(lower, marker) {
			return models.PriorityHigh
		}
	}
	return base
}
