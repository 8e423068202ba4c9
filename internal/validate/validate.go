// Package validate gates normalized records on title quality. It is a
// heuristic filter for templated landing-page text scraped in error,
// not a content classifier; false positives and negatives are expected.
package validate

import (
	"strings"
	"unicode/utf8"

	"github.com/regpulse/regpulse/backend/internal/models"
)

// genericTitles is boilerplate that shows up when a scraper lands on a
// template page instead of real content.
var genericTitles = []string{
	"medical device approval",
	"device clearance",
	"regulatory update",
	"guidance document",
}

// nearMatchSlack is how much longer than the boilerplate phrase a title
// may be and still count as generic.
const nearMatchSlack = 10

// IsAcceptable reports whether a normalized record should be persisted.
func IsAcceptable(rec *models.NormalizedRecord) bool {
	if rec == nil {
		return false
	}
	title := strings.TrimSpace(rec.Title)
	if utf8.RuneCountInString(title) < 3 {
		return false
	}

	lower := strings.ToLower(title)
	if lower == "test" {
		return false
	}

	// A generic approval headline with no description is almost
	// certainly a stub page.
	if strings.Contains(lower, "medical device approval") && rec.Description == "" {
		return false
	}

	for _, generic := range genericTitles {
		if lower == generic {
			return false
		}
		if strings.Contains(lower, generic) && utf8.RuneCountInString(lower) < len(generic)+nearMatchSlack {
			return false
		}
	}
	return true
}
