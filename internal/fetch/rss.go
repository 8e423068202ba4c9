package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/regpulse/regpulse/backend/internal/models"
)

// MaxRSSItems caps how many <item> blocks a single fetch will take.
const MaxRSSItems = 100

// The feeds this path serves are not guaranteed well-formed XML, so
// items are pulled out structurally rather than through an XML parser.
var (
	rssItemRe  = regexp.MustCompile(`(?s)<item>(.*?)</item>`)
	rssTitleRe = regexp.MustCompile(`(?s)<title>(?:<!\[CDATA\[(.*?)\]\]>|(.*?))</title>`)
	rssLinkRe  = regexp.MustCompile(`(?s)<link>(?:<!\[CDATA\[(.*?)\]\]>|(.*?))</link>`)
	rssDescRe  = regexp.MustCompile(`(?s)<description>(?:<!\[CDATA\[(.*?)\]\]>|(.*?))</description>`)
	rssDateRe  = regexp.MustCompile(`(?s)<pubDate>(.*?)</pubDate>`)
)

// RSSFetcher retrieves a feed best-effort: any fetch problem logs and
// yields an empty list, never an error, so an RSS source cannot fail a
// sync pass.
type RSSFetcher struct {
	client *http.Client
	log    *slog.Logger
}

func NewRSSFetcher(log *slog.Logger) *RSSFetcher {
	return &RSSFetcher{client: newClient(), log: log}
}

func (f *RSSFetcher) Fetch(ctx context.Context, src models.SourceDescriptor) ([]models.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, src.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		f.log.Warn("rss request build failed", slog.String("source", src.ID), slog.Any("err", err))
		return nil, nil
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn("rss fetch failed", slog.String("source", src.ID), slog.Any("err", err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		f.log.Warn("rss fetch bad status",
			slog.String("source", src.ID),
			slog.Int("status", resp.StatusCode),
		)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.log.Warn("rss body read failed", slog.String("source", src.ID), slog.Any("err", err))
		return nil, nil
	}
	return parseRSSItems(string(body)), nil
}

// parseRSSItems extracts up to MaxRSSItems item blocks from the feed
// body, stripping CDATA wrapping where present.
func parseRSSItems(body string) []models.RawRecord {
	matches := rssItemRe.FindAllStringSubmatch(body, MaxRSSItems)
	if len(matches) == 0 {
		return nil
	}
	records := make([]models.RawRecord, 0, len(matches))
	for _, m := range matches {
		item := m[1]
		title := firstGroup(rssTitleRe, item)
		if title == "" {
			title = "RSS Item"
		}
		rec := models.RawRecord{
			"title":       title,
			"link":        firstGroup(rssLinkRe, item),
			"description": firstGroup(rssDescRe, item),
		}
		if date := firstGroup(rssDateRe, item); date != "" {
			rec["pubDate"] = date
		}
		records = append(records, rec)
	}
	return records
}

// firstGroup returns the first non-empty capture group of the first
// match, trimmed.
func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g = strings.TrimSpace(g); g != "" {
			return g
		}
	}
	return ""
}
