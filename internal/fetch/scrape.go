package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/regpulse/regpulse/backend/internal/models"
)

// Upstream portals routinely refuse non-browser agents.
const scrapeUserAgent = "Mozilla/5.0 (compatible; RegPulseBot/1.0)"

// ScrapeFetcher pulls article elements off an HTML page using the
// descriptor's CSS selectors. A source without scrape config yields an
// empty list: that is a configuration gap, not a runtime failure.
type ScrapeFetcher struct {
	client *http.Client
}

func NewScrapeFetcher() *ScrapeFetcher {
	return &ScrapeFetcher{client: newClient()}
}

func (f *ScrapeFetcher) Fetch(ctx context.Context, src models.SourceDescriptor) ([]models.RawRecord, error) {
	cfg := src.Scrape
	if cfg == nil || cfg.Article == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, src.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, &Error{SourceID: src.ID, Err: err}
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{SourceID: src.ID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &Error{
			SourceID:   src.ID,
			StatusCode: resp.StatusCode,
			Err:        errUnexpectedStatus,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &Error{SourceID: src.ID, Err: err}
	}

	base, _ := url.Parse(src.URL)
	var records []models.RawRecord
	doc.Find(cfg.Article).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(cfg.Title).First().Text())
		if title == "" {
			// Template rows without a headline are noise, not errors.
			return
		}
		rec := models.RawRecord{
			"title":  title,
			"source": src.Name,
		}
		if cfg.Date != "" {
			if date := strings.TrimSpace(sel.Find(cfg.Date).First().Text()); date != "" {
				rec["date"] = date
			}
		}
		if cfg.Link != "" {
			if href, ok := sel.Find(cfg.Link).First().Attr("href"); ok {
				rec["url"] = resolveLink(base, strings.TrimSpace(href))
			}
		}
		records = append(records, rec)
	})
	return records, nil
}

// resolveLink makes relative hrefs absolute against the page URL.
func resolveLink(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	u, err := base.Parse(href)
	if err != nil {
		return href
	}
	return u.String()
}
