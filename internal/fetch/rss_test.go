package fetch_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/regpulse/regpulse/backend/internal/fetch"
	"github.com/regpulse/regpulse/backend/internal/models"
	"github.com/stretchr/testify/require"
)

func rssSource(feedURL string) models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:   "test-rss",
		Name: "Test Feed",
		Type: models.SourceTypeRSS,
		URL:  feedURL,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRSSFetchParsesItems(t *testing.T) {
	feed := `<?xml version="1.0"?><rss><channel>
<item>
  <title><![CDATA[Recall: Infusion Pumps]]></title>
  <link>https://feed.example.org/recall</link>
  <description><![CDATA[Class I recall announced.]]></description>
  <pubDate>Mon, 03 Feb 2025 10:00:00 +0000</pubDate>
</item>
<item>
  <title>Plain Title</title>
  <link>https://feed.example.org/plain</link>
  <description>No CDATA here.</description>
</item>
</channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	f := fetch.NewRSSFetcher(discardLogger())
	records, err := f.Fetch(context.Background(), rssSource(srv.URL))
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "Recall: Infusion Pumps", records[0]["title"])
	require.Equal(t, "https://feed.example.org/recall", records[0]["link"])
	require.Equal(t, "Class I recall announced.", records[0]["description"])
	require.Equal(t, "Mon, 03 Feb 2025 10:00:00 +0000", records[0]["pubDate"])

	require.Equal(t, "Plain Title", records[1]["title"])
	_, hasDate := records[1]["pubDate"]
	require.False(t, hasDate)
}

func TestRSSFetchCapsItemCount(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<rss><channel>`)
	for i := 0; i < 150; i++ {
		fmt.Fprintf(&b, "<item><title>Item %d</title><link>https://x/%d</link><description>d</description></item>", i, i)
	}
	b.WriteString(`</channel></rss>`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(b.String()))
	}))
	defer srv.Close()

	f := fetch.NewRSSFetcher(discardLogger())
	records, err := f.Fetch(context.Background(), rssSource(srv.URL))
	require.NoError(t, err)
	require.Len(t, records, fetch.MaxRSSItems)
	require.Equal(t, "Item 0", records[0]["title"])
}

func TestRSSFetchUntitledItemGetsPlaceholder(t *testing.T) {
	feed := `<rss><channel><item><link>https://x/1</link><description>d</description></item></channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	f := fetch.NewRSSFetcher(discardLogger())
	records, err := f.Fetch(context.Background(), rssSource(srv.URL))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "RSS Item", records[0]["title"])
}

func TestRSSFetchNeverErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := fetch.NewRSSFetcher(discardLogger())

	records, err := f.Fetch(context.Background(), rssSource(srv.URL))
	require.NoError(t, err)
	require.Empty(t, records)

	// Unreachable host: still no error.
	records, err = f.Fetch(context.Background(), rssSource("http://127.0.0.1:1"))
	require.NoError(t, err)
	require.Empty(t, records)
}
