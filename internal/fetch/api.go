package fetch

import (
	"context"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/regpulse/regpulse/backend/internal/models"
)

const apiUserAgent = "RegPulse-Dispatcher/1.0"

// APIFetcher issues a GET with the descriptor's static query parameters
// and descends the declared result path into the JSON body.
type APIFetcher struct {
	client *http.Client
}

func NewAPIFetcher() *APIFetcher {
	return &APIFetcher{client: newClient()}
}

func (f *APIFetcher) Fetch(ctx context.Context, src models.SourceDescriptor) ([]models.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, src.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Endpoint(), nil)
	if err != nil {
		return nil, &Error{SourceID: src.ID, Err: err}
	}
	req.Header.Set("User-Agent", apiUserAgent)
	req.Header.Set("Accept", "application/json")

	if src.API != nil && len(src.API.Params) > 0 {
		q := req.URL.Query()
		for k, v := range src.API.Params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{SourceID: src.ID, Err: err}
	}

	var path string
	if src.API != nil {
		path = src.API.ResultPath
	}
	return recordsAtPath(body, path), nil
}

// recordsAtPath descends the dotted path into the body and returns
// whatever lives there as a record list, wrapping a lone object or
// scalar into a one-element list. A missing path yields an empty list.
func recordsAtPath(body []byte, path string) []models.RawRecord {
	var res gjson.Result
	if path == "" {
		res = gjson.ParseBytes(body)
	} else {
		res = gjson.GetBytes(body, path)
	}
	if !res.Exists() && path != "" {
		return nil
	}

	if res.IsArray() {
		elems := res.Array()
		records := make([]models.RawRecord, 0, len(elems))
		for _, el := range elems {
			records = append(records, toRecord(el))
		}
		return records
	}
	return []models.RawRecord{toRecord(res)}
}

func toRecord(res gjson.Result) models.RawRecord {
	if m, ok := res.Value().(map[string]any); ok {
		return models.RawRecord(m)
	}
	return models.RawRecord{"value": res.Value()}
}
