package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/de-tools/gbb-board/pkg/models/domain"
	"github.com/rs/zerolog"
)

const defaultTimeout = 40 * time.Second

// Fetcher retrieves raw report bytes from the bulletin board.
type Fetcher interface {
	Fetch(ctx context.Context, report domain.ReportDescriptor) ([]byte, error)
}

type fetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewFetcher creates a fetcher against the given base URL, e.g.
// "https://gbbwa.aemo.com.au/data". A zero timeout falls back to the
// default.
func NewFetcher(baseURL string, timeout time.Duration) Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (f *fetcher) Fetch(ctx context.Context, report domain.ReportDescriptor) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	fullURL := fmt.Sprintf("%s/%s", f.baseURL, url.PathEscape(report.File))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, &domain.TransportError{URL: fullURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{URL: fullURL, Err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &domain.EmptyResponseError{URL: fullURL}
	}

	// The bulletin board serves its JS app shell instead of CSV when a
	// report path is wrong or the site is degraded.
	if isHTML(body) {
		return nil, &domain.TransportError{
			URL: fullURL,
			Err: fmt.Errorf("endpoint returned an HTML page, not CSV data"),
		}
	}

	logger.Debug().
		Str("report", report.Name).
		Int("bytes", len(body)).
		Msg("report fetched")

	return body, nil
}

func isHTML(body []byte) bool {
	head := strings.ToLower(string(bytes.TrimSpace(body)))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
