// Package service wraps HTTP access to the scraping proxy that serves the
// Cineteca Nacional cartelera and film detail pages as text blocks.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
	"github.com/jjsantos01/cineteca-schedule-grid/parser"
)

const (
	scraperBaseURL     = "https://web.scraper.workers.dev/"
	cinetecaBaseURL    = "https://www.cinetecanacional.net"
	defaultUserAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5.2 Safari/605.1.15"
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
)

// Client wraps HTTP access to the scraper proxy.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration

	mu           sync.Mutex
	detailCache  map[string]cachedItem[model.MovieDetails]
	posterCache  map[string]cachedItem[string]
	trailerCache map[string]cachedItem[string]
	cacheTTL     time.Duration
	now          func() time.Time
}

// APIError is returned when the scraper proxy responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "scraper api error"
	}
	return fmt.Sprintf("scraper api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the proxy.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// NewClient creates a new API client. If httpClient is nil, a default client is used.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      scraperBaseURL,
		userAgent:    defaultUserAgent,
		maxAttempts:  defaultMaxAttempts,
		retryBase:    defaultRetryBase,
		retryCap:     defaultRetryCap,
		detailCache:  map[string]cachedItem[model.MovieDetails]{},
		posterCache:  map[string]cachedItem[string]{},
		trailerCache: map[string]cachedItem[string]{},
		cacheTTL:     detailCacheTTL,
		now:          time.Now,
	}
}

// scrapeURL builds a proxy request for one target page and CSS selector.
func (c *Client) scrapeURL(target string, selector string, extra url.Values) string {
	params := url.Values{}
	params.Set("url", target)
	params.Set("selector", selector)
	params.Set("scrape", "text")
	params.Set("pretty", "true")
	for key, values := range extra {
		for _, value := range values {
			params.Set(key, value)
		}
	}
	return c.baseURL + "?" + params.Encode()
}

type carteleraEnvelope struct {
	Data []struct {
		Text string `json:"text"`
		Href string `json:"href"`
	} `json:"data"`
}

// FetchCartelera returns the raw cartelera text blocks for one sede and
// date. An empty envelope means zero results, not an error.
func (c *Client) FetchCartelera(ctx context.Context, sedeID string, date time.Time) ([]parser.RawBlock, error) {
	if !model.IsValidSedeID(sedeID) {
		return nil, fmt.Errorf("unknown sede id %q", sedeID)
	}
	target := fmt.Sprintf("%s/sedes/cartelera.php?cinemaId=%s&dia=%s", cinetecaBaseURL, sedeID, model.DateKey(date))
	endpoint := c.scrapeURL(target, `div[class*="col-12 col-md-6"]`, nil)

	var envelope carteleraEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}

	blocks := make([]parser.RawBlock, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		blocks = append(blocks, parser.RawBlock{
			Text:   item.Text,
			FilmID: filmIDFromHref(item.Href),
		})
	}
	return blocks, nil
}

// filmIDFromHref pulls the FilmId query parameter out of a scraped detail
// link, returning "" when the link carries none.
func filmIDFromHref(href string) string {
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("FilmId")
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	maxAttempts := c.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		res, err := c.httpClient.Do(req)
		if err != nil {
			if c.shouldRetryNetworkError(err) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return fmt.Errorf("request failed: %w", err)
		}

		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
			_ = res.Body.Close()

			apiErr := &APIError{
				StatusCode: res.StatusCode,
				Status:     res.Status,
				Endpoint:   endpoint,
				Body:       strings.TrimSpace(string(snippet)),
			}
			if c.shouldRetryStatus(res.StatusCode) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return apiErr
		}

		dec := json.NewDecoder(res.Body)
		err = dec.Decode(out)
		_ = res.Body.Close()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode response from %s: %w", endpoint, err)
		}
		return nil
	}

	return errors.New("request failed after retries")
}

func (c *Client) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	delay := c.retryDelay(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := c.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}
	cap := c.retryCap
	if cap <= 0 {
		cap = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= cap/2 {
			return cap
		}
		delay *= 2
	}
	if delay > cap {
		return cap
	}
	return delay
}
