package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
	"github.com/jjsantos01/cineteca-schedule-grid/parser"
)

const detailCacheTTL = time.Hour

type cachedItem[T any] struct {
	value     T
	fetchedAt time.Time
}

type detailEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// FetchMovieDetails returns the synopsis/credits lines and the raw
// all-showtimes blob for one film. Results are cached for an hour.
func (c *Client) FetchMovieDetails(ctx context.Context, filmID string) (model.MovieDetails, error) {
	if filmID == "" {
		return model.MovieDetails{}, fmt.Errorf("empty film id")
	}
	if details, ok := cacheGet(c, c.detailCache, filmID); ok {
		return details, nil
	}

	target := fmt.Sprintf("%s/detallePelicula.php?FilmId=%s&cinemaId=000", cinetecaBaseURL, filmID)
	endpoint := c.scrapeURL(target, `p[class*="lh-1"], div[class="col-12 col-md-3 float-left small"]`, nil)

	var envelope detailEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return model.MovieDetails{}, err
	}

	details := buildMovieDetails(resultStrings(envelope.Result))
	cachePut(c, c.detailCache, filmID, details)
	return details, nil
}

// FetchMoviePoster returns the absolute poster image URL, "" when the
// detail page carries none.
func (c *Client) FetchMoviePoster(ctx context.Context, filmID string) (string, error) {
	if filmID == "" {
		return "", fmt.Errorf("empty film id")
	}
	if poster, ok := cacheGet(c, c.posterCache, filmID); ok {
		return poster, nil
	}

	target := fmt.Sprintf("%s/detallePelicula.php?FilmId=%s&cinemaId=000", cinetecaBaseURL, filmID)
	endpoint := c.scrapeURL(target, `img[class="img-fluid"]`, url.Values{
		"scrape": {"attr"},
		"attr":   {"src"},
	})

	var envelope detailEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return "", err
	}

	poster := resolveCinetecaURL(firstResultString(envelope.Result))
	cachePut(c, c.posterCache, filmID, poster)
	return poster, nil
}

// FetchMovieTrailer returns the trailer link from the detail page, ""
// when the page carries none.
func (c *Client) FetchMovieTrailer(ctx context.Context, filmID string) (string, error) {
	if filmID == "" {
		return "", fmt.Errorf("empty film id")
	}
	if trailer, ok := cacheGet(c, c.trailerCache, filmID); ok {
		return trailer, nil
	}

	target := fmt.Sprintf("%s/sedes/detallePelicula.php?FilmId=%s", cinetecaBaseURL, filmID)
	endpoint := c.scrapeURL(target, `[class="float-left ml-2"] > a`, url.Values{
		"scrape": {"attr"},
		"attr":   {"href"},
	})

	var envelope detailEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return "", err
	}

	trailer := firstResultString(envelope.Result)
	cachePut(c, c.trailerCache, filmID, trailer)
	return trailer, nil
}

// ClearDetailCaches drops all cached detail, poster and trailer entries.
// Called when the user navigates to a different date.
func (c *Client) ClearDetailCaches() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detailCache = map[string]cachedItem[model.MovieDetails]{}
	c.posterCache = map[string]cachedItem[string]{}
	c.trailerCache = map[string]cachedItem[string]{}
}

func cacheGet[T any](c *Client, cache map[string]cachedItem[T], key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := cache[key]
	if !ok || c.now().Sub(item.fetchedAt) > c.cacheTTL {
		var zero T
		return zero, false
	}
	return item.value, true
}

func cachePut[T any](c *Client, cache map[string]cachedItem[T], key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cache[key] = cachedItem[T]{value: value, fetchedAt: c.now()}
}

// buildMovieDetails splits decoded detail lines into informational lines
// and the all-showtimes blob. The blob is the line that mixes a sala
// marker with clock times.
func buildMovieDetails(lines []string) model.MovieDetails {
	details := model.MovieDetails{}
	for _, line := range lines {
		decoded := strings.TrimSpace(parser.DecodeHTMLEntities(line))
		if decoded == "" {
			continue
		}
		if details.ShowtimesText == "" && looksLikeShowtimesBlob(decoded) {
			details.ShowtimesText = decoded
			continue
		}
		details.Info = append(details.Info, decoded)
	}
	return details
}

func looksLikeShowtimesBlob(line string) bool {
	upper := strings.ToUpper(line)
	return strings.Contains(upper, "SALA ") && strings.Contains(line, ":")
}

// resultStrings flattens the proxy's result field, which may be a single
// string or an array of strings depending on how many nodes matched.
func resultStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return []string{one}
	}
	return nil
}

func firstResultString(raw json.RawMessage) string {
	values := resultStrings(raw)
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func resolveCinetecaURL(ref string) string {
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return ref
	}
	base, _ := url.Parse(cinetecaBaseURL + "/")
	return base.ResolveReference(parsed).String()
}
