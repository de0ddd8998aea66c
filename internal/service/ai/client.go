package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wander/internal/cache"
	"wander/internal/domain/place"
)

// Config tunes the analysis client
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	CacheTTL   time.Duration // validity window for cached responses
}

// DefaultConfig returns the client defaults
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		BaseDelay:  time.Second,
		CacheTTL:   5 * time.Minute,
	}
}

// Request is the payload sent to the external scoring endpoint
type Request struct {
	Location         place.Coordinate      `json:"location"`
	Places           []place.EnrichedPlace `json:"places"`
	RequestedFilters []string              `json:"requestedFilters"`
	Timestamp        time.Time             `json:"timestamp"`
}

// Response is the scoring endpoint's answer. All four fields must be
// present for the response to be trusted.
type Response struct {
	FilteredPlaces   map[string][]place.EnrichedPlace `json:"filtered_places"`
	ConfidenceScores map[string]float64               `json:"confidence_scores"`
	ProcessingTime   float64                          `json:"processing_time"`
	Timestamp        *time.Time                       `json:"timestamp"`
}

// ErrMalformedResponse marks a structurally invalid response; it is
// retried and surfaced exactly like a network failure, never silently
// accepted
var ErrMalformedResponse = fmt.Errorf("malformed analysis response")

// Client calls the external AI scoring endpoint to re-rank or group
// enriched places by requested filters. Failed calls are retried with a
// linearly increasing delay; successful responses are cached keyed by
// the query's identity.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      *cache.TTLCache
	clock      cache.Clock
	log        zerolog.Logger
}

// NewClient creates an analysis client
func NewClient(cfg Config, c *cache.TTLCache, log zerolog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      c,
		clock:      cache.SystemClock,
		log:        log,
	}
}

// WithClock substitutes the time source, for tests
func (c *Client) WithClock(clock cache.Clock) *Client {
	c.clock = clock
	return c
}

// Analyze sends the enriched places and requested filters for scoring.
// A cached response is reused while its own timestamp is inside the
// validity window.
func (c *Client) Analyze(ctx context.Context, location place.Coordinate, places []place.EnrichedPlace, filters []string) (*Response, error) {
	key := c.requestKey(location, places, filters)

	if cached, ok := c.cache.Get(key); ok {
		if resp, ok := cached.(Response); ok && c.stillValid(resp) {
			return &resp, nil
		}
	}

	resp, err := c.postWithRetry(ctx, Request{
		Location:         location,
		Places:           places,
		RequestedFilters: filters,
		Timestamp:        c.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, *resp, c.cfg.CacheTTL)
	return resp, nil
}

// postWithRetry issues up to MaxRetries attempts, sleeping
// BaseDelay × attemptNumber between failures
func (c *Client) postWithRetry(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, err := c.post(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		c.log.Debug().Err(err).Int("attempt", attempt).Msg("analysis request failed")

		if attempt == c.cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.BaseDelay * time.Duration(attempt)):
		}
	}

	return nil, fmt.Errorf("analysis failed after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

func (c *Client) post(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshaling analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error building analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("analysis endpoint returned HTTP %d", httpResp.StatusCode)
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := validate(resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// validate checks the response structure before it is trusted
func validate(resp Response) error {
	if resp.FilteredPlaces == nil {
		return fmt.Errorf("%w: missing filtered_places", ErrMalformedResponse)
	}
	if resp.ConfidenceScores == nil {
		return fmt.Errorf("%w: missing confidence_scores", ErrMalformedResponse)
	}
	if resp.ProcessingTime < 0 {
		return fmt.Errorf("%w: negative processing_time", ErrMalformedResponse)
	}
	if resp.Timestamp == nil {
		return fmt.Errorf("%w: missing timestamp", ErrMalformedResponse)
	}
	return nil
}

// stillValid checks the validity window against the response's own
// timestamp rather than the cache insertion time
func (c *Client) stillValid(resp Response) bool {
	if resp.Timestamp == nil {
		return false
	}
	return c.clock.Now().Sub(*resp.Timestamp) < c.cfg.CacheTTL
}

// requestKey builds the cache key from the place IDs, the filter names
// and the rounded anchor location
func (c *Client) requestKey(location place.Coordinate, places []place.EnrichedPlace, filters []string) string {
	ids := make([]string, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.Key())
	}
	sort.Strings(ids)

	sortedFilters := append([]string{}, filters...)
	sort.Strings(sortedFilters)

	rounded := location.Rounded(3)
	return fmt.Sprintf("ai:%s|%s|%.3f,%.3f",
		strings.Join(ids, ","), strings.Join(sortedFilters, ","),
		rounded.Latitude, rounded.Longitude)
}
