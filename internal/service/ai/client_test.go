package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wander/internal/cache"
	"wander/internal/domain/place"
)

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:   endpoint,
		Timeout:    time.Second,
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		CacheTTL:   5 * time.Minute,
	}
}

func goodResponse() map[string]interface{} {
	return map[string]interface{}{
		"filtered_places":   map[string][]place.EnrichedPlace{"spa": {}},
		"confidence_scores": map[string]float64{"spa": 0.9},
		"processing_time":   0.42,
		"timestamp":         time.Now().UTC(),
	}
}

func somePlaces() []place.EnrichedPlace {
	r := 4.5
	return []place.EnrichedPlace{
		{Place: place.Place{PlaceID: "p1", Name: "Spa Palace", Rating: &r}},
	}
}

func TestAnalyze_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"spa"}, req.RequestedFilters)

		json.NewEncoder(w).Encode(goodResponse())
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), cache.New(), zerolog.Nop())

	resp, err := c.Analyze(context.Background(), place.Coordinate{Latitude: 21.16, Longitude: -86.85}, somePlaces(), []string{"spa"})

	require.NoError(t, err)
	assert.Contains(t, resp.FilteredPlaces, "spa")
	assert.InDelta(t, 0.9, resp.ConfidenceScores["spa"], 0.001)
}

func TestAnalyze_ExactlyMaxRetriesAttempts(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), cache.New(), zerolog.Nop())

	_, err := c.Analyze(context.Background(), place.Coordinate{}, somePlaces(), []string{"spa"})

	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts), "no fourth attempt after the cap")
}

func TestAnalyze_RecoversOnLaterAttempt(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(goodResponse())
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), cache.New(), zerolog.Nop())

	resp, err := c.Analyze(context.Background(), place.Coordinate{}, somePlaces(), []string{"spa"})

	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestAnalyze_MalformedResponseRetriedLikeFailure(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		// Missing confidence_scores and timestamp
		w.Write([]byte(`{"filtered_places": {}, "processing_time": 0.1}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), cache.New(), zerolog.Nop())

	_, err := c.Analyze(context.Background(), place.Coordinate{}, somePlaces(), []string{"spa"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestAnalyze_CachedResponseReused(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		json.NewEncoder(w).Encode(goodResponse())
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), cache.New(), zerolog.Nop())
	loc := place.Coordinate{Latitude: 21.16, Longitude: -86.85}

	_, err := c.Analyze(context.Background(), loc, somePlaces(), []string{"spa"})
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), loc, somePlaces(), []string{"spa"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestAnalyze_DifferentFiltersMissCache(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		json.NewEncoder(w).Encode(goodResponse())
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), cache.New(), zerolog.Nop())
	loc := place.Coordinate{Latitude: 21.16, Longitude: -86.85}

	_, err := c.Analyze(context.Background(), loc, somePlaces(), []string{"spa"})
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), loc, somePlaces(), []string{"surf"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestAnalyze_StaleResponseTimestampForcesRefetch(t *testing.T) {
	var attempts int32
	stale := time.Now().Add(-10 * time.Minute).UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		resp := goodResponse()
		resp["timestamp"] = stale
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), cache.New(), zerolog.Nop())
	loc := place.Coordinate{Latitude: 21.16, Longitude: -86.85}

	_, err := c.Analyze(context.Background(), loc, somePlaces(), []string{"spa"})
	require.NoError(t, err)
	// The cached entry's own timestamp is already outside the validity
	// window, so the second call re-posts
	_, err = c.Analyze(context.Background(), loc, somePlaces(), []string{"spa"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}
