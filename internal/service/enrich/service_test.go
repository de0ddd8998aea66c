package enrich

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wander/internal/cache"
	"wander/internal/domain/place"
	"wander/internal/domain/provider"
)

type fakeDetailsClient struct {
	mu      sync.Mutex
	details map[string]*provider.DetailsResult
	fail    map[string]bool
	calls   int
}

func (f *fakeDetailsClient) NearbySearch(ctx context.Context, loc place.Coordinate, radius int, placeType string) ([]provider.SearchResult, error) {
	return nil, nil
}

func (f *fakeDetailsClient) TextSearch(ctx context.Context, query string, loc *place.Coordinate, radius int, placeType string) ([]provider.SearchResult, error) {
	return nil, nil
}

func (f *fakeDetailsClient) PlaceDetails(ctx context.Context, placeID string, fields []string, language, region string) (*provider.DetailsResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[placeID] {
		return nil, fmt.Errorf("%w: UNKNOWN_ERROR", provider.ErrBadStatus)
	}
	d, ok := f.details[placeID]
	if !ok {
		return nil, fmt.Errorf("%w: ZERO_RESULTS", provider.ErrBadStatus)
	}
	return d, nil
}

func (f *fakeDetailsClient) PhotoURL(reference string, maxWidth int) string {
	return "https://photos.test/" + reference
}

func newService(client provider.Client) *Service {
	cfg := DefaultConfig()
	cfg.BatchSize = 2
	cfg.BatchDelay = 0
	return NewService(client, cache.New(cache.WithMaxSize(cfg.MaxCacheSize)), cfg, zerolog.Nop())
}

func candidate(placeID, name string) place.Place {
	return place.Place{ID: "id-" + placeID, PlaceID: placeID, Name: name}
}

func details(placeID, name string) *provider.DetailsResult {
	rating := 4.4
	total := 120
	return &provider.DetailsResult{
		PlaceID:          placeID,
		Name:             name,
		FormattedAddress: "Blvd. Kukulcan Km 9, Cancún",
		Website:          "https://example.test",
		Rating:           &rating,
		UserRatingsTotal: &total,
		Types:            []string{"lodging"},
	}
}

func TestEnrich_NormalizesDetails(t *testing.T) {
	client := &fakeDetailsClient{details: map[string]*provider.DetailsResult{
		"p1": details("p1", "Hotel Maya"),
	}}
	s := newService(client)

	ep, err := s.Enrich(context.Background(), candidate("p1", "Hotel Maya"), "hotel")

	require.NoError(t, err)
	assert.Equal(t, "Hotel Maya", ep.Name)
	assert.Equal(t, "Blvd. Kukulcan Km 9, Cancún", ep.FormattedAddress)
	assert.Equal(t, "https://example.test", ep.Contact.Website)
	assert.Equal(t, 120, ep.TotalReviews)
	assert.Contains(t, ep.Amenities, "Accommodation")
}

func TestEnrich_WeekdayTextAloneLeavesOpenNowUnknown(t *testing.T) {
	d := details("p1", "Hotel Maya")
	d.WeekdayText = []string{"Monday: 9:00 AM – 6:00 PM"}
	client := &fakeDetailsClient{details: map[string]*provider.DetailsResult{"p1": d}}
	s := newService(client)

	ep, err := s.Enrich(context.Background(), candidate("p1", "Hotel Maya"), "hotel")

	require.NoError(t, err)
	require.NotNil(t, ep.Hours)
	assert.Equal(t, d.WeekdayText, ep.Hours.WeekdayText)
	assert.Nil(t, ep.Hours.OpenNow, "no parseable periods is no evidence of being closed")
}

func TestEnrich_RoundTheClockPeriodReadsOpen(t *testing.T) {
	d := details("p1", "Hotel Maya")
	d.OpeningPeriods = []place.OpeningPeriod{{Day: 0, OpenTime: 0, CloseTime: -1}}
	client := &fakeDetailsClient{details: map[string]*provider.DetailsResult{"p1": d}}
	s := newService(client)

	ep, err := s.Enrich(context.Background(), candidate("p1", "Hotel Maya"), "hotel")

	require.NoError(t, err)
	require.NotNil(t, ep.Hours)
	require.NotNil(t, ep.Hours.OpenNow)
	assert.True(t, *ep.Hours.OpenNow)
}

func TestEnrich_CacheHitSkipsProvider(t *testing.T) {
	client := &fakeDetailsClient{details: map[string]*provider.DetailsResult{
		"p1": details("p1", "Hotel Maya"),
	}}
	s := newService(client)

	_, err := s.Enrich(context.Background(), candidate("p1", "Hotel Maya"), "hotel")
	require.NoError(t, err)
	_, err = s.Enrich(context.Background(), candidate("p1", "Hotel Maya"), "hotel")
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
}

func TestEnrich_CacheKeyIncludesCategory(t *testing.T) {
	client := &fakeDetailsClient{details: map[string]*provider.DetailsResult{
		"p1": details("p1", "Hotel Maya"),
	}}
	s := newService(client)

	_, err := s.Enrich(context.Background(), candidate("p1", "Hotel Maya"), "hotel")
	require.NoError(t, err)
	_, err = s.Enrich(context.Background(), candidate("p1", "Hotel Maya"), "attraction")
	require.NoError(t, err)

	assert.Equal(t, 2, client.calls, "different categories request different field sets")
}

func TestEnrich_NeverDowngradesExistingFields(t *testing.T) {
	rating := 4.9
	raw := place.Place{
		ID:       "id-p1",
		PlaceID:  "p1",
		Name:     "Playa Delfines",
		PhotoURL: "https://photos.test/original",
		Rating:   &rating,
		Vicinity: "Zona Hotelera",
	}
	// Details payload re-supplies nothing useful
	client := &fakeDetailsClient{details: map[string]*provider.DetailsResult{
		"p1": {PlaceID: "p1"},
	}}
	s := newService(client)

	ep, err := s.Enrich(context.Background(), raw, "beach")

	require.NoError(t, err)
	assert.Equal(t, "Playa Delfines", ep.Name)
	assert.Equal(t, "https://photos.test/original", ep.PhotoURL)
	assert.Equal(t, 4.9, *ep.Rating)
	assert.Equal(t, "Zona Hotelera", ep.Vicinity)
}

func TestEnrich_HotelWithoutPriceGetsInference(t *testing.T) {
	d := details("p1", "Luxury Grand Resort & Spa")
	rating := 4.7
	total := 250
	d.Rating = &rating
	d.UserRatingsTotal = &total
	client := &fakeDetailsClient{details: map[string]*provider.DetailsResult{"p1": d}}
	s := newService(client)

	ep, err := s.Enrich(context.Background(), candidate("p1", "Luxury Grand Resort & Spa"), "hotel")

	require.NoError(t, err)
	require.NotNil(t, ep.Price.Level)
	assert.Equal(t, 4, *ep.Price.Level)
	assert.Equal(t, "Lujo", ep.Price.Description)
	assert.True(t, ep.Price.IsInferred)
}

func TestEnrich_ProviderPriceWins(t *testing.T) {
	d := details("p1", "Luxury Grand Resort & Spa")
	level := 2
	d.PriceLevel = &level
	client := &fakeDetailsClient{details: map[string]*provider.DetailsResult{"p1": d}}
	s := newService(client)

	ep, err := s.Enrich(context.Background(), candidate("p1", "Luxury Grand Resort & Spa"), "hotel")

	require.NoError(t, err)
	require.NotNil(t, ep.Price.Level)
	assert.Equal(t, 2, *ep.Price.Level)
	assert.False(t, ep.Price.IsInferred)
}

func TestEnrichAll_DropsFailuresKeepsOrder(t *testing.T) {
	client := &fakeDetailsClient{
		details: map[string]*provider.DetailsResult{
			"p1": details("p1", "Hotel Maya"),
			"p3": details("p3", "Hotel Sol"),
			"p4": details("p4", "Hotel Luna"),
		},
		fail: map[string]bool{"p2": true},
	}
	s := newService(client)

	in := []place.Place{
		candidate("p1", "Hotel Maya"),
		candidate("p2", "Hotel Roto"),
		candidate("p3", "Hotel Sol"),
		candidate("p4", "Hotel Luna"),
	}

	out := s.EnrichAll(context.Background(), in, "hotel")

	require.Len(t, out, 3)
	assert.Equal(t, "Hotel Maya", out[0].Name)
	assert.Equal(t, "Hotel Sol", out[1].Name)
	assert.Equal(t, "Hotel Luna", out[2].Name)
}

func TestEnrichAll_EmptyInput(t *testing.T) {
	s := newService(&fakeDetailsClient{})

	out := s.EnrichAll(context.Background(), nil, "hotel")

	assert.Empty(t, out)
}

func TestEnrichAll_ContextCancelStopsBetweenBatches(t *testing.T) {
	client := &fakeDetailsClient{details: map[string]*provider.DetailsResult{
		"p1": details("p1", "A"), "p2": details("p2", "B"),
		"p3": details("p3", "C"), "p4": details("p4", "D"),
	}}
	cfg := DefaultConfig()
	cfg.BatchSize = 2
	cfg.BatchDelay = time.Minute
	s := NewService(client, cache.New(), cfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := []place.Place{
		candidate("p1", "A"), candidate("p2", "B"),
		candidate("p3", "C"), candidate("p4", "D"),
	}

	out := s.EnrichAll(ctx, in, "hotel")

	// First batch settles, the delay is abandoned, the second never runs
	assert.Len(t, out, 2)
}
