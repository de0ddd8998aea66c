package enrich

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wander/internal/cache"
	"wander/internal/domain/place"
	"wander/internal/domain/provider"
)

// commonFields is the detail field set every category requests
var commonFields = []string{
	"place_id", "name", "formatted_address", "vicinity", "geometry",
	"rating", "user_ratings_total", "types", "photos", "reviews",
	"opening_hours", "utc_offset", "business_status", "editorial_summary",
	"formatted_phone_number", "international_phone_number", "website",
	"wheelchair_accessible_entrance",
}

// extendedFields is the superset hotels and restaurants request on top
// of the common set
var extendedFields = []string{
	"price_level", "url", "delivery", "dine_in", "takeout", "reservable",
	"serves_breakfast", "serves_lunch", "serves_dinner", "serves_beer",
	"serves_wine", "serves_vegetarian_food",
}

// Config tunes the enrichment service
type Config struct {
	CacheTTL     time.Duration // per-place details cache validity
	MaxCacheSize int           // FIFO-evicted cap on cached records
	BatchSize    int           // detail lookups per batch
	BatchDelay   time.Duration // pause between batches
	Language     string
	Region       string
}

// DefaultConfig returns the enrichment defaults: one-hour cache and a
// batch cadence that stays under roughly ten requests per second
func DefaultConfig() Config {
	return Config{
		CacheTTL:     time.Hour,
		MaxCacheSize: 500,
		BatchSize:    10,
		BatchDelay:   time.Second,
		Language:     "es",
		Region:       "mx",
	}
}

// Service implements place.Enricher: it fetches place details, infers
// missing price and amenity data and normalizes everything into
// EnrichedPlace records, batching lookups to respect the provider's
// rate ceiling and caching results.
type Service struct {
	client provider.Client
	cache  *cache.TTLCache
	clock  cache.Clock
	cfg    Config
	log    zerolog.Logger
}

// NewService creates an enrichment service
func NewService(client provider.Client, c *cache.TTLCache, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		cache:  c,
		clock:  cache.SystemClock,
		cfg:    cfg,
		log:    log,
	}
}

// WithClock substitutes the time source, for tests
func (s *Service) WithClock(clock cache.Clock) *Service {
	s.clock = clock
	return s
}

// Enrich returns the enriched record for one place. A cache hit within
// the TTL short-circuits the provider; a provider failure yields a nil
// record and an error, which batch callers drop without aborting.
func (s *Service) Enrich(ctx context.Context, p place.Place, category string) (*place.EnrichedPlace, error) {
	key := cacheKey(p.PlaceID, category)
	if p.PlaceID != "" {
		if cached, ok := s.cache.Get(key); ok {
			if ep, ok := cached.(place.EnrichedPlace); ok {
				return &ep, nil
			}
		}
	}

	if p.PlaceID == "" {
		return nil, fmt.Errorf("place %q has no place_id to enrich", p.Name)
	}

	details, err := s.client.PlaceDetails(ctx, p.PlaceID, fieldsFor(category), s.cfg.Language, s.cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("details lookup for %s: %w", p.PlaceID, err)
	}

	cfg, _ := place.CategoryFor(category)
	ep := normalize(p, details, category, s.clock.Now(), s.client.PhotoURL, cfg.MultiPhoto)

	s.cache.Set(key, ep, s.cfg.CacheTTL)
	return &ep, nil
}

// EnrichAll enriches the candidate set in fixed-size batches. Each
// batch's lookups run concurrently and are joined all-settled; only
// fulfilled results make it into the output, so the returned set is a
// strict subset of the input. Batch N+1 does not start until batch N has
// settled and the inter-batch delay has elapsed.
func (s *Service) EnrichAll(ctx context.Context, places []place.Place, category string) []place.EnrichedPlace {
	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	var out []place.EnrichedPlace
	for start := 0; start < len(places); start += batchSize {
		end := start + batchSize
		if end > len(places) {
			end = len(places)
		}
		batch := places[start:end]

		settled := make([]*place.EnrichedPlace, len(batch))
		var wg sync.WaitGroup
		for i, p := range batch {
			wg.Add(1)
			go func(i int, p place.Place) {
				defer wg.Done()

				ep, err := s.Enrich(ctx, p, category)
				if err != nil {
					s.log.Debug().Err(err).Str("place", p.Name).Msg("dropping place from enriched set")
					return
				}
				settled[i] = ep
			}(i, p)
		}
		wg.Wait()

		for _, ep := range settled {
			if ep != nil {
				out = append(out, *ep)
			}
		}

		// Rate-limiting serialization point between batches
		if end < len(places) && s.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(s.cfg.BatchDelay):
			}
		}
	}

	return out
}

func cacheKey(placeID, category string) string {
	return "enrich:" + placeID + ":" + category
}

// fieldsFor returns the category-specific detail field set
func fieldsFor(category string) []string {
	if category == "hotel" || category == "restaurant" {
		return append(append([]string{}, commonFields...), extendedFields...)
	}
	return commonFields
}
