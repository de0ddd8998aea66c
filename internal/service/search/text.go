package search

import (
	"context"
	"sync"

	"wander/internal/domain/place"
	"wander/internal/domain/provider"
)

// localitySuffix is appended to each configured query term to bias the
// text search toward the user's surroundings
const localitySuffix = " near me"

// TextStrategy issues one provider call per configured query term and
// concatenates all result batches
type TextStrategy struct {
	client provider.Client
}

// NewTextStrategy creates the text-only strategy
func NewTextStrategy(client provider.Client) *TextStrategy {
	return &TextStrategy{client: client}
}

// Name returns the strategy name
func (s *TextStrategy) Name() string { return "text" }

// Search fans out one call per query term and joins on all of them.
// Batches are concatenated in the order the terms were issued; a failed
// call contributes an empty batch.
func (s *TextStrategy) Search(ctx context.Context, location place.Coordinate, cfg place.CategoryConfig, opts place.SearchOptions) ([]place.Place, error) {
	queries := cfg.Queries
	if cfg.Name == "all" && len(queries) > place.MaxAllTextQueries {
		queries = queries[:place.MaxAllTextQueries]
	}

	radius := radiusFor(cfg, opts)
	batches := make([][]place.Place, len(queries))

	var wg sync.WaitGroup
	for i, term := range queries {
		wg.Add(1)
		go func(i int, term string) {
			defer wg.Done()

			results, err := s.client.TextSearch(ctx, term+localitySuffix, &location, radius, cfg.ProviderType)
			if err != nil {
				return
			}
			batches[i] = toPlaces(results, s.client, location)
		}(i, term)
	}
	wg.Wait()

	var all []place.Place
	for _, batch := range batches {
		all = append(all, batch...)
	}

	// The provider treats the text-search radius as a bias, not a bound,
	// so far-flung matches come back anyway; cut them geodesically here
	return withinRadius(all, radius), nil
}
