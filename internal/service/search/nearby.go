package search

import (
	"context"
	"sync"

	"wander/internal/domain/place"
	"wander/internal/domain/provider"
)

// NearbyStrategy issues a single provider call around a point with a
// radius and type filter. For the "all" pseudo-category it fans out over
// a few well-known sub-types instead, to produce a more varied result
// set than one generic type filter would.
type NearbyStrategy struct {
	client provider.Client
}

// NewNearbyStrategy creates the nearby-only strategy
func NewNearbyStrategy(client provider.Client) *NearbyStrategy {
	return &NearbyStrategy{client: client}
}

// Name returns the strategy name
func (s *NearbyStrategy) Name() string { return "nearby" }

// Search returns raw candidates around the location. A failed provider
// call contributes an empty result set; search failures are typically
// non-transient quota or status errors, so there are no retries here.
func (s *NearbyStrategy) Search(ctx context.Context, location place.Coordinate, cfg place.CategoryConfig, opts place.SearchOptions) ([]place.Place, error) {
	if cfg.Name == "all" {
		return s.searchSubTypes(ctx, location, cfg, opts), nil
	}

	results, err := s.client.NearbySearch(ctx, location, radiusFor(cfg, opts), cfg.ProviderType)
	if err != nil {
		return []place.Place{}, nil
	}

	return toPlaces(results, s.client, location), nil
}

// searchSubTypes runs one nearby search per sub-type concurrently and
// concatenates the batches in sub-type order once all have resolved
func (s *NearbyStrategy) searchSubTypes(ctx context.Context, location place.Coordinate, cfg place.CategoryConfig, opts place.SearchOptions) []place.Place {
	radius := radiusFor(cfg, opts)
	batches := make([][]place.Place, len(place.AllSubTypes))

	var wg sync.WaitGroup
	for i, subType := range place.AllSubTypes {
		wg.Add(1)
		go func(i int, subType string) {
			defer wg.Done()

			results, err := s.client.NearbySearch(ctx, location, radius, subType)
			if err != nil {
				return
			}
			batches[i] = toPlaces(results, s.client, location)
		}(i, subType)
	}
	wg.Wait()

	var all []place.Place
	for _, batch := range batches {
		all = append(all, batch...)
	}
	return all
}
