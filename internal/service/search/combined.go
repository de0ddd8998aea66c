package search

import (
	"context"
	"sync"

	"wander/internal/domain/place"
	"wander/internal/domain/provider"
)

// CombinedStrategy runs the nearby and text strategies concurrently and
// concatenates both result sets. The two sub-searches are independent
// and never block each other; deduplication across them is left to the
// filter chain.
type CombinedStrategy struct {
	nearby *NearbyStrategy
	text   *TextStrategy
}

// NewCombinedStrategy creates the combined strategy
func NewCombinedStrategy(client provider.Client) *CombinedStrategy {
	return &CombinedStrategy{
		nearby: NewNearbyStrategy(client),
		text:   NewTextStrategy(client),
	}
}

// Name returns the strategy name
func (s *CombinedStrategy) Name() string { return "both" }

// Search joins the nearby results followed by the text results
func (s *CombinedStrategy) Search(ctx context.Context, location place.Coordinate, cfg place.CategoryConfig, opts place.SearchOptions) ([]place.Place, error) {
	var (
		wg          sync.WaitGroup
		nearbyBatch []place.Place
		textBatch   []place.Place
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		nearbyBatch, _ = s.nearby.Search(ctx, location, cfg, opts)
	}()
	go func() {
		defer wg.Done()
		textBatch, _ = s.text.Search(ctx, location, cfg, opts)
	}()
	wg.Wait()

	return append(nearbyBatch, textBatch...), nil
}
