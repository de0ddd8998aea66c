package search

import (
	"github.com/google/uuid"

	"wander/internal/domain/place"
	"wander/internal/domain/provider"
)

// photoWidth is the width requested when turning a photo reference into
// a URL for the card UI
const photoWidth = 800

// StrategyFor returns the search strategy implementing the given method
func StrategyFor(method place.SearchMethod, client provider.Client) place.SearchStrategy {
	switch method {
	case place.MethodNearby:
		return NewNearbyStrategy(client)
	case place.MethodText:
		return NewTextStrategy(client)
	default:
		return NewCombinedStrategy(client)
	}
}

// toPlaces converts raw provider results into candidate places. Only the
// first photo reference is kept at this point; multi-photo categories
// fetch the rest during enrichment.
func toPlaces(results []provider.SearchResult, client provider.Client, origin place.Coordinate) []place.Place {
	places := make([]place.Place, 0, len(results))
	for _, r := range results {
		p := place.Place{
			ID:       uuid.New().String(),
			PlaceID:  r.PlaceID,
			Name:     r.Name,
			Location: r.Location,
			Rating:   r.Rating,
			Vicinity: r.Vicinity,
			Types:    r.Types,
		}
		if p.Location != (place.Coordinate{}) {
			p.DistanceMeters = origin.DistanceTo(p.Location)
		}
		if p.Vicinity == "" {
			p.Vicinity = r.FormattedAddress
		}
		if len(r.PhotoReferences) > 0 {
			p.PhotoURL = client.PhotoURL(r.PhotoReferences[0], photoWidth)
		}
		places = append(places, p)
	}
	return places
}

// withinRadius drops candidates more than radiusMeters from the origin.
// A candidate with no coordinate is kept; missing geometry is not
// evidence the place is far away.
func withinRadius(places []place.Place, radiusMeters int) []place.Place {
	if radiusMeters <= 0 {
		return places
	}
	out := make([]place.Place, 0, len(places))
	for _, p := range places {
		if p.Location != (place.Coordinate{}) && p.DistanceMeters > float64(radiusMeters) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// radiusFor picks the query radius: explicit option first, then the
// category default
func radiusFor(cfg place.CategoryConfig, opts place.SearchOptions) int {
	if opts.RadiusMeters > 0 {
		return opts.RadiusMeters
	}
	return cfg.RadiusMeters
}
