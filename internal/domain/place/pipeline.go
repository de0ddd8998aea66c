package place

import (
	"context"
	"time"
)

// SearchOptions tune a single category query
type SearchOptions struct {
	Category     string
	Method       SearchMethod
	RadiusMeters int
	Limit        int
	MinRating    float64
	Enrich       bool
	SoftFilters  []string
	Fallback     *Coordinate
	Predicate    func(Place) bool
}

// SearchStrategy produces raw candidates for a category around a location.
// Strategies are stateless; a failed provider call contributes an empty
// result set rather than aborting the search.
type SearchStrategy interface {
	// Name returns the strategy name
	Name() string

	// Search returns raw candidate places near the location
	Search(ctx context.Context, location Coordinate, cfg CategoryConfig, opts SearchOptions) ([]Place, error)
}

// FilterStrategy is one stage of the filter chain: a pure function from a
// place list to a place list
type FilterStrategy interface {
	// Name returns the stage name
	Name() string

	// Apply filters or reorders the input places
	Apply(places []Place, opts SearchOptions) []Place
}

// Resolver obtains the user's coordinate, falling back when the sensor
// is unavailable. Resolution never fails; some coordinate is always
// returned.
type Resolver interface {
	Resolve(ctx context.Context, fallback *Coordinate) Coordinate
}

// Enricher turns raw candidates into enriched records
type Enricher interface {
	// Enrich fetches details for one place; nil result means the place
	// could not be enriched and should be dropped
	Enrich(ctx context.Context, p Place, category string) (*EnrichedPlace, error)

	// EnrichAll enriches a candidate set in rate-limited batches; the
	// returned set is a strict subset of the input
	EnrichAll(ctx context.Context, places []Place, category string) []EnrichedPlace
}

// QueryRecord is a persisted trace of one completed pipeline query
type QueryRecord struct {
	ID          string
	Category    string
	Method      SearchMethod
	Location    Coordinate
	ResultCount int
	Status      string
	Error       string
	Duration    time.Duration
	CreatedAt   time.Time
}

// QueryStore persists query history for analytics
type QueryStore interface {
	SaveQuery(ctx context.Context, rec QueryRecord) error
	RecentQueries(ctx context.Context, limit int) ([]QueryRecord, error)
}
