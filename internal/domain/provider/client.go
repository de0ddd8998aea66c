package provider

import (
	"context"
	"errors"

	"wander/internal/domain/place"
)

// Status codes returned by the place-data provider. Anything other than
// StatusOK is treated as "no results" by the search layer and as an
// enrichment failure by the enrichment service.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusRequestDenied  = "REQUEST_DENIED"
	StatusInvalidRequest = "INVALID_REQUEST"
	StatusUnknownError   = "UNKNOWN_ERROR"
)

// ErrBadStatus is returned when the provider answers with a non-OK status
var ErrBadStatus = errors.New("provider returned non-OK status")

// SearchResult is one raw candidate from a nearby or text search
type SearchResult struct {
	PlaceID          string
	Name             string
	Types            []string
	Rating           *float64
	UserRatingsTotal *int
	Vicinity         string
	FormattedAddress string
	BusinessStatus   string
	Location         place.Coordinate
	PhotoReferences  []string
}

// DetailsResult is the raw payload of a place-details lookup. Optional
// fields are pointers; the normalizer decides how absence maps onto the
// enriched record.
type DetailsResult struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Vicinity         string
	Website          string
	URL              string
	Phone            string
	IntlPhone        string
	EditorialSummary string
	BusinessStatus   string
	Types            []string
	Rating           *float64
	UserRatingsTotal *int
	PriceLevel       *int
	UTCOffsetMin     *int
	Location         *place.Coordinate
	PhotoReferences  []string
	Reviews          []DetailsReview
	OpeningPeriods   []place.OpeningPeriod
	WeekdayText      []string

	// Per-attribute boolean facts; nil means the provider said nothing
	WheelchairAccessible *bool
	Delivery             *bool
	DineIn               *bool
	Takeout              *bool
	Reservable           *bool
	ServesBreakfast      *bool
	ServesLunch          *bool
	ServesDinner         *bool
	ServesBeer           *bool
	ServesWine           *bool
	ServesVegetarian     *bool
}

// DetailsReview is one raw review entry on a details payload
type DetailsReview struct {
	Author   string
	Rating   float64
	Text     string
	UnixTime int64
}

// Client is the adapter over the external place-data provider's three
// operations. Implementations own session bootstrap and request shaping;
// callers only see typed results.
type Client interface {
	// NearbySearch runs a single search around a point with radius and
	// optional type filter
	NearbySearch(ctx context.Context, location place.Coordinate, radiusMeters int, placeType string) ([]SearchResult, error)

	// TextSearch runs a free-text query, optionally biased to a location
	TextSearch(ctx context.Context, query string, location *place.Coordinate, radiusMeters int, placeType string) ([]SearchResult, error)

	// PlaceDetails looks up the detailed record for one place, requesting
	// only the given field set
	PlaceDetails(ctx context.Context, placeID string, fields []string, language, region string) (*DetailsResult, error)

	// PhotoURL resolves a photo reference into a fetchable URL
	PhotoURL(reference string, maxWidth int) string
}
