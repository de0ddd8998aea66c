package place

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Coordinate represents a geographic point
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// DistanceTo returns the geodesic distance to another coordinate in meters
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return geo.Distance(
		orb.Point{c.Longitude, c.Latitude},
		orb.Point{other.Longitude, other.Latitude},
	)
}

// Rounded returns the coordinate truncated to the given number of decimal
// places, used for coarse cache keys
func (c Coordinate) Rounded(decimals int) Coordinate {
	factor := 1.0
	for i := 0; i < decimals; i++ {
		factor *= 10
	}
	return Coordinate{
		Latitude:  float64(int64(c.Latitude*factor)) / factor,
		Longitude: float64(int64(c.Longitude*factor)) / factor,
	}
}

// Place is a raw search candidate as returned by a search strategy.
// It is never mutated after creation; enrichment produces an EnrichedPlace
// and the raw candidate is discarded.
type Place struct {
	ID             string     `json:"id"`
	PlaceID        string     `json:"place_id"`
	Name           string     `json:"name"`
	PhotoURL       string     `json:"photo_url,omitempty"`
	Location       Coordinate `json:"location"`
	DistanceMeters float64    `json:"distance_meters,omitempty"`
	Rating         *float64   `json:"rating,omitempty"`
	Vicinity       string     `json:"vicinity,omitempty"`
	Types          []string   `json:"types,omitempty"`
}

// Key returns the identity key used for deduplication: the external place
// ID when present, otherwise the name
func (p Place) Key() string {
	if p.PlaceID != "" {
		return p.PlaceID
	}
	return p.Name
}

// RatingOrZero returns the rating, treating an absent rating as 0
func (p Place) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// Review is a single user review attached to an enriched place
type Review struct {
	Author    string    `json:"author"`
	Rating    float64   `json:"rating"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// OpeningPeriod describes one open/close span in a weekly schedule.
// Days are 0=Sunday..6=Saturday; times are minutes since midnight.
// A close before open on the same day record means the business closes
// past midnight.
type OpeningPeriod struct {
	Day       int `json:"day"`
	OpenTime  int `json:"open"`
	CloseTime int `json:"close"`
}

// OpeningHours holds the weekly schedule plus the computed open-now flag
type OpeningHours struct {
	Periods      []OpeningPeriod `json:"periods,omitempty"`
	WeekdayText  []string        `json:"weekday_text,omitempty"`
	UTCOffsetMin *int            `json:"utc_offset_min,omitempty"`
	OpenNow      *bool           `json:"open_now,omitempty"`
}

// PriceInfo carries the provider-supplied or inferred price level.
// Level is 0-4; nil means unavailable. Callers must tolerate absence.
type PriceInfo struct {
	Level       *int   `json:"level"`
	Description string `json:"description,omitempty"`
	IsInferred  bool   `json:"is_inferred"`
}

// ContactInfo groups the ways to reach a place
type ContactInfo struct {
	Phone              string `json:"phone,omitempty"`
	InternationalPhone string `json:"international_phone,omitempty"`
	Website            string `json:"website,omitempty"`
	URL                string `json:"url,omitempty"`
}

// EnrichedPlace is the detailed record produced by the enrichment service.
// It is immutable once constructed; its lifetime is bounded by the cache
// entry that holds it or by the current query's result set.
type EnrichedPlace struct {
	Place

	FormattedAddress string        `json:"formatted_address,omitempty"`
	PhotoURLs        []string      `json:"photo_urls,omitempty"`
	EditorialSummary string        `json:"editorial_summary,omitempty"`
	Contact          ContactInfo   `json:"contact"`
	Reviews          []Review      `json:"reviews,omitempty"`
	TotalReviews     int           `json:"total_reviews"`
	Amenities        []string      `json:"amenities,omitempty"`
	Services         []string      `json:"services,omitempty"`
	Hours            *OpeningHours `json:"hours,omitempty"`
	Price            PriceInfo     `json:"price"`
	BusinessStatus   string        `json:"business_status,omitempty"`
}

// Query status values surfaced alongside results. An empty result set after
// a failed search is distinguishable from a search that found places but
// could not enrich any of them.
const (
	StatusIdle            = "idle"
	StatusSearching       = "searching"
	StatusFiltering       = "filtering"
	StatusEnriching       = "enriching"
	StatusComplete        = "complete"
	StatusSearchFailed    = "search_failed"
	StatusNothingFound    = "nothing_found"
	StatusEnrichedNothing = "enriched_nothing"
)

// QueryResult is the polling-friendly shape handed to the UI layer
type QueryResult struct {
	QueryID  string          `json:"query_id"`
	Category string          `json:"category"`
	Places   []EnrichedPlace `json:"places"`
	Status   string          `json:"status"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration_ms"`
}
