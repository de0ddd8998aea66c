package place

import "sort"

// SearchMethod selects which search strategies run for a query
type SearchMethod string

const (
	MethodNearby SearchMethod = "nearby"
	MethodText   SearchMethod = "text"
	MethodBoth   SearchMethod = "both"
)

// CategoryConfig is the per-category static policy: query terms, provider
// type hint, rating floor, radius and default result limit. One instance
// per category, never mutated.
type CategoryConfig struct {
	Name            string
	Queries         []string
	ProviderType    string
	MinRating       float64
	MultiPhoto      bool
	RadiusMeters    int
	DefaultLimit    int
	DefaultMethod   SearchMethod
	HeuristicPrefix []string // name must start with one of these, if set
	HeuristicTypes  []string // type tags must intersect these, if set
}

// categories is the canonical per-category policy table. The app this
// replaces carried two slightly divergent copies of it; the values here
// are the single source of truth.
var categories = map[string]CategoryConfig{
	"beach": {
		Name:            "beach",
		Queries:         []string{"beach", "playa", "beach club"},
		ProviderType:    "natural_feature",
		MinRating:       4.0,
		RadiusMeters:    15000,
		DefaultLimit:    6,
		DefaultMethod:   MethodBoth,
		HeuristicPrefix: []string{"playa", "beach", "bahía", "cala"},
	},
	"hotel": {
		Name:          "hotel",
		Queries:       []string{"hotel", "resort", "boutique hotel"},
		ProviderType:  "lodging",
		MinRating:     4.0,
		MultiPhoto:    true,
		RadiusMeters:  10000,
		DefaultLimit:  8,
		DefaultMethod: MethodBoth,
	},
	"restaurant": {
		Name:           "restaurant",
		Queries:        []string{"restaurant", "seafood restaurant", "local food"},
		ProviderType:   "restaurant",
		MinRating:      4.2,
		MultiPhoto:     true,
		RadiusMeters:   5000,
		DefaultLimit:   8,
		DefaultMethod:  MethodBoth,
		HeuristicTypes: []string{"restaurant", "food", "cafe", "bar", "meal_takeaway"},
	},
	"attraction": {
		Name:          "attraction",
		Queries:       []string{"tourist attraction", "things to do", "landmark"},
		ProviderType:  "tourist_attraction",
		MinRating:     4.0,
		RadiusMeters:  20000,
		DefaultLimit:  6,
		DefaultMethod: MethodBoth,
	},
	"destination": {
		Name:          "destination",
		Queries:       []string{"destination", "must see"},
		ProviderType:  "tourist_attraction",
		MinRating:     4.3,
		RadiusMeters:  50000,
		DefaultLimit:  5,
		DefaultMethod: MethodText,
	},
	"all": {
		Name:          "all",
		Queries:       []string{"places to visit", "popular spots"},
		MinRating:     4.0,
		RadiusMeters:  15000,
		DefaultLimit:  12,
		DefaultMethod: MethodBoth,
	},
}

// AllSubTypes are the provider types fanned out for the "all"
// pseudo-category to get a more varied result set than a single
// generic type filter would
var AllSubTypes = []string{"lodging", "restaurant", "tourist_attraction"}

// MaxAllTextQueries caps how many text queries the "all" pseudo-category
// issues on top of its type fan-out
const MaxAllTextQueries = 2

// CategoryFor returns the policy for a category name, and whether the
// category is known
func CategoryFor(name string) (CategoryConfig, bool) {
	cfg, ok := categories[name]
	return cfg, ok
}

// CategoryNames returns all configured category names
func CategoryNames() []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
