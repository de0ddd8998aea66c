package intelligent

import (
	"sort"
	"strings"

	"wander/internal/domain/place"
)

// SoftFilter is a keyword/weight-scored classification independent of the
// provider's own type taxonomy
type SoftFilter struct {
	Name      string
	Weight    float64
	Primary   []string // strong indicators
	Secondary []string // supporting vocabulary
	Amenity   []string // amenity/service tag vocabulary
}

// Field multipliers: how much one keyword match in a given text field
// contributes to the score
const (
	nameMultiplier        = 3.0
	descriptionMultiplier = 2.0
	amenityMultiplier     = 2.5
	serviceMultiplier     = 2.0
	contactMultiplier     = 1.0
	reviewMultiplier      = 0.5
)

// primaryBonus is added once when at least three distinct primary
// keywords appear anywhere across the scanned fields
const (
	primaryBonusThreshold = 3
	primaryBonus          = 2.0
)

// minScore is the retention floor after weighting
const minScore = 1.0

// defaultFilters is the built-in soft-filter catalog
var defaultFilters = map[string]SoftFilter{
	"spa": {
		Name:      "spa",
		Weight:    1.0,
		Primary:   []string{"spa", "massage", "masaje", "wellness", "sauna", "jacuzzi"},
		Secondary: []string{"relax", "treatment", "facial", "therapy", "temazcal"},
		Amenity:   []string{"spa", "wellness"},
	},
	"surf": {
		Name:      "surf",
		Weight:    1.0,
		Primary:   []string{"surf", "surfing", "waves", "olas", "board rental"},
		Secondary: []string{"lessons", "swell", "reef", "bodyboard", "windsurf"},
		Amenity:   []string{"surf"},
	},
	"pet-friendly": {
		Name:      "pet-friendly",
		Weight:    1.1,
		Primary:   []string{"pet friendly", "pet-friendly", "pets allowed", "dog friendly", "mascotas"},
		Secondary: []string{"dog", "perro", "leash", "pet"},
		Amenity:   []string{"pets", "pet friendly"},
	},
	"family": {
		Name:      "family",
		Weight:    0.9,
		Primary:   []string{"family", "familiar", "kids club", "playground", "children"},
		Secondary: []string{"kids", "niños", "shallow", "waterpark", "babysitting"},
		Amenity:   []string{"kids", "playground"},
	},
	"romantic": {
		Name:      "romantic",
		Weight:    0.9,
		Primary:   []string{"romantic", "romántico", "honeymoon", "adults only", "couples"},
		Secondary: []string{"sunset", "candlelight", "intimate", "private dinner"},
		Amenity:   []string{"adults only"},
	},
	"nightlife": {
		Name:      "nightlife",
		Weight:    1.0,
		Primary:   []string{"nightclub", "night club", "dj", "dance floor", "antro"},
		Secondary: []string{"cocktails", "party", "live music", "late night"},
		Amenity:   []string{"bar", "nightlife"},
	},
}

// Scored pairs a place with its soft-filter score
type Scored struct {
	Place place.EnrichedPlace
	Score float64
}

// Service scores enriched places against named soft filters. It operates
// only on already-enriched records and composes with the rating/category
// filter chain.
type Service struct {
	filters map[string]SoftFilter
}

// NewService creates the service with the built-in filter catalog
func NewService() *Service {
	return &Service{filters: defaultFilters}
}

// Filters returns the known soft-filter names
func (s *Service) Filters() []string {
	names := make([]string, 0, len(s.filters))
	for name := range s.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply retains the places scoring at or above the minimum for the named
// filter, sorted by score descending with rating as tiebreaker. An
// unknown filter name retains nothing.
func (s *Service) Apply(places []place.EnrichedPlace, filterName string) []place.EnrichedPlace {
	scored := s.Score(places, filterName)

	out := make([]place.EnrichedPlace, len(scored))
	for i, sc := range scored {
		out[i] = sc.Place
	}
	return out
}

// Score computes and orders the scores for the named filter, dropping
// places under the retention floor
func (s *Service) Score(places []place.EnrichedPlace, filterName string) []Scored {
	f, ok := s.filters[filterName]
	if !ok {
		return nil
	}

	var out []Scored
	for _, ep := range places {
		score := s.scorePlace(ep, f)
		if score >= minScore {
			out = append(out, Scored{Place: ep, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Place.RatingOrZero() > out[j].Place.RatingOrZero()
	})

	return out
}

// scorePlace scans the weighted text fields for the filter's keyword
// sets. Each field contributes matches × field multiplier; a bonus is
// added when enough distinct primary keywords appear anywhere; the total
// is scaled by the per-filter weight.
func (s *Service) scorePlace(ep place.EnrichedPlace, f SoftFilter) float64 {
	keywords := append(append([]string{}, f.Primary...), f.Secondary...)

	nameText := strings.ToLower(ep.Name)
	descText := strings.ToLower(ep.FormattedAddress + " " + ep.EditorialSummary)
	amenityText := strings.ToLower(strings.Join(ep.Amenities, " "))
	serviceText := strings.ToLower(strings.Join(ep.Services, " "))
	contactText := strings.ToLower(ep.Contact.Website + " " + ep.Contact.URL)

	var reviewParts []string
	for _, r := range ep.Reviews {
		reviewParts = append(reviewParts, r.Text)
	}
	reviewText := strings.ToLower(strings.Join(reviewParts, " "))

	total := 0.0
	total += countMatches(nameText, keywords) * nameMultiplier
	total += countMatches(descText, keywords) * descriptionMultiplier
	total += countMatches(amenityText, append(keywords, f.Amenity...)) * amenityMultiplier
	total += countMatches(serviceText, append(keywords, f.Amenity...)) * serviceMultiplier
	total += countMatches(contactText, keywords) * contactMultiplier
	total += countMatches(reviewText, keywords) * reviewMultiplier

	everything := nameText + " " + descText + " " + amenityText + " " +
		serviceText + " " + contactText + " " + reviewText
	if distinctHits(everything, f.Primary) >= primaryBonusThreshold {
		total += primaryBonus
	}

	return total * f.Weight
}

// countMatches counts keyword occurrences in a text field
func countMatches(text string, keywords []string) float64 {
	if text == "" {
		return 0
	}
	count := 0
	for _, kw := range keywords {
		count += strings.Count(text, kw)
	}
	return float64(count)
}

// distinctHits counts how many distinct keywords appear at least once
func distinctHits(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}
