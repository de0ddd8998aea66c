package filter

import (
	"sort"
	"strings"

	"wander/internal/domain/place"
)

// RatingStage drops places rated below the minimum. A missing rating is
// treated as 0.
type RatingStage struct{}

// Name returns the stage name
func (RatingStage) Name() string { return "rating" }

// Apply keeps places with rating >= opts.MinRating
func (RatingStage) Apply(places []place.Place, opts place.SearchOptions) []place.Place {
	out := make([]place.Place, 0, len(places))
	for _, p := range places {
		if p.RatingOrZero() >= opts.MinRating {
			out = append(out, p)
		}
	}
	return out
}

// CategoryHeuristicStage applies the category-specific inclusion rule:
// a name-prefix rule (beaches) or a type-tag intersection rule
// (restaurants). Categories with neither pass through unchanged.
type CategoryHeuristicStage struct {
	Config place.CategoryConfig
}

// Name returns the stage name
func (CategoryHeuristicStage) Name() string { return "category_heuristic" }

// Apply keeps places satisfying the category rule
func (s CategoryHeuristicStage) Apply(places []place.Place, opts place.SearchOptions) []place.Place {
	if len(s.Config.HeuristicPrefix) == 0 && len(s.Config.HeuristicTypes) == 0 {
		return places
	}

	out := make([]place.Place, 0, len(places))
	for _, p := range places {
		if s.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s CategoryHeuristicStage) matches(p place.Place) bool {
	if len(s.Config.HeuristicPrefix) > 0 {
		name := strings.ToLower(p.Name)
		for _, prefix := range s.Config.HeuristicPrefix {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
		return false
	}

	for _, tag := range p.Types {
		for _, wanted := range s.Config.HeuristicTypes {
			if tag == wanted {
				return true
			}
		}
	}
	return false
}

// PredicateStage applies the caller-supplied filter function
type PredicateStage struct{}

// Name returns the stage name
func (PredicateStage) Name() string { return "predicate" }

// Apply keeps places for which the predicate returns true
func (PredicateStage) Apply(places []place.Place, opts place.SearchOptions) []place.Place {
	if opts.Predicate == nil {
		return places
	}

	out := make([]place.Place, 0, len(places))
	for _, p := range places {
		if opts.Predicate(p) {
			out = append(out, p)
		}
	}
	return out
}

// DedupStage keeps the first occurrence per identity key. The key is the
// external place ID when present, otherwise the name; the same rule is
// applied to every place within a pass.
type DedupStage struct{}

// Name returns the stage name
func (DedupStage) Name() string { return "dedup" }

// Apply removes later occurrences of already-seen keys
func (DedupStage) Apply(places []place.Place, opts place.SearchOptions) []place.Place {
	seen := make(map[string]bool, len(places))
	out := make([]place.Place, 0, len(places))
	for _, p := range places {
		key := p.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// SortStage orders places by rating descending. Equal or missing ratings
// retain their relative input order, so the sort must be stable.
type SortStage struct{}

// Name returns the stage name
func (SortStage) Name() string { return "sort" }

// Apply returns a sorted copy of the input
func (SortStage) Apply(places []place.Place, opts place.SearchOptions) []place.Place {
	out := make([]place.Place, len(places))
	copy(out, places)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RatingOrZero() > out[j].RatingOrZero()
	})
	return out
}

// LimitStage truncates to the requested result count
type LimitStage struct{}

// Name returns the stage name
func (LimitStage) Name() string { return "limit" }

// Apply truncates the input to opts.Limit entries
func (LimitStage) Apply(places []place.Place, opts place.SearchOptions) []place.Place {
	if opts.Limit <= 0 || len(places) <= opts.Limit {
		return places
	}
	return places[:opts.Limit]
}
