package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wander/internal/domain/place"
)

func rated(id, name string, rating float64) place.Place {
	r := rating
	return place.Place{PlaceID: id, Name: name, Rating: &r}
}

func unrated(id, name string) place.Place {
	return place.Place{PlaceID: id, Name: name}
}

func names(places []place.Place) []string {
	out := make([]string, len(places))
	for i, p := range places {
		out[i] = p.Name
	}
	return out
}

func TestRatingStage_NullTreatedAsZero(t *testing.T) {
	in := []place.Place{
		rated("a", "A", 4.8),
		unrated("b", "B"),
		rated("c", "C", 3.2),
		rated("d", "D", 4.8),
	}

	out := RatingStage{}.Apply(in, place.SearchOptions{MinRating: 4.0})

	assert.Equal(t, []string{"A", "D"}, names(out))
}

func TestRatingStage_Monotonicity(t *testing.T) {
	in := []place.Place{
		rated("a", "A", 4.8), rated("b", "B", 4.2), rated("c", "C", 3.9),
		unrated("d", "D"), rated("e", "E", 4.5),
	}

	prev := len(in)
	for _, min := range []float64{0, 3.5, 4.0, 4.5, 5.0} {
		out := RatingStage{}.Apply(in, place.SearchOptions{MinRating: min})
		assert.LessOrEqual(t, len(out), prev, "raising minRating must never grow the result")
		prev = len(out)
	}
}

func TestDedupStage_KeepsFirstOccurrence(t *testing.T) {
	in := []place.Place{
		rated("p1", "Playa Norte", 4.5),
		rated("p2", "Playa Sur", 4.2),
		rated("p1", "Playa Norte (duplicate)", 4.9),
		rated("p3", "Cala Azul", 4.0),
		rated("p4", "Playa Marlin", 4.1),
	}

	out := DedupStage{}.Apply(in, place.SearchOptions{})

	require.Len(t, out, 4)
	// First-seen data retained for the shared id
	assert.Equal(t, "Playa Norte", out[0].Name)
}

func TestDedupStage_NameFallbackKey(t *testing.T) {
	in := []place.Place{
		unrated("", "Playa Norte"),
		unrated("", "Playa Norte"),
		unrated("", "Playa Sur"),
	}

	out := DedupStage{}.Apply(in, place.SearchOptions{})

	assert.Len(t, out, 2)
}

func TestDedupStage_Idempotent(t *testing.T) {
	in := []place.Place{
		rated("p1", "A", 4.5),
		rated("p1", "A dup", 4.0),
		rated("p2", "B", 4.2),
	}

	once := DedupStage{}.Apply(in, place.SearchOptions{})
	twice := DedupStage{}.Apply(once, place.SearchOptions{})

	assert.Equal(t, once, twice)
}

func TestSortStage_StableForEqualRatings(t *testing.T) {
	in := []place.Place{
		rated("a", "A", 4.2),
		rated("b", "B", 4.8),
		rated("c", "C", 4.2),
		unrated("d", "D"),
		unrated("e", "E"),
	}

	out := SortStage{}.Apply(in, place.SearchOptions{})

	assert.Equal(t, []string{"B", "A", "C", "D", "E"}, names(out))
}

func TestSortStage_DoesNotMutateInput(t *testing.T) {
	in := []place.Place{rated("a", "A", 4.0), rated("b", "B", 4.8)}

	SortStage{}.Apply(in, place.SearchOptions{})

	assert.Equal(t, "A", in[0].Name)
}

func TestCategoryHeuristic_BeachPrefix(t *testing.T) {
	cfg, _ := place.CategoryFor("beach")
	in := []place.Place{
		unrated("a", "Playa Delfines"),
		unrated("b", "Hard Rock Hotel"),
		unrated("c", "Beach Club Luna"),
		unrated("d", "Cala Tarida"),
	}

	out := CategoryHeuristicStage{Config: cfg}.Apply(in, place.SearchOptions{})

	assert.Equal(t, []string{"Playa Delfines", "Beach Club Luna", "Cala Tarida"}, names(out))
}

func TestCategoryHeuristic_RestaurantTypeTags(t *testing.T) {
	cfg, _ := place.CategoryFor("restaurant")
	in := []place.Place{
		{PlaceID: "a", Name: "La Parrilla", Types: []string{"restaurant", "food"}},
		{PlaceID: "b", Name: "Soriana", Types: []string{"supermarket"}},
		{PlaceID: "c", Name: "Café Antoinette", Types: []string{"cafe"}},
	}

	out := CategoryHeuristicStage{Config: cfg}.Apply(in, place.SearchOptions{})

	assert.Equal(t, []string{"La Parrilla", "Café Antoinette"}, names(out))
}

func TestBuildChain_StageOrderIsFixed(t *testing.T) {
	cfg, _ := place.CategoryFor("beach")
	opts := place.SearchOptions{
		MinRating: 4.0,
		Limit:     5,
		Predicate: func(p place.Place) bool { return true },
	}

	chain := BuildChain(cfg, opts)

	assert.Equal(t,
		[]string{"rating", "category_heuristic", "predicate", "dedup", "sort", "limit"},
		chain.Stages())
}

func TestBuildChain_OnlyRequestedStagesPlusMandatory(t *testing.T) {
	cfg, _ := place.CategoryFor("hotel") // no heuristic for hotels

	chain := BuildChain(cfg, place.SearchOptions{})

	assert.Equal(t, []string{"dedup", "sort"}, chain.Stages())
}

func TestChain_EndToEnd(t *testing.T) {
	cfg, _ := place.CategoryFor("beach")
	opts := place.SearchOptions{
		MinRating: 4.0,
		Limit:     3,
		Predicate: func(p place.Place) bool { return !strings.Contains(p.Name, "Club") },
	}

	in := []place.Place{
		rated("p1", "Playa Norte", 4.5),
		rated("p2", "Beach Club Luna", 4.9), // predicate drops
		rated("p3", "Playa Delfines", 4.8),
		rated("p1", "Playa Norte", 4.5), // duplicate
		rated("p4", "Hard Rock Café", 4.7), // heuristic drops
		rated("p5", "Playa Marlin", 3.1),   // rating drops
		rated("p6", "Playa Chac Mool", 4.2),
		rated("p7", "Cala Azul", 4.2),
	}

	out := BuildChain(cfg, opts).Apply(in, opts)

	assert.Equal(t, []string{"Playa Delfines", "Playa Norte", "Playa Chac Mool"}, names(out))
}
