package enrich

import (
	"strings"

	"wander/internal/domain/place"
)

// priceDescriptions maps a 0-4 price level onto the labels the cards show
var priceDescriptions = [5]string{
	"Gratis",
	"Económico",
	"Precio moderado",
	"Caro",
	"Lujo",
}

// priceDescription returns the label for a level, clamping out-of-range
// provider values
func priceDescription(level int) string {
	if level < 0 {
		level = 0
	}
	if level > 4 {
		level = 4
	}
	return priceDescriptions[level]
}

// Vocabulary for the hotel price heuristic. Matching is done on the
// lowercased name.
var (
	luxuryWords = []string{
		"luxury", "lujo", "grand", "resort", "spa", "palace", "palacio",
		"royal", "imperial", "premier", "deluxe", "boutique", "five star",
	}
	budgetWords = []string{
		"hostel", "hostal", "budget", "económico", "economico", "cheap",
		"motel", "posada", "backpacker",
	}
	midrangeWords = []string{
		"inn", "suites", "express", "comfort", "plaza",
	}
)

// minPriceConfidence is the accumulated-confidence floor below which no
// level is emitted at all
const minPriceConfidence = 0.5

// inferHotelPrice assigns a best-effort 0-4 price level to a hotel the
// provider did not price. The score accumulates weighted signals from
// lexical cues in the name, the rating, the review count as an
// established-business signal, and lodging type tags combined with
// resort/spa vocabulary. A level is only emitted once enough independent
// signals agree; otherwise the price stays unavailable.
func inferHotelPrice(name string, rating *float64, totalReviews int, types []string) place.PriceInfo {
	lower := strings.ToLower(name)

	score := 2.0 // neutral midpoint
	confidence := 0.0

	for _, w := range luxuryWords {
		if strings.Contains(lower, w) {
			score += 0.8
			confidence += 0.25
		}
	}
	for _, w := range budgetWords {
		if strings.Contains(lower, w) {
			score -= 0.8
			confidence += 0.25
		}
	}
	for _, w := range midrangeWords {
		if strings.Contains(lower, w) {
			score += 0.2
			confidence += 0.15
		}
	}

	if rating != nil {
		switch {
		case *rating >= 4.5:
			score += 0.5
			confidence += 0.15
		case *rating <= 3.0:
			score -= 0.5
			confidence += 0.1
		}
	}

	// A deep review history marks an established business; it nudges the
	// level up slightly and mostly buys confidence
	switch {
	case totalReviews >= 200:
		score += 0.25
		confidence += 0.15
	case totalReviews >= 50:
		confidence += 0.1
	}

	if containsTag(types, "lodging") &&
		(strings.Contains(lower, "resort") || strings.Contains(lower, "spa")) {
		score += 0.5
		confidence += 0.1
	}

	if confidence < minPriceConfidence {
		return place.PriceInfo{IsInferred: true}
	}

	level := int(score + 0.5)
	if level < 0 {
		level = 0
	}
	if level > 4 {
		level = 4
	}

	return place.PriceInfo{
		Level:       &level,
		Description: priceDescription(level),
		IsInferred:  true,
	}
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
