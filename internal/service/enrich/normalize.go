package enrich

import (
	"time"

	"wander/internal/domain/place"
	"wander/internal/domain/provider"
)

// amenityLabels maps per-attribute boolean facts on the details payload
// onto human-readable amenity tags
var amenityLabels = []struct {
	get   func(*provider.DetailsResult) *bool
	label string
}{
	{func(d *provider.DetailsResult) *bool { return d.WheelchairAccessible }, "Wheelchair accessible"},
	{func(d *provider.DetailsResult) *bool { return d.Delivery }, "Delivery"},
	{func(d *provider.DetailsResult) *bool { return d.DineIn }, "Dine-in"},
	{func(d *provider.DetailsResult) *bool { return d.Takeout }, "Takeout"},
	{func(d *provider.DetailsResult) *bool { return d.Reservable }, "Reservations"},
}

// serviceLabels maps meal and drink service facts onto service tags
var serviceLabels = []struct {
	get   func(*provider.DetailsResult) *bool
	label string
}{
	{func(d *provider.DetailsResult) *bool { return d.ServesBreakfast }, "Breakfast"},
	{func(d *provider.DetailsResult) *bool { return d.ServesLunch }, "Lunch"},
	{func(d *provider.DetailsResult) *bool { return d.ServesDinner }, "Dinner"},
	{func(d *provider.DetailsResult) *bool { return d.ServesBeer }, "Beer"},
	{func(d *provider.DetailsResult) *bool { return d.ServesWine }, "Wine"},
	{func(d *provider.DetailsResult) *bool { return d.ServesVegetarian }, "Vegetarian options"},
}

// typeAmenities maps the provider's generic type tags onto amenity tags
var typeAmenities = map[string]string{
	"lodging":            "Accommodation",
	"restaurant":         "Restaurant",
	"cafe":               "Café",
	"bar":                "Bar",
	"spa":                "Spa",
	"gym":                "Gym",
	"night_club":         "Nightlife",
	"tourist_attraction": "Attraction",
}

// maxReviews caps how many reviews are kept on an enriched record
const maxReviews = 5

// maxPhotos caps the carousel size for multi-photo categories
const maxPhotos = 6

// normalize merges a details payload into the raw candidate, producing
// the enriched record. Enrichment never downgrades data: when the raw
// place already had a field and the provider re-supplies it empty, the
// original value is retained.
func normalize(raw place.Place, d *provider.DetailsResult, category string, now time.Time, photoURL func(string, int) string, multiPhoto bool) place.EnrichedPlace {
	ep := place.EnrichedPlace{Place: raw}

	if d.Name != "" {
		ep.Name = d.Name
	}
	if d.Rating != nil {
		ep.Rating = d.Rating
	}
	if d.Location != nil {
		ep.Location = *d.Location
	}
	if d.Vicinity != "" && ep.Vicinity == "" {
		ep.Vicinity = d.Vicinity
	}
	if len(d.Types) > 0 {
		ep.Types = d.Types
	}
	if ep.PhotoURL == "" && len(d.PhotoReferences) > 0 {
		ep.PhotoURL = photoURL(d.PhotoReferences[0], 800)
	}
	if multiPhoto {
		for i, ref := range d.PhotoReferences {
			if i >= maxPhotos {
				break
			}
			ep.PhotoURLs = append(ep.PhotoURLs, photoURL(ref, 800))
		}
	}

	ep.FormattedAddress = d.FormattedAddress
	if ep.FormattedAddress == "" {
		ep.FormattedAddress = ep.Vicinity
	}
	ep.EditorialSummary = d.EditorialSummary
	ep.BusinessStatus = d.BusinessStatus
	ep.Contact = place.ContactInfo{
		Phone:              d.Phone,
		InternationalPhone: d.IntlPhone,
		Website:            d.Website,
		URL:                d.URL,
	}
	if d.UserRatingsTotal != nil {
		ep.TotalReviews = *d.UserRatingsTotal
	}

	for _, r := range d.Reviews {
		if len(ep.Reviews) >= maxReviews {
			break
		}
		ep.Reviews = append(ep.Reviews, place.Review{
			Author:    r.Author,
			Rating:    r.Rating,
			Text:      r.Text,
			Timestamp: time.Unix(r.UnixTime, 0),
		})
	}

	ep.Amenities, ep.Services = deriveTags(d)

	if len(d.OpeningPeriods) > 0 || len(d.WeekdayText) > 0 {
		ep.Hours = &place.OpeningHours{
			Periods:      d.OpeningPeriods,
			WeekdayText:  d.WeekdayText,
			UTCOffsetMin: d.UTCOffsetMin,
		}
		// Weekday text without parseable periods is no evidence either
		// way; open-now stays unknown rather than asserting closed
		if len(d.OpeningPeriods) > 0 {
			open := isOpenAt(d.OpeningPeriods, d.UTCOffsetMin, now)
			ep.Hours.OpenNow = &open
		}
	}

	ep.Price = derivePrice(ep, d, category)

	return ep
}

// derivePrice prefers the provider's level; absent that, hotels get the
// lexical inference and everything else reports price unavailable
func derivePrice(ep place.EnrichedPlace, d *provider.DetailsResult, category string) place.PriceInfo {
	if d.PriceLevel != nil {
		level := *d.PriceLevel
		return place.PriceInfo{
			Level:       &level,
			Description: priceDescription(level),
		}
	}

	if category == "hotel" {
		return inferHotelPrice(ep.Name, ep.Rating, ep.TotalReviews, ep.Types)
	}

	return place.PriceInfo{}
}

// deriveTags collects amenity and service tags from the boolean facts
// and the generic type tags
func deriveTags(d *provider.DetailsResult) (amenities, services []string) {
	for _, m := range amenityLabels {
		if v := m.get(d); v != nil && *v {
			amenities = append(amenities, m.label)
		}
	}
	for _, m := range serviceLabels {
		if v := m.get(d); v != nil && *v {
			services = append(services, m.label)
		}
	}

	seen := make(map[string]bool)
	for _, t := range d.Types {
		if label, ok := typeAmenities[t]; ok && !seen[label] {
			seen[label] = true
			amenities = append(amenities, label)
		}
	}

	return amenities, services
}
