package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wander/internal/domain/place"
	"wander/internal/domain/provider"
)

// Config holds the provider client configuration
type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Region   string
	Timeout  time.Duration
}

// HTTPClient is the REST implementation of the provider.Client interface.
// It owns request shaping and normalizes the untyped wire payloads into
// the typed results the rest of the pipeline consumes.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewHTTPClient creates a provider client
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://maps.googleapis.com/maps/api/place"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Wire types. These mirror the provider's JSON and never leave this
// package.

type wireLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type wireGeometry struct {
	Location wireLocation `json:"location"`
}

type wirePhoto struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type wireSearchResult struct {
	PlaceID          string       `json:"place_id"`
	Name             string       `json:"name"`
	Types            []string     `json:"types"`
	Rating           *float64     `json:"rating"`
	UserRatingsTotal *int         `json:"user_ratings_total"`
	Vicinity         string       `json:"vicinity"`
	FormattedAddress string       `json:"formatted_address"`
	BusinessStatus   string       `json:"business_status"`
	Geometry         wireGeometry `json:"geometry"`
	Photos           []wirePhoto  `json:"photos"`
}

type wireSearchResponse struct {
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
	Results      []wireSearchResult `json:"results"`
}

type wireReview struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	Time       int64   `json:"time"`
}

type wirePeriodPoint struct {
	Day  int    `json:"day"`
	Time string `json:"time"` // "HHMM"
}

type wirePeriod struct {
	Open  wirePeriodPoint  `json:"open"`
	Close *wirePeriodPoint `json:"close"`
}

type wireOpeningHours struct {
	Periods     []wirePeriod `json:"periods"`
	WeekdayText []string     `json:"weekday_text"`
}

type wireDetailsResult struct {
	PlaceID          string            `json:"place_id"`
	Name             string            `json:"name"`
	FormattedAddress string            `json:"formatted_address"`
	Vicinity         string            `json:"vicinity"`
	Website          string            `json:"website"`
	URL              string            `json:"url"`
	Phone            string            `json:"formatted_phone_number"`
	IntlPhone        string            `json:"international_phone_number"`
	BusinessStatus   string            `json:"business_status"`
	Types            []string          `json:"types"`
	Rating           *float64          `json:"rating"`
	UserRatingsTotal *int              `json:"user_ratings_total"`
	PriceLevel       *int              `json:"price_level"`
	UTCOffset        *int              `json:"utc_offset"`
	Geometry         *wireGeometry     `json:"geometry"`
	Photos           []wirePhoto       `json:"photos"`
	Reviews          []wireReview      `json:"reviews"`
	OpeningHours     *wireOpeningHours `json:"opening_hours"`
	EditorialSummary *struct {
		Overview string `json:"overview"`
	} `json:"editorial_summary"`

	WheelchairAccessible *bool `json:"wheelchair_accessible_entrance"`
	Delivery             *bool `json:"delivery"`
	DineIn               *bool `json:"dine_in"`
	Takeout              *bool `json:"takeout"`
	Reservable           *bool `json:"reservable"`
	ServesBreakfast      *bool `json:"serves_breakfast"`
	ServesLunch          *bool `json:"serves_lunch"`
	ServesDinner         *bool `json:"serves_dinner"`
	ServesBeer           *bool `json:"serves_beer"`
	ServesWine           *bool `json:"serves_wine"`
	ServesVegetarian     *bool `json:"serves_vegetarian_food"`
}

type wireDetailsResponse struct {
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
	Result       *wireDetailsResult `json:"result"`
}

// NearbySearch runs a single search around a point
func (c *HTTPClient) NearbySearch(ctx context.Context, location place.Coordinate, radiusMeters int, placeType string) ([]provider.SearchResult, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%.6f,%.6f", location.Latitude, location.Longitude))
	params.Set("radius", strconv.Itoa(radiusMeters))
	if placeType != "" {
		params.Set("type", placeType)
	}

	var resp wireSearchResponse
	if err := c.doGet(ctx, "/nearbysearch/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	return c.toSearchResults(resp.Results), nil
}

// TextSearch runs a free-text query, optionally biased to a location
func (c *HTTPClient) TextSearch(ctx context.Context, query string, location *place.Coordinate, radiusMeters int, placeType string) ([]provider.SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	if location != nil {
		params.Set("location", fmt.Sprintf("%.6f,%.6f", location.Latitude, location.Longitude))
	}
	if radiusMeters > 0 {
		params.Set("radius", strconv.Itoa(radiusMeters))
	}
	if placeType != "" {
		params.Set("type", placeType)
	}

	var resp wireSearchResponse
	if err := c.doGet(ctx, "/textsearch/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	return c.toSearchResults(resp.Results), nil
}

// PlaceDetails looks up the detailed record for one place
func (c *HTTPClient) PlaceDetails(ctx context.Context, placeID string, fields []string, language, region string) (*provider.DetailsResult, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}
	if language == "" {
		language = c.cfg.Language
	}
	if language != "" {
		params.Set("language", language)
	}
	if region == "" {
		region = c.cfg.Region
	}
	if region != "" {
		params.Set("region", region)
	}

	var resp wireDetailsResponse
	if err := c.doGet(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("details response missing result for %s", placeID)
	}

	return c.toDetailsResult(resp.Result), nil
}

// PhotoURL resolves a photo reference into a fetchable URL
func (c *HTTPClient) PhotoURL(reference string, maxWidth int) string {
	if reference == "" {
		return ""
	}
	if maxWidth <= 0 {
		maxWidth = 800
	}

	params := url.Values{}
	params.Set("photo_reference", reference)
	params.Set("maxwidth", strconv.Itoa(maxWidth))
	params.Set("key", c.cfg.APIKey)

	return c.cfg.BaseURL + "/photo?" + params.Encode()
}

func (c *HTTPClient) doGet(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error building provider request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding provider response: %w", err)
	}

	return nil
}

func checkStatus(status, message string) error {
	if status == provider.StatusOK {
		return nil
	}
	if message != "" {
		return fmt.Errorf("%w: %s (%s)", provider.ErrBadStatus, status, message)
	}
	return fmt.Errorf("%w: %s", provider.ErrBadStatus, status)
}

func (c *HTTPClient) toSearchResults(results []wireSearchResult) []provider.SearchResult {
	out := make([]provider.SearchResult, 0, len(results))
	for _, r := range results {
		sr := provider.SearchResult{
			PlaceID:          r.PlaceID,
			Name:             r.Name,
			Types:            r.Types,
			Rating:           r.Rating,
			UserRatingsTotal: r.UserRatingsTotal,
			Vicinity:         r.Vicinity,
			FormattedAddress: r.FormattedAddress,
			BusinessStatus:   r.BusinessStatus,
			Location: place.Coordinate{
				Latitude:  r.Geometry.Location.Lat,
				Longitude: r.Geometry.Location.Lng,
			},
		}
		for _, p := range r.Photos {
			sr.PhotoReferences = append(sr.PhotoReferences, p.PhotoReference)
		}
		out = append(out, sr)
	}
	return out
}

func (c *HTTPClient) toDetailsResult(r *wireDetailsResult) *provider.DetailsResult {
	dr := &provider.DetailsResult{
		PlaceID:              r.PlaceID,
		Name:                 r.Name,
		FormattedAddress:     r.FormattedAddress,
		Vicinity:             r.Vicinity,
		Website:              r.Website,
		URL:                  r.URL,
		Phone:                r.Phone,
		IntlPhone:            r.IntlPhone,
		BusinessStatus:       r.BusinessStatus,
		Types:                r.Types,
		Rating:               r.Rating,
		UserRatingsTotal:     r.UserRatingsTotal,
		PriceLevel:           r.PriceLevel,
		UTCOffsetMin:         r.UTCOffset,
		WheelchairAccessible: r.WheelchairAccessible,
		Delivery:             r.Delivery,
		DineIn:               r.DineIn,
		Takeout:              r.Takeout,
		Reservable:           r.Reservable,
		ServesBreakfast:      r.ServesBreakfast,
		ServesLunch:          r.ServesLunch,
		ServesDinner:         r.ServesDinner,
		ServesBeer:           r.ServesBeer,
		ServesWine:           r.ServesWine,
		ServesVegetarian:     r.ServesVegetarian,
	}

	if r.EditorialSummary != nil {
		dr.EditorialSummary = r.EditorialSummary.Overview
	}
	if r.Geometry != nil {
		dr.Location = &place.Coordinate{
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		}
	}
	for _, p := range r.Photos {
		dr.PhotoReferences = append(dr.PhotoReferences, p.PhotoReference)
	}
	for _, rev := range r.Reviews {
		dr.Reviews = append(dr.Reviews, provider.DetailsReview{
			Author:   rev.AuthorName,
			Rating:   rev.Rating,
			Text:     rev.Text,
			UnixTime: rev.Time,
		})
	}
	if r.OpeningHours != nil {
		dr.WeekdayText = r.OpeningHours.WeekdayText
		for _, p := range r.OpeningHours.Periods {
			period := place.OpeningPeriod{
				Day:      p.Open.Day,
				OpenTime: parseClockTime(p.Open.Time),
			}
			if p.Close != nil {
				period.CloseTime = parseClockTime(p.Close.Time)
			} else {
				// Open 24h entries come with no close point
				period.CloseTime = -1
			}
			dr.OpeningPeriods = append(dr.OpeningPeriods, period)
		}
	}

	return dr
}

// parseClockTime converts the provider's "HHMM" strings into minutes
// since midnight
func parseClockTime(s string) int {
	if len(s) != 4 {
		return 0
	}
	hours, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(s[2:])
	if err != nil {
		return 0
	}
	return hours*60 + minutes
}
