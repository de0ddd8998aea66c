// internal/server/handlers/places.go

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"wander/internal/domain/place"
	"wander/internal/service/pipeline"
)

// PlacesHandler handles place-search HTTP requests
type PlacesHandler struct {
	pipeline *pipeline.Service
}

// NewPlacesHandler creates a new places handler
func NewPlacesHandler(p *pipeline.Service) *PlacesHandler {
	return &PlacesHandler{
		pipeline: p,
	}
}

// Search runs one category query through the pipeline
func (h *PlacesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	category := query.Get("category")
	if category == "" {
		respondWithError(w, http.StatusBadRequest, "Missing category", nil)
		return
	}

	opts := place.SearchOptions{
		Category: category,
		Method:   place.SearchMethod(query.Get("method")),
		Enrich:   true,
	}

	if radiusStr := query.Get("radius"); radiusStr != "" {
		radius, err := strconv.Atoi(radiusStr)
		if err != nil || radius <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid radius", err)
			return
		}
		opts.RadiusMeters = radius
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		opts.Limit = limit
	}

	if ratingStr := query.Get("min_rating"); ratingStr != "" {
		rating, err := strconv.ParseFloat(ratingStr, 64)
		if err != nil || rating < 0 || rating > 5 {
			respondWithError(w, http.StatusBadRequest, "Invalid min_rating", err)
			return
		}
		opts.MinRating = rating
	}

	if enrichStr := query.Get("enrich"); enrichStr != "" {
		opts.Enrich = enrichStr != "false"
	}

	if filters := query.Get("filters"); filters != "" {
		opts.SoftFilters = strings.Split(filters, ",")
	}

	// Optional caller-supplied fallback coordinate, used when the
	// device location cannot be obtained
	latStr := query.Get("lat")
	lngStr := query.Get("lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid coordinates", nil)
			return
		}
		opts.Fallback = &place.Coordinate{Latitude: lat, Longitude: lng}
	}

	result := h.pipeline.Query(r.Context(), opts)
	if result.Status == place.StatusSearchFailed && len(result.Places) == 0 {
		if _, ok := place.CategoryFor(category); !ok {
			respondWithError(w, http.StatusBadRequest, "Unknown category", nil)
			return
		}
	}

	respondWithJSON(w, http.StatusOK, result)
}

// Categories returns the supported categories and soft filters
func (h *PlacesHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories":   place.CategoryNames(),
		"soft_filters": h.pipeline.SoftFilters(),
	})
}

// QueriesHandler handles query-history HTTP requests
type QueriesHandler struct {
	store place.QueryStore
}

// NewQueriesHandler creates a new query-history handler
func NewQueriesHandler(store place.QueryStore) *QueriesHandler {
	return &QueriesHandler{
		store: store,
	}
}

// Recent returns the most recent recorded queries
func (h *QueriesHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Query history is not enabled", nil)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	records, err := h.store.RecentQueries(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get recent queries", err)
		return
	}

	respondWithJSON(w, http.StatusOK, records)
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}

	if err != nil && code >= 500 {
		log.Error().Err(err).Int("code", code).Msg(message)
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
