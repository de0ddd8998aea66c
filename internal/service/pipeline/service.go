package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"wander/internal/domain/place"
	"wander/internal/domain/provider"
	"wander/internal/service/ai"
	"wander/internal/service/filter"
	"wander/internal/service/intelligent"
	"wander/internal/service/search"
)

// Config contains pipeline configuration
type Config struct {
	EventsTopic string
	EnableAI    bool
}

// Event is the payload published on query lifecycle transitions
type Event struct {
	QueryID   string    `json:"query_id"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	Count     int       `json:"count"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Service orchestrates one category query end to end: resolve location,
// search, filter, enrich, soft-filter, and hand the result shape to the
// UI layer. NATS, the query store and the AI client are optional
// collaborators; a nil value disables that concern.
type Service struct {
	resolver    place.Resolver
	client      provider.Client
	enricher    place.Enricher
	intelligent *intelligent.Service
	analyzer    *ai.Client
	store       place.QueryStore
	events      *nats.Conn
	cfg         Config
	log         zerolog.Logger
}

// NewService creates the pipeline service
func NewService(
	resolver place.Resolver,
	client provider.Client,
	enricher place.Enricher,
	intelligentSvc *intelligent.Service,
	analyzer *ai.Client,
	store place.QueryStore,
	events *nats.Conn,
	cfg Config,
	log zerolog.Logger,
) *Service {
	return &Service{
		resolver:    resolver,
		client:      client,
		enricher:    enricher,
		intelligent: intelligentSvc,
		analyzer:    analyzer,
		store:       store,
		events:      events,
		cfg:         cfg,
		log:         log,
	}
}

// SoftFilters returns the names of the available soft filters
func (s *Service) SoftFilters() []string {
	return s.intelligent.Filters()
}

// Query runs the full pipeline for one category. It always returns a
// result; partial results with an error string are preferred over
// nothing. A superseded query is abandoned by cancelling ctx, which is
// threaded through every provider and AI call.
func (s *Service) Query(ctx context.Context, opts place.SearchOptions) place.QueryResult {
	queryID := uuid.New().String()
	started := time.Now()

	cfg, ok := place.CategoryFor(opts.Category)
	if !ok {
		return place.QueryResult{
			QueryID:  queryID,
			Category: opts.Category,
			Places:   []place.EnrichedPlace{},
			Status:   place.StatusSearchFailed,
			Error:    fmt.Sprintf("unknown category %q", opts.Category),
		}
	}
	opts = withDefaults(opts, cfg)

	s.publish(queryID, opts.Category, place.StatusSearching, 0, "")

	coord := s.resolver.Resolve(ctx, opts.Fallback)

	strategy := search.StrategyFor(opts.Method, s.client)
	raw, _ := strategy.Search(ctx, coord, cfg, opts)

	result := place.QueryResult{QueryID: queryID, Category: opts.Category}

	if len(raw) == 0 {
		result.Places = []place.EnrichedPlace{}
		result.Status = place.StatusSearchFailed
		result.Error = "search returned no results"
		s.finish(ctx, coord, opts, &result, started)
		return result
	}

	s.publish(queryID, opts.Category, place.StatusFiltering, len(raw), "")

	filtered := filter.BuildChain(cfg, opts).Apply(raw, opts)
	if len(filtered) == 0 {
		result.Places = []place.EnrichedPlace{}
		result.Status = place.StatusNothingFound
		s.finish(ctx, coord, opts, &result, started)
		return result
	}

	places := asEnriched(filtered)
	result.Status = place.StatusComplete

	if opts.Enrich {
		s.publish(queryID, opts.Category, place.StatusEnriching, len(filtered), "")

		enriched := s.enricher.EnrichAll(ctx, filtered, opts.Category)
		if len(enriched) == 0 {
			// Keep the raw candidates rather than clearing the result set
			result.Status = place.StatusEnrichedNothing
			result.Error = "could not enrich any result"
		} else {
			places = enriched
		}
	}

	places = s.applySoftFilters(ctx, coord, places, opts, &result)

	result.Places = places
	s.finish(ctx, coord, opts, &result, started)
	return result
}

// applySoftFilters runs the requested soft filters, preferring the AI
// endpoint when enabled and falling back to the local keyword scorer.
// An AI failure sets the result's error but never clears the places
// already obtained.
func (s *Service) applySoftFilters(ctx context.Context, coord place.Coordinate, places []place.EnrichedPlace, opts place.SearchOptions, result *place.QueryResult) []place.EnrichedPlace {
	if len(opts.SoftFilters) == 0 || len(places) == 0 {
		return places
	}

	if s.cfg.EnableAI && s.analyzer != nil {
		resp, err := s.analyzer.Analyze(ctx, coord, places, opts.SoftFilters)
		if err == nil {
			return collectAIGroups(resp, opts.SoftFilters, places)
		}
		s.log.Warn().Err(err).Str("query_id", result.QueryID).Msg("analysis endpoint failed, falling back to local scoring")
		result.Error = "ai analysis unavailable"
	}

	out := places
	for _, name := range opts.SoftFilters {
		out = s.intelligent.Apply(out, name)
	}
	return out
}

// collectAIGroups flattens the endpoint's per-filter groups back into
// one deduplicated list, preserving group order
func collectAIGroups(resp *ai.Response, filters []string, fallback []place.EnrichedPlace) []place.EnrichedPlace {
	seen := make(map[string]bool)
	var out []place.EnrichedPlace
	for _, name := range filters {
		for _, p := range resp.FilteredPlaces[name] {
			if seen[p.Key()] {
				continue
			}
			seen[p.Key()] = true
			out = append(out, p)
		}
	}
	if out == nil {
		return []place.EnrichedPlace{}
	}
	return out
}

// finish publishes the terminal event and records the query
func (s *Service) finish(ctx context.Context, coord place.Coordinate, opts place.SearchOptions, result *place.QueryResult, started time.Time) {
	result.Duration = time.Since(started)

	s.publish(result.QueryID, result.Category, result.Status, len(result.Places), result.Error)

	s.log.Info().
		Str("query_id", result.QueryID).
		Str("category", result.Category).
		Str("status", result.Status).
		Int("results", len(result.Places)).
		Dur("duration", result.Duration).
		Msg("query finished")

	if s.store == nil {
		return
	}

	rec := place.QueryRecord{
		ID:          result.QueryID,
		Category:    result.Category,
		Method:      opts.Method,
		Location:    coord,
		ResultCount: len(result.Places),
		Status:      result.Status,
		Error:       result.Error,
		Duration:    result.Duration,
		CreatedAt:   started,
	}
	if err := s.store.SaveQuery(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("query_id", result.QueryID).Msg("failed to record query")
	}
}

// publish emits a lifecycle event; a nil event bus disables publishing
func (s *Service) publish(queryID, category, status string, count int, errMsg string) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(Event{
		QueryID:   queryID,
		Category:  category,
		Status:    status,
		Count:     count,
		Error:     errMsg,
		Timestamp: time.Now(),
	})
	if err != nil {
		return
	}

	subject := fmt.Sprintf("%s.%s", s.cfg.EventsTopic, queryID)
	if err := s.events.Publish(subject, payload); err != nil {
		s.log.Debug().Err(err).Msg("failed to publish query event")
	}
}

// withDefaults fills unset options from the category policy
func withDefaults(opts place.SearchOptions, cfg place.CategoryConfig) place.SearchOptions {
	if opts.Method == "" {
		opts.Method = cfg.DefaultMethod
	}
	if opts.Limit == 0 {
		opts.Limit = cfg.DefaultLimit
	}
	if opts.MinRating == 0 {
		opts.MinRating = cfg.MinRating
	}
	if opts.RadiusMeters == 0 {
		opts.RadiusMeters = cfg.RadiusMeters
	}
	return opts
}

// asEnriched wraps raw candidates in enriched shells so the result shape
// is uniform whether or not enrichment ran
func asEnriched(places []place.Place) []place.EnrichedPlace {
	out := make([]place.EnrichedPlace, len(places))
	for i, p := range places {
		out[i] = place.EnrichedPlace{Place: p}
	}
	return out
}
