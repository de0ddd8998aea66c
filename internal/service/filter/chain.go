package filter

import (
	"wander/internal/domain/place"
)

// Chain applies an ordered list of filter stages via left-fold reduction:
// each stage receives the previous stage's output. Stage order is part of
// the contract: rating → category heuristic → custom predicate → dedup →
// sort → limit.
type Chain struct {
	stages []place.FilterStrategy
}

// NewChain builds a chain from explicit stages, in the given order
func NewChain(stages ...place.FilterStrategy) *Chain {
	return &Chain{stages: stages}
}

// Apply runs every stage in order over the input
func (c *Chain) Apply(places []place.Place, opts place.SearchOptions) []place.Place {
	out := places
	for _, stage := range c.stages {
		out = stage.Apply(out, opts)
	}
	return out
}

// Stages returns the stage names, in application order
func (c *Chain) Stages() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	return names
}

// BuildChain constructs the chain for a query. Only stages the options
// ask for are included, except dedup and sort which are always present.
func BuildChain(cfg place.CategoryConfig, opts place.SearchOptions) *Chain {
	var stages []place.FilterStrategy

	if opts.MinRating > 0 {
		stages = append(stages, RatingStage{})
	}
	if len(cfg.HeuristicPrefix) > 0 || len(cfg.HeuristicTypes) > 0 {
		stages = append(stages, CategoryHeuristicStage{Config: cfg})
	}
	if opts.Predicate != nil {
		stages = append(stages, PredicateStage{})
	}

	stages = append(stages, DedupStage{}, SortStage{})

	if opts.Limit > 0 {
		stages = append(stages, LimitStage{})
	}

	return NewChain(stages...)
}
