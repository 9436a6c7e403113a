package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
)

// Tier names, also used as metric labels.
const (
	TierDefault    = "default"
	TierExact      = "exact"
	TierFullText   = "fulltext"
	TierSimilarity = "similarity"
	TierContains   = "contains"
)

// Resolver answers search queries against a Store.
// Single-type searches run the exact, full-text and similarity tiers in
// order and stop as soon as the page is full.
type Resolver struct {
	store        Store
	config       model.SearchConfig
	logger       *slog.Logger
	capabilities *CapabilityCache
}

// NewResolver creates a resolver sharing the process-wide capability cache.
func NewResolver(store Store, config model.SearchConfig, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:        store,
		config:       config,
		logger:       logger,
		capabilities: processCapabilities,
	}
}

// Config returns the resolver configuration.
func (r *Resolver) Config() model.SearchConfig {
	return r.config
}

// accumulator carries the state of one single-type search through the tiers.
type accumulator struct {
	entityType model.EntityType
	term       string
	limit      int
	merged     *orderedSet
	warning    string
}

func (a *accumulator) full() bool {
	return a.merged.len() >= a.limit
}

// tier is one step of the pipeline.
// guard decides whether run is called. A failing run is passed to degrade,
// which turns it into a warning or returns it as fatal.
type tier struct {
	name    string
	guard   func(ctx context.Context, acc *accumulator) bool
	run     func(ctx context.Context, acc *accumulator) ([]*model.EntitySummary, error)
	degrade func(acc *accumulator, err error) error
}

func (r *Resolver) tiers() []tier {
	return []tier{
		{
			name:  TierExact,
			guard: func(context.Context, *accumulator) bool { return true },
			run: func(ctx context.Context, acc *accumulator) ([]*model.EntitySummary, error) {
				return r.store.SelectExact(ctx, acc.entityType, acc.term, acc.limit)
			},
			degrade: func(_ *accumulator, err error) error {
				return helper.NewError("exact tier", err)
			},
		},
		{
			name: TierFullText,
			guard: func(ctx context.Context, acc *accumulator) bool {
				if acc.full() {
					return false
				}
				state, err := r.capabilities.Get(ctx, r.store)
				if err != nil {
					r.logger.Warn("Capability probe failed, skipping full-text tier", slog.String("error", err.Error()))
					return false
				}
				if !state.FullText {
					r.logger.Debug("Full-text search not available, skipping tier")
				}
				return state.FullText
			},
			run: func(ctx context.Context, acc *accumulator) ([]*model.EntitySummary, error) {
				return r.store.SelectFullText(ctx, acc.entityType, acc.term, acc.limit)
			},
			degrade: func(_ *accumulator, err error) error {
				r.logger.Warn("Full-text tier failed, continuing", slog.String("error", err.Error()))
				return nil
			},
		},
		{
			name: TierSimilarity,
			guard: func(ctx context.Context, acc *accumulator) bool {
				if acc.full() {
					return false
				}
				state, err := r.capabilities.Get(ctx, r.store)
				if err != nil {
					r.logger.Warn("Capability probe failed, skipping similarity tier", slog.String("error", err.Error()))
					acc.warning = model.WarningNoTrigram
					return false
				}
				if !state.Similarity {
					acc.warning = model.WarningNoTrigram
					return false
				}
				return true
			},
			run: func(ctx context.Context, acc *accumulator) ([]*model.EntitySummary, error) {
				return r.store.SelectBySimilarity(ctx, acc.entityType, acc.term, r.config.SimilarityThreshold, acc.limit)
			},
			degrade: func(acc *accumulator, err error) error {
				r.logger.Warn("Similarity tier failed, continuing", slog.String("error", err.Error()))
				acc.warning = model.WarningNoTrigram
				return nil
			},
		},
	}
}

// Resolve searches entities of one type. An empty or blank term lists the
// first entities by name. A non-nil error means the request failed; degraded
// optional tiers are reported through the response warning instead.
func (r *Resolver) Resolve(ctx context.Context, entityType model.EntityType, term string, limit int) (*model.SearchResponse, error) {
	if !entityType.Valid() {
		return nil, helper.NewError("resolve", model.ErrUnknownEntityType)
	}

	limit = r.config.Normalize(limit, false)
	term = strings.TrimSpace(term)

	if term == "" {
		return r.listDefault(ctx, entityType, limit)
	}

	acc := &accumulator{
		entityType: entityType,
		term:       term,
		limit:      limit,
		merged:     newOrderedSet(),
	}

	for _, t := range r.tiers() {
		if !t.guard(ctx, acc) {
			observeTier(t.name, outcomeSkipped)
			continue
		}

		results, err := t.run(ctx, acc)
		if err != nil {
			if fatal := t.degrade(acc, err); fatal != nil {
				observeTier(t.name, outcomeFailed)
				r.logger.Error("Search failed", slog.String("tier", t.name), slog.String("type", string(entityType)), slog.String("error", err.Error()))
				return nil, fatal
			}
			observeTier(t.name, outcomeDegraded)
			continue
		}

		added := acc.merged.add(results)
		if added > 0 {
			observeTier(t.name, outcomeHit)
		} else {
			observeTier(t.name, outcomeEmpty)
		}
		r.logger.Debug("Search tier done", slog.String("tier", t.name), slog.Int("results", len(results)), slog.Int("added", added))
	}

	response := &model.SearchResponse{
		Results: acc.merged.truncated(limit),
		Warning: acc.warning,
	}
	if len(response.Results) == 0 {
		response.Message = model.NoResultsMessage(term)
	}
	ResultCount.WithLabelValues("single").Observe(float64(len(response.Results)))

	return response, nil
}

func (r *Resolver) listDefault(ctx context.Context, entityType model.EntityType, limit int) (*model.SearchResponse, error) {
	results, err := r.store.SelectDefault(ctx, entityType, limit)
	if err != nil {
		observeTier(TierDefault, outcomeFailed)
		return nil, helper.NewError("default list", err)
	}
	observeTier(TierDefault, outcomeHit)

	merged := newOrderedSet()
	merged.add(results)
	ResultCount.WithLabelValues("single").Observe(float64(merged.len()))

	return &model.SearchResponse{
		Results: merged.truncated(limit),
		Message: model.MessageShowingAll,
	}, nil
}
