package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
	"golang.org/x/sync/errgroup"
)

// ResolveAggregate searches all entity types at once by substring. The
// per-type queries run concurrently and are merged only after all of them
// returned. Any failing type fails the whole request.
func (r *Resolver) ResolveAggregate(ctx context.Context, term string, limit int) (*model.SearchResponse, error) {
	limit = r.config.Normalize(limit, true)
	term = strings.TrimSpace(term)

	types := model.AllEntityTypes()
	perType := make([][]*model.EntitySummary, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, entityType := range types {
		g.Go(func() error {
			var results []*model.EntitySummary
			var err error
			if term == "" {
				results, err = r.store.SelectDefault(gctx, entityType, limit)
			} else {
				results, err = r.store.SelectContains(gctx, entityType, term, limit)
			}
			if err != nil {
				return helper.NewError("aggregate "+string(entityType), err)
			}
			perType[i] = results
			return nil
		})
	}

	tierName := TierContains
	if term == "" {
		tierName = TierDefault
	}

	err := g.Wait()
	if err != nil {
		observeTier(tierName, outcomeFailed)
		r.logger.Error("Aggregate search failed", slog.String("error", err.Error()))
		return nil, err
	}

	merged := newOrderedSet()
	for _, results := range perType {
		merged.add(results)
	}
	if merged.len() > 0 {
		observeTier(tierName, outcomeHit)
	} else {
		observeTier(tierName, outcomeEmpty)
	}

	response := &model.SearchResponse{}
	if term == "" {
		sortByName(merged.items)
		response.Message = model.MessageShowingAll
	} else {
		sortByRelevance(merged.items, term)
	}

	response.Results = merged.truncated(limit)
	if len(response.Results) == 0 && term != "" {
		response.Message = model.NoResultsMessage(term)
	}
	ResultCount.WithLabelValues("aggregate").Observe(float64(len(response.Results)))

	return response, nil
}
