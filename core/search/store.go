package search

import (
	"context"

	"github.com/siherrmann/catalog/model"
)

// Store is the part of the entity store the resolver reads from.
// database.EntitiesDBHandler implements it.
type Store interface {
	SelectDefault(ctx context.Context, entityType model.EntityType, limit int) ([]*model.EntitySummary, error)
	SelectExact(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error)
	SelectContains(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error)
	SelectFullText(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error)
	SelectBySimilarity(ctx context.Context, entityType model.EntityType, term string, threshold float64, limit int) ([]*model.EntitySummary, error)
	ProbeCapabilities(ctx context.Context) (model.CapabilityState, error)
}
