package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
)

// MaxHops bounds every traversal.
const MaxHops = 4

// GraphDB defines the lookups a traversal needs.
type GraphDB interface {
	SelectEntity(ctx context.Context, entityType model.EntityType, id uuid.UUID) (*model.Entity, error)
	Neighbors(ctx context.Context, ref model.EntityRef) ([]model.EntityRef, error)
}

// TraversalResult contains an entity and its distance from the source
type TraversalResult struct {
	Entity   model.EntityRef `json:"entity"`
	Distance int             `json:"distance"`
	Path     []uuid.UUID     `json:"path"` // Path from source to this entity
}

// BFS performs breadth-first search over the catalog links, starting at
// the given entity. maxHops is clamped to [0, MaxHops]. If types is not
// empty only entities of those types are returned, but the walk still
// passes through the others.
func BFS(ctx context.Context, db GraphDB, sourceType model.EntityType, sourceID uuid.UUID, maxHops int, types []model.EntityType) ([]*TraversalResult, error) {
	if maxHops < 0 {
		maxHops = 0
	}
	if maxHops > MaxHops {
		maxHops = MaxHops
	}

	source, err := db.SelectEntity(ctx, sourceType, sourceID)
	if err != nil {
		return nil, helper.NewError("select source", err)
	}

	visited := map[uuid.UUID]bool{sourceID: true}
	queue := []TraversalResult{{
		Entity:   model.EntityRef{ID: source.ID, Code: source.Code, Name: source.Name, Type: source.Type},
		Distance: 0,
		Path:     []uuid.UUID{sourceID},
	}}

	results := []*TraversalResult{}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, helper.NewError("traversal", err)
		}

		current := queue[0]
		queue = queue[1:]

		if len(types) == 0 || slices.Contains(types, current.Entity.Type) {
			results = append(results, &current)
		}

		if current.Distance >= maxHops {
			continue
		}

		neighbors, err := db.Neighbors(ctx, current.Entity)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("neighbors of %s %s", current.Entity.Type, current.Entity.ID), err)
		}

		for _, neighbor := range neighbors {
			if visited[neighbor.ID] {
				continue
			}
			visited[neighbor.ID] = true

			newPath := make([]uuid.UUID, len(current.Path), len(current.Path)+1)
			copy(newPath, current.Path)
			newPath = append(newPath, neighbor.ID)

			queue = append(queue, TraversalResult{
				Entity:   neighbor,
				Distance: current.Distance + 1,
				Path:     newPath,
			})
		}
	}

	return results, nil
}
