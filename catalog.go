package catalog

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/catalog/core/graph"
	"github.com/siherrmann/catalog/core/search"
	"github.com/siherrmann/catalog/database"
	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
	loadSql "github.com/siherrmann/catalog/sql"
	"golang.org/x/sync/errgroup"
)

// Catalog provides a unified interface to the entity store, the link
// editor and the search resolver.
type Catalog struct {
	DB       *helper.Database
	Entities *database.EntitiesDBHandler
	Links    *database.LinksDBHandler
	Resolver *search.Resolver
	// Logging
	log *slog.Logger
}

// graphStore combines entity lookups with link traversal for core/graph.
type graphStore struct {
	*database.EntitiesDBHandler
	*database.LinksDBHandler
}

func (g graphStore) SelectEntity(ctx context.Context, entityType model.EntityType, id uuid.UUID) (*model.Entity, error) {
	return g.EntitiesDBHandler.SelectEntity(ctx, entityType, id)
}

func (g graphStore) Neighbors(ctx context.Context, ref model.EntityRef) ([]model.EntityRef, error) {
	return g.LinksDBHandler.Neighbors(ctx, ref)
}

// NewCatalog connects to the database, loads the SQL functions, creates the
// tables and wires the resolver. A nil logger logs to stdout at info level.
func NewCatalog(config *helper.DatabaseConfiguration, searchConfig model.SearchConfig, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		opts := helper.PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				Level: slog.LevelInfo,
			},
		}
		logger = slog.New(helper.NewPrettyHandler(os.Stdout, opts))
	}

	// Initialize database
	db := helper.NewDatabase("catalog", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Entities first, links alter their tables.
	// force=false to not reload if functions already exist
	entities, err := database.NewEntitiesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	links, err := database.NewLinksDBHandler(db, entities, false)
	if err != nil {
		return nil, helper.NewError("create links handler", err)
	}

	resolver := search.NewResolver(entities, searchConfig, logger)

	return &Catalog{
		DB:       db,
		Entities: entities,
		Links:    links,
		Resolver: resolver,
		log:      logger,
	}, nil
}

// Close closes the database connection
func (c *Catalog) Close() error {
	if c.DB != nil && c.DB.Instance != nil {
		return c.DB.Instance.Close()
	}
	return nil
}

// Health reports the database status.
func (c *Catalog) Health(ctx context.Context) map[string]string {
	return c.DB.Health(ctx)
}

// Search runs the tiered search for request.Type, or the aggregate search
// over all types if no type is set.
func (c *Catalog) Search(ctx context.Context, request *model.SearchRequest) (*model.SearchResponse, error) {
	if request.Type == nil {
		return c.SearchAll(ctx, request.Term, request.Limit)
	}

	response, err := c.Resolver.Resolve(ctx, *request.Type, request.Term, request.Limit)
	if err != nil {
		return nil, helper.NewError("search", err)
	}
	return response, nil
}

// SearchAll searches every entity type by substring and ranks the merged results.
func (c *Catalog) SearchAll(ctx context.Context, term string, limit int) (*model.SearchResponse, error) {
	response, err := c.Resolver.ResolveAggregate(ctx, term, limit)
	if err != nil {
		return nil, helper.NewError("search all", err)
	}
	return response, nil
}

// UpdateLink adds or removes a relation between two entities.
func (c *Catalog) UpdateLink(ctx context.Context, request *model.LinkRequest) error {
	err := c.Links.UpdateLink(ctx, request)
	if err != nil {
		return helper.NewError("update link", err)
	}

	c.log.Info("Updated link",
		slog.String("action", string(request.Action)),
		slog.String("relation", string(request.Relation)),
		slog.String("from_id", request.FromID.String()),
		slog.String("to_id", request.ToID.String()),
	)
	return nil
}

// Detail returns a department, major or track with its links.
func (c *Catalog) Detail(ctx context.Context, entityType model.EntityType, id uuid.UUID) (*model.EntityDetail, error) {
	detail, err := c.Links.SelectDetail(ctx, entityType, id)
	if err != nil {
		return nil, helper.NewError("detail", err)
	}
	return detail, nil
}

// Related returns the entities reachable from an entity within maxHops links.
func (c *Catalog) Related(ctx context.Context, entityType model.EntityType, id uuid.UUID, maxHops int, types []model.EntityType) ([]*graph.TraversalResult, error) {
	results, err := graph.BFS(ctx, graphStore{c.Entities, c.Links}, entityType, id, maxHops, types)
	if err != nil {
		return nil, helper.NewError("related", err)
	}
	return results, nil
}

// AdminEntities lists departments, majors, tracks and courses for the link
// editor. The four lists are loaded concurrently.
func (c *Catalog) AdminEntities(ctx context.Context) (*model.AdminEntities, error) {
	result := &model.AdminEntities{}
	lists := map[model.EntityType]*[]model.EntityRef{
		model.EntityTypeDepartment: &result.Departments,
		model.EntityTypeMajor:      &result.Majors,
		model.EntityTypeTrack:      &result.Tracks,
		model.EntityTypeCourse:     &result.Courses,
	}

	g, gctx := errgroup.WithContext(ctx)
	for entityType, list := range lists {
		g.Go(func() error {
			refs, err := c.Entities.SelectEntityRefs(gctx, entityType)
			if err != nil {
				return err
			}
			*list = refs
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, helper.NewError("admin entities", err)
	}

	return result, nil
}
