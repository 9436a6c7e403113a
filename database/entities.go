package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
	loadSql "github.com/siherrmann/catalog/sql"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(ctx context.Context, entity *model.Entity) error
	SelectEntity(ctx context.Context, entityType model.EntityType, id uuid.UUID) (*model.Entity, error)
	DeleteEntity(ctx context.Context, entityType model.EntityType, id uuid.UUID) error
	SelectEntityRefs(ctx context.Context, entityType model.EntityType) ([]model.EntityRef, error)
	SelectDefault(ctx context.Context, entityType model.EntityType, limit int) ([]*model.EntitySummary, error)
	SelectExact(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error)
	SelectContains(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error)
	SelectFullText(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error)
	SelectBySimilarity(ctx context.Context, entityType model.EntityType, term string, threshold float64, limit int) ([]*model.EntitySummary, error)
	ProbeCapabilities(ctx context.Context) (model.CapabilityState, error)
}

// EntitiesDBHandler handles the six catalog entity tables.
type EntitiesDBHandler struct {
	db *helper.Database
}

var _ EntitiesDBHandlerFunctions = (*EntitiesDBHandler)(nil)

// NewEntitiesDBHandler creates a new entities database handler.
// It loads the entity SQL functions and creates the tables.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := loadSql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the entity tables and their name, full-text and
// (if pg_trgm is installed) trigram indexes.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		return helper.NewError("init entities", err)
	}

	h.db.Logger.Info("Checked/created entity tables")

	return nil
}

// InsertEntity inserts an entity or updates the existing one with the same code.
func (h *EntitiesDBHandler) InsertEntity(ctx context.Context, entity *model.Entity) error {
	if err := validateType(entity.Type); err != nil {
		return err
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_entity($1, $2, $3, $4, $5)`,
		entity.Type,
		entity.Code,
		entity.Name,
		entity.Description,
		entity.Metadata,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectEntity retrieves an entity by type and ID
func (h *EntitiesDBHandler) SelectEntity(ctx context.Context, entityType model.EntityType, id uuid.UUID) (*model.Entity, error) {
	if err := validateType(entityType); err != nil {
		return nil, err
	}

	entity := &model.Entity{Type: entityType}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_entity($1, $2)`,
		entityType,
		id,
	)

	err := scanEntity(row, entity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewError("scan", fmt.Errorf("%w: %s %s", model.ErrEntityNotFound, entityType, id))
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// DeleteEntity deletes an entity by type and ID
func (h *EntitiesDBHandler) DeleteEntity(ctx context.Context, entityType model.EntityType, id uuid.UUID) error {
	if err := validateType(entityType); err != nil {
		return err
	}

	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_entity($1, $2)`,
		entityType,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectEntityRefs lists all entities of a type ordered by name.
func (h *EntitiesDBHandler) SelectEntityRefs(ctx context.Context, entityType model.EntityType) ([]model.EntityRef, error) {
	if err := validateType(entityType); err != nil {
		return nil, err
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_entity_refs($1)`,
		entityType,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	refs, err := scanRefs(rows, entityType)
	if err != nil {
		return nil, helper.NewError("select entity refs", err)
	}

	return refs, nil
}

// SelectDefault returns the first limit entities of a type ordered by name.
func (h *EntitiesDBHandler) SelectDefault(ctx context.Context, entityType model.EntityType, limit int) ([]*model.EntitySummary, error) {
	return h.selectSummaries(ctx, entityType, `SELECT * FROM select_entities_default($1, $2)`, entityType, limit)
}

// SelectExact returns entities whose code, name or description equals term case-insensitively.
func (h *EntitiesDBHandler) SelectExact(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error) {
	return h.selectSummaries(ctx, entityType, `SELECT * FROM select_entities_exact($1, $2, $3)`, entityType, term, limit)
}

// SelectContains returns entities whose code, name or description contains term case-insensitively.
func (h *EntitiesDBHandler) SelectContains(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error) {
	return h.selectSummaries(ctx, entityType, `SELECT * FROM select_entities_contains($1, $2, $3)`, entityType, term, limit)
}

// SelectFullText runs an english full-text search over name, description and code,
// ordered by ts_rank descending.
func (h *EntitiesDBHandler) SelectFullText(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error) {
	return h.selectSummaries(ctx, entityType, `SELECT * FROM select_entities_fulltext($1, $2, $3)`, entityType, term, limit)
}

// SelectBySimilarity returns entities with a trigram similarity above threshold on
// code, name or description, ordered by the best of the three. Requires pg_trgm.
func (h *EntitiesDBHandler) SelectBySimilarity(ctx context.Context, entityType model.EntityType, term string, threshold float64, limit int) ([]*model.EntitySummary, error) {
	return h.selectSummaries(ctx, entityType, `SELECT * FROM select_entities_similarity($1, $2, $3, $4)`, entityType, term, threshold, limit)
}

// ProbeCapabilities checks for the english text search configuration and pg_trgm.
func (h *EntitiesDBHandler) ProbeCapabilities(ctx context.Context) (model.CapabilityState, error) {
	state := model.CapabilityState{}

	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT
			EXISTS(SELECT 1 FROM pg_ts_config WHERE cfgname = 'english'),
			EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'pg_trgm');`,
	).Scan(&state.FullText, &state.Similarity)
	if err != nil {
		return state, helper.NewError("probe capabilities", err)
	}
	state.ProbedAt = time.Now()

	return state, nil
}

func (h *EntitiesDBHandler) selectSummaries(ctx context.Context, entityType model.EntityType, query string, args ...interface{}) ([]*model.EntitySummary, error) {
	if err := validateType(entityType); err != nil {
		return nil, err
	}

	rows, err := h.db.Instance.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	summaries := []*model.EntitySummary{}
	for rows.Next() {
		var r summaryRow
		err := rows.Scan(&r.id, &r.code, &r.name, &r.description, &r.score)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		summaries = append(summaries, r.toSummary(entityType))
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return summaries, nil
}

// summaryRow is the row shape shared by all search functions.
type summaryRow struct {
	id          uuid.UUID
	code        string
	name        string
	description sql.NullString
	score       float64
}

func (r summaryRow) toSummary(entityType model.EntityType) *model.EntitySummary {
	return &model.EntitySummary{
		ID:          r.id,
		Code:        r.code,
		Name:        r.name,
		Description: nullableString(r.description),
		Type:        entityType,
		Score:       r.score,
	}
}

func scanEntity(row *sql.Row, entity *model.Entity) error {
	var description sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.Code,
		&entity.Name,
		&description,
		&entity.Metadata,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return err
	}
	entity.Description = nullableString(description)
	return nil
}

func scanRefs(rows *sql.Rows, entityType model.EntityType) ([]model.EntityRef, error) {
	defer rows.Close()

	refs := []model.EntityRef{}
	for rows.Next() {
		ref := model.EntityRef{Type: entityType}
		err := rows.Scan(&ref.ID, &ref.Code, &ref.Name)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		refs = append(refs, ref)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return refs, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func validateType(entityType model.EntityType) error {
	if !entityType.Valid() {
		return helper.NewError("validate entity type", fmt.Errorf("%w: %q", model.ErrUnknownEntityType, entityType))
	}
	return nil
}
