package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
	loadSql "github.com/siherrmann/catalog/sql"
)

// LinksDBHandlerFunctions defines the interface for link database operations.
type LinksDBHandlerFunctions interface {
	UpdateLink(ctx context.Context, request *model.LinkRequest) error
	SelectLinked(ctx context.Context, relation model.Relation, id uuid.UUID, reverse bool) ([]model.EntityRef, error)
	SelectDetail(ctx context.Context, entityType model.EntityType, id uuid.UUID) (*model.EntityDetail, error)
	Neighbors(ctx context.Context, ref model.EntityRef) ([]model.EntityRef, error)
}

// LinksDBHandler handles the department, major, track and course relations.
type LinksDBHandler struct {
	db       *helper.Database
	entities *EntitiesDBHandler
}

var _ LinksDBHandlerFunctions = (*LinksDBHandler)(nil)

// NewLinksDBHandler creates a new links database handler.
// The entity tables must exist, so entities has to be initialized first.
func NewLinksDBHandler(db *helper.Database, entities *EntitiesDBHandler, force bool) (*LinksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if entities == nil {
		return nil, helper.NewError("entities handler validation", fmt.Errorf("entities handler is nil"))
	}

	linksDbHandler := &LinksDBHandler{
		db:       db,
		entities: entities,
	}

	err := loadSql.LoadLinksSql(linksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load links sql", err)
	}

	err = linksDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized LinksDBHandler")

	return linksDbHandler, nil
}

// CreateTable adds the department column to majors and creates the join tables.
func (h *LinksDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_links();`)
	if err != nil {
		return helper.NewError("init links", err)
	}

	h.db.Logger.Info("Checked/created link tables")

	return nil
}

// UpdateLink adds or removes a relation. Adding an existing link and removing
// a missing one are no-ops. A department:major add replaces the major's
// current department.
func (h *LinksDBHandler) UpdateLink(ctx context.Context, request *model.LinkRequest) error {
	err := request.Validate()
	if err != nil {
		return helper.NewError("validate", err)
	}

	query := `SELECT insert_link($1, $2, $3)`
	if request.Action == model.LinkActionRemove {
		query = `SELECT delete_link($1, $2, $3)`
	}

	_, err = h.db.Instance.ExecContext(ctx, query, request.Relation, request.FromID, request.ToID)
	if err != nil {
		return helper.NewError("exec", mapLinkError(err))
	}

	return nil
}

// SelectLinked returns the entities linked to id through relation. Forward
// follows the relation from its first type to its second, reverse goes back.
func (h *LinksDBHandler) SelectLinked(ctx context.Context, relation model.Relation, id uuid.UUID, reverse bool) ([]model.EntityRef, error) {
	if !relation.Valid() {
		return nil, helper.NewError("validate relation", fmt.Errorf("%w: relation %q", model.ErrInvalidLink, relation))
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_linked_entities($1, $2, $3)`,
		relation,
		id,
		reverse,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}

	from, to := relation.Types()
	linkedType := to
	if reverse {
		linkedType = from
	}

	refs, err := scanRefs(rows, linkedType)
	if err != nil {
		return nil, helper.NewError("select linked", err)
	}

	return refs, nil
}

// SelectDetail returns a department, major or track together with its links.
func (h *LinksDBHandler) SelectDetail(ctx context.Context, entityType model.EntityType, id uuid.UUID) (*model.EntityDetail, error) {
	switch entityType {
	case model.EntityTypeDepartment, model.EntityTypeMajor, model.EntityTypeTrack:
	default:
		return nil, helper.NewError("validate", fmt.Errorf("%w: %q", model.ErrUnsupportedDetail, entityType))
	}

	entity, err := h.entities.SelectEntity(ctx, entityType, id)
	if err != nil {
		return nil, helper.NewError("select entity", err)
	}

	detail := &model.EntityDetail{Entity: entity}
	switch entityType {
	case model.EntityTypeDepartment:
		detail.Majors, err = h.SelectLinked(ctx, model.RelationDepartmentMajor, id, false)
		if err != nil {
			return nil, helper.NewError("select majors", err)
		}
	case model.EntityTypeMajor:
		departments, err := h.SelectLinked(ctx, model.RelationDepartmentMajor, id, true)
		if err != nil {
			return nil, helper.NewError("select department", err)
		}
		if len(departments) > 0 {
			detail.Department = &departments[0]
		}
		detail.Courses, err = h.SelectLinked(ctx, model.RelationMajorCourse, id, false)
		if err != nil {
			return nil, helper.NewError("select courses", err)
		}
		detail.Tracks, err = h.SelectLinked(ctx, model.RelationMajorTrack, id, false)
		if err != nil {
			return nil, helper.NewError("select tracks", err)
		}
	case model.EntityTypeTrack:
		detail.Majors, err = h.SelectLinked(ctx, model.RelationMajorTrack, id, true)
		if err != nil {
			return nil, helper.NewError("select majors", err)
		}
		detail.Courses, err = h.SelectLinked(ctx, model.RelationTrackCourse, id, false)
		if err != nil {
			return nil, helper.NewError("select courses", err)
		}
	}

	return detail, nil
}

// Neighbors returns every entity directly linked to ref, in either direction.
func (h *LinksDBHandler) Neighbors(ctx context.Context, ref model.EntityRef) ([]model.EntityRef, error) {
	neighbors := []model.EntityRef{}
	for _, relation := range model.AllRelations() {
		from, to := relation.Types()
		if ref.Type != from && ref.Type != to {
			continue
		}

		linked, err := h.SelectLinked(ctx, relation, ref.ID, ref.Type == to)
		if err != nil {
			return nil, helper.NewError("neighbors", err)
		}
		neighbors = append(neighbors, linked...)
	}
	return neighbors, nil
}

// mapLinkError turns missing-row and foreign-key violations into ErrEntityNotFound.
func mapLinkError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503", "P0002":
			return fmt.Errorf("%w: %s", model.ErrEntityNotFound, pqErr.Message)
		}
	}
	return err
}
