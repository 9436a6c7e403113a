package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Relation is an editable link between two entity types, written as "from:to".
type Relation string

const (
	RelationDepartmentMajor Relation = "department:major"
	RelationMajorCourse     Relation = "major:course"
	RelationMajorTrack      Relation = "major:track"
	RelationTrackCourse     Relation = "track:course"
)

// AllRelations returns every editable relation.
func AllRelations() []Relation {
	return []Relation{
		RelationDepartmentMajor,
		RelationMajorCourse,
		RelationMajorTrack,
		RelationTrackCourse,
	}
}

// Valid reports whether r is a known relation.
func (r Relation) Valid() bool {
	switch r {
	case RelationDepartmentMajor, RelationMajorCourse, RelationMajorTrack, RelationTrackCourse:
		return true
	}
	return false
}

// Types returns the entity types on both ends of the relation.
func (r Relation) Types() (from EntityType, to EntityType) {
	switch r {
	case RelationDepartmentMajor:
		return EntityTypeDepartment, EntityTypeMajor
	case RelationMajorCourse:
		return EntityTypeMajor, EntityTypeCourse
	case RelationMajorTrack:
		return EntityTypeMajor, EntityTypeTrack
	case RelationTrackCourse:
		return EntityTypeTrack, EntityTypeCourse
	}
	return "", ""
}

// LinkAction is add or remove.
type LinkAction string

const (
	LinkActionAdd    LinkAction = "add"
	LinkActionRemove LinkAction = "remove"
)

// LinkRequest adds or removes a relation between two entities.
type LinkRequest struct {
	Action   LinkAction `json:"action"`
	Relation Relation   `json:"relation"`
	FromID   uuid.UUID  `json:"fromId"`
	ToID     uuid.UUID  `json:"toId"`
}

// Validate checks that all fields are set and known.
func (l *LinkRequest) Validate() error {
	if l.Action != LinkActionAdd && l.Action != LinkActionRemove {
		return fmt.Errorf("%w: action %q", ErrInvalidLink, l.Action)
	}
	if !l.Relation.Valid() {
		return fmt.Errorf("%w: relation %q", ErrInvalidLink, l.Relation)
	}
	if l.FromID == uuid.Nil || l.ToID == uuid.Nil {
		return fmt.Errorf("%w: fromId and toId are required", ErrInvalidLink)
	}
	return nil
}

// EntityDetail is an entity together with its related entities.
// Only the relations of the entity's type are set.
type EntityDetail struct {
	*Entity
	Department *EntityRef  `json:"department,omitempty"`
	Majors     []EntityRef `json:"majors,omitempty"`
	Courses    []EntityRef `json:"courses,omitempty"`
	Tracks     []EntityRef `json:"tracks,omitempty"`
}

// AdminEntities lists the linkable entities for the relationship editor.
type AdminEntities struct {
	Departments []EntityRef `json:"departments"`
	Majors      []EntityRef `json:"majors"`
	Tracks      []EntityRef `json:"tracks"`
	Courses     []EntityRef `json:"courses"`
}
