package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType is the kind of catalog entity.
type EntityType string

const (
	EntityTypeConcept    EntityType = "concept"
	EntityTypeSkill      EntityType = "skill"
	EntityTypeCourse     EntityType = "course"
	EntityTypeTrack      EntityType = "track"
	EntityTypeDepartment EntityType = "department"
	EntityTypeMajor      EntityType = "major"
)

// AllEntityTypes returns every entity type in display order.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityTypeConcept,
		EntityTypeSkill,
		EntityTypeCourse,
		EntityTypeTrack,
		EntityTypeDepartment,
		EntityTypeMajor,
	}
}

// ParseEntityType parses a case-insensitive entity type name.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeConcept, EntityTypeSkill, EntityTypeCourse,
		EntityTypeTrack, EntityTypeDepartment, EntityTypeMajor:
		return true
	}
	return false
}

// Table returns the name of the table holding entities of type t.
func (t EntityType) Table() string {
	return string(t) + "s"
}

// EntitySummary is the uniform projection of any catalog entity returned by searches.
type EntitySummary struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Type        EntityType `json:"type"`
	// Score is the rank reported by the tier that produced the summary.
	Score float64 `json:"-"`
}

// Entity is a full catalog entity row.
type Entity struct {
	ID          uuid.UUID  `json:"id"`
	Type        EntityType `json:"type"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Metadata    Metadata   `json:"metadata,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Summary projects the entity to an EntitySummary.
func (e *Entity) Summary() *EntitySummary {
	return &EntitySummary{
		ID:          e.ID,
		Code:        e.Code,
		Name:        e.Name,
		Description: e.Description,
		Type:        e.Type,
	}
}

// EntityRef is the short reference used in admin lists and relations.
type EntityRef struct {
	ID   uuid.UUID  `json:"id"`
	Code string     `json:"code"`
	Name string     `json:"name"`
	Type EntityType `json:"type,omitempty"`
}
