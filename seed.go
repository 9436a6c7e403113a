package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
)

type seedEntity struct {
	entityType  model.EntityType
	code        string
	name        string
	description string
}

type seedLink struct {
	relation model.Relation
	from     string
	to       string
}

// Sample kindergarten catalog.
var seedEntities = []seedEntity{
	{model.EntityTypeConcept, "COLORS", "Colors", "Recognizing and naming basic colors like red, blue, and yellow."},
	{model.EntityTypeConcept, "SHAPES", "Shapes", "Identifying simple shapes such as circle, square, and triangle."},
	{model.EntityTypeConcept, "COUNTING", "Counting", "Understanding numbers 1 through 10 and how to count objects."},
	{model.EntityTypeConcept, "ALPHABET", "Alphabet", "Knowing the letters A through Z and their sounds."},
	{model.EntityTypeConcept, "OPPOSITES", "Opposites", "Learning pairs like big/small, hot/cold, up/down."},
	{model.EntityTypeConcept, "DAYS", "Days of the Week", "Remembering the seven days and their order."},
	{model.EntityTypeConcept, "SEASONS", "Seasons", "Recognizing spring, summer, fall, and winter."},
	{model.EntityTypeConcept, "FEELINGS", "Feelings", "Identifying basic emotions such as happy, sad, and angry."},
	{model.EntityTypeConcept, "SAFETY", "Safety Basics", "Understanding simple safety rules like looking both ways before crossing the street."},
	{model.EntityTypeConcept, "MANNERS", "Manners", "Saying please, thank you, and taking turns during play."},

	{model.EntityTypeSkill, "OBSERVE", "Observation", "Noticing details and patterns in the environment."},
	{model.EntityTypeSkill, "COMPARE", "Comparison", "Identifying similarities and differences."},
	{model.EntityTypeSkill, "CLASSIFY", "Classification", "Grouping objects by attributes."},

	{model.EntityTypeCourse, "K-ARTS", "Kindergarten Arts", "Introduction to colors, shapes, and creative expression."},
	{model.EntityTypeCourse, "K-MATH", "Kindergarten Math", "Counting, sorting, and simple number concepts."},
	{model.EntityTypeCourse, "K-READ", "Kindergarten Reading", "Early literacy, alphabet recognition, and phonics."},

	{model.EntityTypeTrack, "FOUND", "Foundations", "Broad early-learning track covering basic cognitive and social skills."},
	{model.EntityTypeTrack, "LIT", "Early Literacy", "Focused track on reading readiness and communication."},

	{model.EntityTypeDepartment, "EARLY-ED", "Early Education", "Department overseeing kindergarten and early learning programs."},
	{model.EntityTypeDepartment, "STEM", "STEM", "Science, Technology, Engineering, and Mathematics department."},

	{model.EntityTypeMajor, "EDU-K", "Early Childhood Education", "Major focused on foundational teaching practices."},
	{model.EntityTypeMajor, "DESIGN", "Creative Design", "Major centered around visual and creative arts learning."},
}

var seedLinks = []seedLink{
	{model.RelationDepartmentMajor, "EARLY-ED", "EDU-K"},
	{model.RelationDepartmentMajor, "STEM", "DESIGN"},
	{model.RelationMajorCourse, "EDU-K", "K-ARTS"},
	{model.RelationMajorCourse, "EDU-K", "K-READ"},
	{model.RelationMajorCourse, "DESIGN", "K-ARTS"},
	{model.RelationMajorCourse, "DESIGN", "K-MATH"},
	{model.RelationMajorTrack, "EDU-K", "FOUND"},
	{model.RelationMajorTrack, "EDU-K", "LIT"},
	{model.RelationMajorTrack, "DESIGN", "FOUND"},
	{model.RelationTrackCourse, "FOUND", "K-ARTS"},
	{model.RelationTrackCourse, "FOUND", "K-MATH"},
	{model.RelationTrackCourse, "LIT", "K-READ"},
}

// Seed inserts the sample catalog and its links. Entities are upserted by
// code, so seeding twice leaves the catalog unchanged.
func (c *Catalog) Seed(ctx context.Context) error {
	ids := make(map[model.EntityType]map[string]uuid.UUID)

	for _, s := range seedEntities {
		description := s.description
		entity := &model.Entity{
			Type:        s.entityType,
			Code:        s.code,
			Name:        s.name,
			Description: &description,
			Metadata:    model.Metadata{"source": "seed"},
		}
		err := c.Entities.InsertEntity(ctx, entity)
		if err != nil {
			return helper.NewError(fmt.Sprintf("seed %s %s", s.entityType, s.code), err)
		}

		if ids[s.entityType] == nil {
			ids[s.entityType] = make(map[string]uuid.UUID)
		}
		ids[s.entityType][s.code] = entity.ID
	}
	c.log.Info("Seeded entities", slog.Int("count", len(seedEntities)))

	for _, l := range seedLinks {
		fromType, toType := l.relation.Types()
		err := c.Links.UpdateLink(ctx, &model.LinkRequest{
			Action:   model.LinkActionAdd,
			Relation: l.relation,
			FromID:   ids[fromType][l.from],
			ToID:     ids[toType][l.to],
		})
		if err != nil {
			return helper.NewError(fmt.Sprintf("seed link %s %s-%s", l.relation, l.from, l.to), err)
		}
	}
	c.log.Info("Seeded links", slog.Int("count", len(seedLinks)))

	return nil
}
