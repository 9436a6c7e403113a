package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/siherrmann/catalog/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAggregate(t *testing.T) {
	ctx := context.Background()

	newStore := func() *fakeStore {
		store := newFakeStore()
		store.catalog[model.EntityTypeConcept] = []*model.EntitySummary{
			summary(model.EntityTypeConcept, "CON-1", "Counting backwards"),
			summary(model.EntityTypeConcept, "CON-2", "Skip counting"),
		}
		store.catalog[model.EntityTypeSkill] = []*model.EntitySummary{
			summary(model.EntityTypeSkill, "SK-1", "Counting"),
			summary(model.EntityTypeSkill, "SK-2", "Recounting stories"),
		}
		store.catalog[model.EntityTypeCourse] = []*model.EntitySummary{
			summary(model.EntityTypeCourse, "COUNTING", "Numbers"),
			summary(model.EntityTypeCourse, "M-1", "Pre-counting games"),
		}
		return store
	}

	t.Run("Ranks by relevance across types", func(t *testing.T) {
		store := newStore()
		resolver := newTestResolver(store)

		response, err := resolver.ResolveAggregate(ctx, "counting", 0)
		require.NoError(t, err)

		names := []string{}
		for _, r := range response.Results {
			names = append(names, r.Name)
		}
		assert.Equal(t, []string{
			"Counting",           // equal name
			"Numbers",            // equal code
			"Counting backwards", // prefix
			"Pre-counting games", // after hyphen
			"Skip counting",      // after space
			"Recounting stories", // substring only
		}, names)
		assert.Empty(t, response.Message)
		assert.Equal(t, len(model.AllEntityTypes()), store.count(TierContains))
		assertUnique(t, response.Results)
	})

	t.Run("Truncates to the limit after ranking", func(t *testing.T) {
		store := newStore()
		resolver := newTestResolver(store)

		response, err := resolver.ResolveAggregate(ctx, "counting", 2)
		require.NoError(t, err)
		require.Len(t, response.Results, 2)
		assert.Equal(t, "Counting", response.Results[0].Name)
		assert.Equal(t, "Numbers", response.Results[1].Name)
	})

	t.Run("Per-type limit keeps the most relevant rows", func(t *testing.T) {
		store := newFakeStore()
		store.catalog[model.EntityTypeConcept] = []*model.EntitySummary{
			summary(model.EntityTypeConcept, "C-1", "Aloud reading"),
			summary(model.EntityTypeConcept, "C-2", "Bread baking"),
			summary(model.EntityTypeConcept, "READ", "Zoo visit"),
		}
		resolver := newTestResolver(store)

		response, err := resolver.ResolveAggregate(ctx, "read", 2)
		require.NoError(t, err)
		require.Len(t, response.Results, 2)
		assert.Equal(t, "Zoo visit", response.Results[0].Name)
		assert.Equal(t, "Aloud reading", response.Results[1].Name)
	})

	t.Run("Default limit is the aggregate limit", func(t *testing.T) {
		store := newFakeStore()
		for i := 0; i < 300; i++ {
			store.catalog[model.EntityTypeTrack] = append(store.catalog[model.EntityTypeTrack],
				summary(model.EntityTypeTrack, fmt.Sprintf("T-%03d", i), fmt.Sprintf("Track %03d", i)))
		}
		resolver := newTestResolver(store)

		response, err := resolver.ResolveAggregate(ctx, "track", 0)
		require.NoError(t, err)
		assert.Len(t, response.Results, 200)
	})

	t.Run("Empty term lists every type by name", func(t *testing.T) {
		store := newStore()
		resolver := newTestResolver(store)

		response, err := resolver.ResolveAggregate(ctx, " ", 0)
		require.NoError(t, err)
		assert.Equal(t, model.MessageShowingAll, response.Message)
		require.Len(t, response.Results, 6)
		for i := 1; i < len(response.Results); i++ {
			assert.LessOrEqual(t, compareNames(response.Results[i-1], response.Results[i]), 0)
		}
		assert.Equal(t, 0, store.count(TierContains))
	})

	t.Run("No results", func(t *testing.T) {
		resolver := newTestResolver(newStore())

		response, err := resolver.ResolveAggregate(ctx, "zebra", 0)
		require.NoError(t, err)
		assert.NotNil(t, response.Results)
		assert.Empty(t, response.Results)
		assert.Equal(t, `No results found for "zebra"`, response.Message)
	})

	t.Run("A failing type fails the request", func(t *testing.T) {
		store := newStore()
		store.failType = model.EntityTypeMajor
		resolver := newTestResolver(store)

		response, err := resolver.ResolveAggregate(ctx, "counting", 0)
		assert.Nil(t, response)
		assert.True(t, errors.Is(err, errStore))
	})
}

func TestSortByRelevance(t *testing.T) {
	t.Run("Case-insensitive buckets", func(t *testing.T) {
		items := []*model.EntitySummary{
			summary(model.EntityTypeConcept, "x", "b shapes"),
			summary(model.EntityTypeConcept, "x", "Shapes"),
			summary(model.EntityTypeConcept, "x", "SHAPES and colors"),
			summary(model.EntityTypeConcept, "x", "a shapes"),
		}
		sortByRelevance(items, "sHaPeS")

		assert.Equal(t, "Shapes", items[0].Name)
		assert.Equal(t, "SHAPES and colors", items[1].Name)
		assert.Equal(t, "a shapes", items[2].Name)
		assert.Equal(t, "b shapes", items[3].Name)
	})

	t.Run("Relevance buckets", func(t *testing.T) {
		tests := []struct {
			name     string
			code     string
			expected int
		}{
			{"Reading", "R1", rankEqual},
			{"Other", "reading", rankEqual},
			{"Reading aloud", "R2", rankPrefix},
			{"Other", "READING-1", rankPrefix},
			{"Shared reading", "R3", rankWordBoundary},
			{"Pre-reading", "R4", rankWordBoundary},
			{"Proofreading", "R5", rankOther},
		}
		for _, test := range tests {
			s := summary(model.EntityTypeSkill, test.code, test.name)
			assert.Equal(t, test.expected, relevance(s, "reading"), "name %q code %q", test.name, test.code)
		}
	})
}
