package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
)

var errStore = errors.New("store unavailable")

// fakeStore serves canned tier results per entity type.
type fakeStore struct {
	mu sync.Mutex

	exact      map[model.EntityType][]*model.EntitySummary
	fullText   map[model.EntityType][]*model.EntitySummary
	similarity map[model.EntityType][]*model.EntitySummary
	catalog    map[model.EntityType][]*model.EntitySummary

	capabilities model.CapabilityState
	probeErr     error
	exactErr     error
	fullTextErr  error
	similarErr   error
	failType     model.EntityType

	calls         map[string]int
	lastThreshold float64
	lastLimit     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		exact:        map[model.EntityType][]*model.EntitySummary{},
		fullText:     map[model.EntityType][]*model.EntitySummary{},
		similarity:   map[model.EntityType][]*model.EntitySummary{},
		catalog:      map[model.EntityType][]*model.EntitySummary{},
		capabilities: model.CapabilityState{FullText: true, Similarity: true},
		calls:        map[string]int{},
	}
}

func (f *fakeStore) record(name string, limit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	f.lastLimit = limit
}

func (f *fakeStore) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStore) SelectDefault(ctx context.Context, entityType model.EntityType, limit int) ([]*model.EntitySummary, error) {
	f.record(TierDefault, limit)
	if f.failType == entityType {
		return nil, errStore
	}
	results := append([]*model.EntitySummary{}, f.catalog[entityType]...)
	sortByName(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (f *fakeStore) SelectExact(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error) {
	f.record(TierExact, limit)
	if f.exactErr != nil {
		return nil, f.exactErr
	}
	return f.exact[entityType], nil
}

func (f *fakeStore) SelectContains(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error) {
	f.record(TierContains, limit)
	if f.failType == entityType {
		return nil, errStore
	}
	term = strings.ToLower(term)
	results := []*model.EntitySummary{}
	for _, s := range f.catalog[entityType] {
		if strings.Contains(strings.ToLower(s.Name), term) || strings.Contains(strings.ToLower(s.Code), term) {
			results = append(results, s)
		}
	}
	// Same order and cut as select_entities_contains.
	sortByRelevance(results, term)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (f *fakeStore) SelectFullText(ctx context.Context, entityType model.EntityType, term string, limit int) ([]*model.EntitySummary, error) {
	f.record(TierFullText, limit)
	if f.fullTextErr != nil {
		return nil, f.fullTextErr
	}
	return f.fullText[entityType], nil
}

func (f *fakeStore) SelectBySimilarity(ctx context.Context, entityType model.EntityType, term string, threshold float64, limit int) ([]*model.EntitySummary, error) {
	f.record(TierSimilarity, limit)
	f.mu.Lock()
	f.lastThreshold = threshold
	f.mu.Unlock()
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	return f.similarity[entityType], nil
}

func (f *fakeStore) ProbeCapabilities(ctx context.Context) (model.CapabilityState, error) {
	f.record("probe", 0)
	if f.probeErr != nil {
		return model.CapabilityState{}, f.probeErr
	}
	return f.capabilities, nil
}

// newTestResolver returns a resolver with its own capability cache.
func newTestResolver(store Store) *Resolver {
	r := NewResolver(store, model.DefaultSearchConfig(), helper.NewLogger("debug", "pretty"))
	r.capabilities = &CapabilityCache{}
	return r
}

func summary(entityType model.EntityType, code, name string) *model.EntitySummary {
	return &model.EntitySummary{
		ID:   uuid.New(),
		Code: code,
		Name: name,
		Type: entityType,
	}
}

func summaries(entityType model.EntityType, n int, prefix string) []*model.EntitySummary {
	result := make([]*model.EntitySummary, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, summary(entityType, prefix+uuid.NewString()[:6], prefix+" item"))
	}
	return result
}

func ids(results []*model.EntitySummary) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}

func assertUnique(t *testing.T, results []*model.EntitySummary) {
	t.Helper()
	seen := map[uuid.UUID]bool{}
	for _, r := range results {
		if seen[r.ID] {
			t.Fatalf("duplicate id %s in results", r.ID)
		}
		seen[r.ID] = true
	}
}
