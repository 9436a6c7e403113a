package search

import (
	"github.com/google/uuid"
	"github.com/siherrmann/catalog/model"
)

// orderedSet keeps summaries in insertion order and drops repeated ids.
// The first summary added for an id is kept.
type orderedSet struct {
	items []*model.EntitySummary
	seen  map[uuid.UUID]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{
		items: []*model.EntitySummary{},
		seen:  make(map[uuid.UUID]struct{}),
	}
}

// add appends the unseen summaries and returns how many were new.
func (s *orderedSet) add(summaries []*model.EntitySummary) int {
	added := 0
	for _, summary := range summaries {
		if summary == nil {
			continue
		}
		if _, ok := s.seen[summary.ID]; ok {
			continue
		}
		s.seen[summary.ID] = struct{}{}
		s.items = append(s.items, summary)
		added++
	}
	return added
}

func (s *orderedSet) len() int {
	return len(s.items)
}

// truncated returns at most limit summaries.
func (s *orderedSet) truncated(limit int) []*model.EntitySummary {
	if limit >= 0 && len(s.items) > limit {
		return s.items[:limit]
	}
	return s.items
}
