package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/siherrmann/catalog/model"
)

// Relevance buckets, lower is better.
const (
	rankEqual = iota
	rankPrefix
	rankWordBoundary
	rankOther
)

// relevance buckets a summary against an already lower-cased term.
func relevance(summary *model.EntitySummary, term string) int {
	name := strings.ToLower(summary.Name)
	code := strings.ToLower(summary.Code)

	switch {
	case name == term || code == term:
		return rankEqual
	case strings.HasPrefix(name, term) || strings.HasPrefix(code, term):
		return rankPrefix
	case strings.Contains(name, " "+term) || strings.Contains(name, "-"+term):
		return rankWordBoundary
	}
	return rankOther
}

// compareNames orders by name case-insensitively, then by the raw name.
func compareNames(a, b *model.EntitySummary) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// sortByRelevance orders summaries for the aggregate search: exact name or
// code first, then prefixes, then word starts inside the name, then the rest.
// Each bucket is ordered by name.
func sortByRelevance(summaries []*model.EntitySummary, term string) {
	term = strings.ToLower(term)
	slices.SortStableFunc(summaries, func(a, b *model.EntitySummary) int {
		if c := cmp.Compare(relevance(a, term), relevance(b, term)); c != 0 {
			return c
		}
		return compareNames(a, b)
	})
}

func sortByName(summaries []*model.EntitySummary) {
	slices.SortStableFunc(summaries, compareNames)
}
