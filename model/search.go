package model

import "time"

const (
	MessageShowingAll = "Showing all items"
	WarningNoTrigram  = "pg_trgm extension or similarity() function not available on the database; trigram fallback skipped"
)

// NoResultsMessage returns the message for a search without matches.
func NoResultsMessage(term string) string {
	return `No results found for "` + term + `"`
}

// SearchRequest is a single resolver call.
// A nil Type selects the aggregate search over all entity types.
type SearchRequest struct {
	Term  string      `json:"term"`
	Type  *EntityType `json:"type,omitempty"`
	Limit int         `json:"limit,omitempty"`
}

// SearchResponse is the ranked, deduplicated and size bounded result of a search.
type SearchResponse struct {
	Results []*EntitySummary `json:"results"`
	Message string           `json:"message,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

// SearchConfig holds the resolver settings.
type SearchConfig struct {
	DefaultLimit        int        `json:"default_limit"`
	AggregateLimit      int        `json:"aggregate_limit"`
	MaxLimit            int        `json:"max_limit"`
	SimilarityThreshold float64    `json:"similarity_threshold"`
	DefaultType         EntityType `json:"default_type"`
}

// DefaultSearchConfig returns the default resolver configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		DefaultLimit:        100,
		AggregateLimit:      200,
		MaxLimit:            200,
		SimilarityThreshold: 0.1,
		DefaultType:         EntityTypeConcept,
	}
}

// Normalize returns the effective limit for a requested one.
// Zero or negative limits fall back to the default of the mode, limits above
// MaxLimit are clamped.
func (c SearchConfig) Normalize(limit int, aggregate bool) int {
	if limit <= 0 {
		if aggregate {
			limit = c.AggregateLimit
		} else {
			limit = c.DefaultLimit
		}
	}
	if c.MaxLimit > 0 && limit > c.MaxLimit {
		limit = c.MaxLimit
	}
	return limit
}

// CapabilityState records which optional match capabilities the store supports.
type CapabilityState struct {
	FullText   bool      `json:"full_text"`
	Similarity bool      `json:"similarity"`
	ProbedAt   time.Time `json:"probed_at"`
}
