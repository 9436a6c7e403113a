package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/siherrmann/catalog/core/graph"
	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog records the last request and returns canned answers.
type fakeCatalog struct {
	searchRequest *model.SearchRequest
	allTerm       string
	allLimit      int
	linkRequest   *model.LinkRequest
	relatedHops   int
	relatedTypes  []model.EntityType

	response *model.SearchResponse
	detail   *model.EntityDetail
	err      error
	panicMsg string
	health   map[string]string
}

func (f *fakeCatalog) Search(ctx context.Context, request *model.SearchRequest) (*model.SearchResponse, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.searchRequest = request
	return f.response, f.err
}

func (f *fakeCatalog) SearchAll(ctx context.Context, term string, limit int) (*model.SearchResponse, error) {
	f.allTerm = term
	f.allLimit = limit
	return f.response, f.err
}

func (f *fakeCatalog) UpdateLink(ctx context.Context, request *model.LinkRequest) error {
	f.linkRequest = request
	return f.err
}

func (f *fakeCatalog) Detail(ctx context.Context, entityType model.EntityType, id uuid.UUID) (*model.EntityDetail, error) {
	return f.detail, f.err
}

func (f *fakeCatalog) Related(ctx context.Context, entityType model.EntityType, id uuid.UUID, maxHops int, types []model.EntityType) ([]*graph.TraversalResult, error) {
	f.relatedHops = maxHops
	f.relatedTypes = types
	return []*graph.TraversalResult{{Entity: model.EntityRef{ID: id, Type: entityType}, Path: []uuid.UUID{id}}}, f.err
}

func (f *fakeCatalog) AdminEntities(ctx context.Context) (*model.AdminEntities, error) {
	return &model.AdminEntities{
		Departments: []model.EntityRef{{ID: uuid.New(), Code: "STEM", Name: "STEM"}},
		Majors:      []model.EntityRef{},
		Tracks:      []model.EntityRef{},
		Courses:     []model.EntityRef{},
	}, f.err
}

func (f *fakeCatalog) Health(ctx context.Context) map[string]string {
	if f.health != nil {
		return f.health
	}
	return map[string]string{"status": "up"}
}

func newTestServer(catalog *fakeCatalog) http.Handler {
	return NewServer(catalog, model.EntityTypeConcept, helper.NewLogger("debug", "pretty")).Handler()
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestSearchRoute(t *testing.T) {
	t.Run("Defaults to concept and passes term and limit", func(t *testing.T) {
		catalog := &fakeCatalog{response: &model.SearchResponse{Results: []*model.EntitySummary{}, Message: `No results found for "x"`}}
		rr := do(t, newTestServer(catalog), http.MethodGet, "/api/search?q=x&limit=5", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		require.NotNil(t, catalog.searchRequest)
		assert.Equal(t, model.EntityTypeConcept, *catalog.searchRequest.Type)
		assert.Equal(t, "x", catalog.searchRequest.Term)
		assert.Equal(t, 5, catalog.searchRequest.Limit)

		body := decode[map[string]any](t, rr)
		assert.Equal(t, []any{}, body["results"], "Expected an empty array, not null")
		assert.Equal(t, `No results found for "x"`, body["message"])
		assert.NotContains(t, body, "warning")
	})

	t.Run("Type is parsed case-insensitively", func(t *testing.T) {
		catalog := &fakeCatalog{response: &model.SearchResponse{Results: []*model.EntitySummary{}}}
		rr := do(t, newTestServer(catalog), http.MethodGet, "/api/search?q=x&type=Course", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, model.EntityTypeCourse, *catalog.searchRequest.Type)
	})

	t.Run("Results carry the documented fields", func(t *testing.T) {
		description := "Basic colors"
		id := uuid.New()
		catalog := &fakeCatalog{response: &model.SearchResponse{
			Results: []*model.EntitySummary{{ID: id, Code: "COLORS", Name: "Colors", Description: &description, Type: model.EntityTypeConcept, Score: 0.7}},
			Warning: model.WarningNoTrigram,
		}}
		rr := do(t, newTestServer(catalog), http.MethodGet, "/api/search?q=colors", "")

		require.Equal(t, http.StatusOK, rr.Code)
		body := decode[map[string]any](t, rr)
		assert.Equal(t, model.WarningNoTrigram, body["warning"])
		results := body["results"].([]any)
		require.Len(t, results, 1)
		result := results[0].(map[string]any)
		assert.Equal(t, id.String(), result["id"])
		assert.Equal(t, "Basic colors", result["description"])
		assert.Equal(t, "concept", result["type"])
		assert.NotContains(t, result, "score")
		assert.NotContains(t, result, "Score")
	})

	t.Run("Unknown type is a bad request", func(t *testing.T) {
		catalog := &fakeCatalog{}
		rr := do(t, newTestServer(catalog), http.MethodGet, "/api/search?q=x&type=planet", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Nil(t, catalog.searchRequest)
		assert.Contains(t, decode[errorResponse](t, rr).Error, "unknown entity type")
	})

	t.Run("Invalid limit is a bad request", func(t *testing.T) {
		for _, limit := range []string{"abc", "-1"} {
			rr := do(t, newTestServer(&fakeCatalog{}), http.MethodGet, "/api/search?q=x&limit="+limit, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code, "limit %q", limit)
		}
	})

	t.Run("Fatal failure is a generic 500", func(t *testing.T) {
		catalog := &fakeCatalog{err: helper.NewError("exact tier", errors.New("pq: connection refused at 10.0.0.3"))}
		rr := do(t, newTestServer(catalog), http.MethodGet, "/api/search?q=x", "")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "internal error", decode[errorResponse](t, rr).Error)
		assert.NotContains(t, rr.Body.String(), "10.0.0.3")
	})

	t.Run("Validation errors do not leak traces", func(t *testing.T) {
		catalog := &fakeCatalog{err: helper.NewError("resolve", fmt.Errorf("%w: %q", model.ErrUnknownEntityType, "planet"))}
		rr := do(t, newTestServer(catalog), http.MethodGet, "/api/search?q=x", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, `unknown entity type: "planet"`, decode[errorResponse](t, rr).Error)
	})

	t.Run("Panics are recovered as JSON", func(t *testing.T) {
		catalog := &fakeCatalog{panicMsg: "boom"}
		rr := do(t, newTestServer(catalog), http.MethodGet, "/api/search?q=x", "")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "internal error", decode[errorResponse](t, rr).Error)
	})

	t.Run("Request id is echoed", func(t *testing.T) {
		catalog := &fakeCatalog{response: &model.SearchResponse{Results: []*model.EntitySummary{}}}
		rr := do(t, newTestServer(catalog), http.MethodGet, "/api/search", "")
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})
}

func TestSearchAllRoute(t *testing.T) {
	catalog := &fakeCatalog{response: &model.SearchResponse{Results: []*model.EntitySummary{}, Message: model.MessageShowingAll}}
	rr := do(t, newTestServer(catalog), http.MethodGet, "/api/search/all?q=count&limit=50", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "count", catalog.allTerm)
	assert.Equal(t, 50, catalog.allLimit)
}

func TestAdminRoutes(t *testing.T) {
	t.Run("Entities", func(t *testing.T) {
		rr := do(t, newTestServer(&fakeCatalog{}), http.MethodGet, "/api/admin/entities", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decode[model.AdminEntities](t, rr)
		assert.Len(t, body.Departments, 1)
	})

	t.Run("Detail", func(t *testing.T) {
		id := uuid.New()
		catalog := &fakeCatalog{detail: &model.EntityDetail{Entity: &model.Entity{ID: id, Type: model.EntityTypeMajor, Code: "EDU-K", Name: "Early Childhood Education"}}}
		rr := do(t, newTestServer(catalog), http.MethodGet, "/api/admin/detail?type=major&id="+id.String(), "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "EDU-K")
	})

	t.Run("Detail errors", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
			err    error
			status int
		}{
			{"Missing id", "/api/admin/detail?type=major", nil, http.StatusBadRequest},
			{"Invalid id", "/api/admin/detail?type=major&id=nope", nil, http.StatusBadRequest},
			{"Unsupported type", "/api/admin/detail?type=concept&id=" + uuid.NewString(), model.ErrUnsupportedDetail, http.StatusBadRequest},
			{"Not found", "/api/admin/detail?type=major&id=" + uuid.NewString(), helper.NewError("select", model.ErrEntityNotFound), http.StatusNotFound},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				rr := do(t, newTestServer(&fakeCatalog{err: test.err}), http.MethodGet, test.target, "")
				assert.Equal(t, test.status, rr.Code)
			})
		}
	})

	t.Run("Related", func(t *testing.T) {
		catalog := &fakeCatalog{}
		rr := do(t, newTestServer(catalog), http.MethodGet, "/api/admin/related?type=major&id="+uuid.NewString()+"&hops=2&types=course,track", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, catalog.relatedHops)
		assert.Equal(t, []model.EntityType{model.EntityTypeCourse, model.EntityTypeTrack}, catalog.relatedTypes)

		rr = do(t, newTestServer(catalog), http.MethodGet, "/api/admin/related?type=major&id="+uuid.NewString()+"&hops=-2", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Links", func(t *testing.T) {
		catalog := &fakeCatalog{}
		body := fmt.Sprintf(`{"action":"add","relation":"major:course","fromId":%q,"toId":%q}`, uuid.NewString(), uuid.NewString())
		rr := do(t, newTestServer(catalog), http.MethodPost, "/api/admin/links", body)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, map[string]bool{"ok": true}, decode[map[string]bool](t, rr))
		require.NotNil(t, catalog.linkRequest)
		assert.Equal(t, model.RelationMajorCourse, catalog.linkRequest.Relation)
	})

	t.Run("Invalid links", func(t *testing.T) {
		for _, body := range []string{
			`not json`,
			`{"action":"toggle","relation":"major:course","fromId":"` + uuid.NewString() + `","toId":"` + uuid.NewString() + `"}`,
			`{"action":"add","relation":"course:skill","fromId":"` + uuid.NewString() + `","toId":"` + uuid.NewString() + `"}`,
			`{"action":"add","relation":"major:course"}`,
		} {
			catalog := &fakeCatalog{}
			rr := do(t, newTestServer(catalog), http.MethodPost, "/api/admin/links", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, body)
			assert.Nil(t, catalog.linkRequest)
		}
	})
}

func TestHealthAndMetrics(t *testing.T) {
	RegisterMetrics()

	t.Run("Healthy", func(t *testing.T) {
		rr := do(t, newTestServer(&fakeCatalog{}), http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Unhealthy", func(t *testing.T) {
		rr := do(t, newTestServer(&fakeCatalog{health: map[string]string{"status": "down"}}), http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("Requests are counted by route pattern", func(t *testing.T) {
		before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/healthz", "200"))
		do(t, newTestServer(&fakeCatalog{}), http.MethodGet, "/healthz", "")
		after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/healthz", "200"))
		assert.Equal(t, before+1, after)
	})

	t.Run("Metrics endpoint", func(t *testing.T) {
		rr := do(t, newTestServer(&fakeCatalog{}), http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "catalog_http_requests_total")
	})
}
