package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/siherrmann/catalog/core/graph"
	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
)

// Catalog is what the HTTP API serves. *catalog.Catalog implements it.
type Catalog interface {
	Search(ctx context.Context, request *model.SearchRequest) (*model.SearchResponse, error)
	SearchAll(ctx context.Context, term string, limit int) (*model.SearchResponse, error)
	UpdateLink(ctx context.Context, request *model.LinkRequest) error
	Detail(ctx context.Context, entityType model.EntityType, id uuid.UUID) (*model.EntityDetail, error)
	Related(ctx context.Context, entityType model.EntityType, id uuid.UUID, maxHops int, types []model.EntityType) ([]*graph.TraversalResult, error)
	AdminEntities(ctx context.Context) (*model.AdminEntities, error)
	Health(ctx context.Context) map[string]string
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// badRequestErrors are reported to the client with their message.
var badRequestErrors = []error{
	model.ErrUnknownEntityType,
	model.ErrInvalidSearchLimit,
	model.ErrInvalidLink,
	model.ErrUnsupportedDetail,
	model.ErrInvalidRequest,
}

// Server is the HTTP API of the catalog.
type Server struct {
	catalog     Catalog
	defaultType model.EntityType
	logger      *slog.Logger
}

// NewServer creates an HTTP API server. Searches without a type use defaultType.
func NewServer(catalog Catalog, defaultType model.EntityType, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		catalog:     catalog,
		defaultType: defaultType,
		logger:      logger,
	}
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(Middleware())

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.search)
		r.Get("/search/all", s.searchAll)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/entities", s.adminEntities)
			r.Get("/detail", s.detail)
			r.Get("/related", s.related)
			r.Post("/links", s.updateLink)
		})
	})

	return r
}

// search handles GET /api/search?q=&type=&limit=.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	entityType := s.defaultType
	if raw := query.Get("type"); raw != "" {
		parsed, err := model.ParseEntityType(raw)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		entityType = parsed
	}

	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response, err := s.catalog.Search(r.Context(), &model.SearchRequest{
		Term:  query.Get("q"),
		Type:  &entityType,
		Limit: limit,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// searchAll handles GET /api/search/all?q=&limit=.
func (s *Server) searchAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response, err := s.catalog.SearchAll(r.Context(), query.Get("q"), limit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) adminEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := s.catalog.AdminEntities(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities)
}

// detail handles GET /api/admin/detail?type=&id=.
func (s *Server) detail(w http.ResponseWriter, r *http.Request) {
	entityType, id, err := parseEntity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	detail, err := s.catalog.Detail(r.Context(), entityType, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// related handles GET /api/admin/related?type=&id=&hops=&types=.
func (s *Server) related(w http.ResponseWriter, r *http.Request) {
	entityType, id, err := parseEntity(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	hops := 1
	if raw := r.URL.Query().Get("hops"); raw != "" {
		hops, err = strconv.Atoi(raw)
		if err != nil || hops < 0 {
			s.handleError(w, r, fmt.Errorf("%w: hops must be a non-negative integer", model.ErrInvalidRequest))
			return
		}
	}

	var types []model.EntityType
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t, err := model.ParseEntityType(part)
			if err != nil {
				s.handleError(w, r, err)
				return
			}
			types = append(types, t)
		}
	}

	results, err := s.catalog.Related(r.Context(), entityType, id, hops, types)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// updateLink handles POST /api/admin/links.
func (s *Server) updateLink(w http.ResponseWriter, r *http.Request) {
	var request model.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.handleError(w, r, fmt.Errorf("%w: body is not a link request", model.ErrInvalidRequest))
		return
	}

	if err := request.Validate(); err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := s.catalog.UpdateLink(r.Context(), &request); err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := s.catalog.Health(r.Context())
	if status["status"] != "up" {
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleError writes 400 for invalid input, 404 for missing entities and a
// generic 500 for everything else. Internal details are only logged.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := chiMiddleware.GetReqID(r.Context())

	for _, sentinel := range badRequestErrors {
		if errors.Is(err, sentinel) {
			s.logger.Warn("Bad request", slog.String("request_id", requestID), slog.String("error", err.Error()))
			writeError(w, http.StatusBadRequest, clientMessage(err, sentinel))
			return
		}
	}

	if errors.Is(err, model.ErrEntityNotFound) {
		writeError(w, http.StatusNotFound, model.ErrEntityNotFound.Error())
		return
	}

	s.logger.Error("Request failed", slog.String("request_id", requestID), slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// clientMessage strips helper traces from err, falling back to the sentinel.
func clientMessage(err error, sentinel error) string {
	for unwrapped := err; unwrapped != nil; unwrapped = errors.Unwrap(unwrapped) {
		if _, traced := unwrapped.(helper.Error); traced {
			continue
		}
		if strings.HasPrefix(unwrapped.Error(), sentinel.Error()) {
			return unwrapped.Error()
		}
	}
	return sentinel.Error()
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidSearchLimit, raw)
	}
	return limit, nil
}

func parseEntity(r *http.Request) (model.EntityType, uuid.UUID, error) {
	query := r.URL.Query()
	if query.Get("type") == "" || query.Get("id") == "" {
		return "", uuid.Nil, fmt.Errorf("%w: type and id are required", model.ErrInvalidRequest)
	}

	entityType, err := model.ParseEntityType(query.Get("type"))
	if err != nil {
		return "", uuid.Nil, err
	}

	id, err := uuid.Parse(query.Get("id"))
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: invalid id %q", model.ErrInvalidRequest, query.Get("id"))
	}

	return entityType, id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
