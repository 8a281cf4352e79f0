// Package api serves the project repository as a JSON API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/projdesk/projdesk/pkg/log"
	"github.com/projdesk/projdesk/pkg/proj"
)

type ProjectRepository interface {
	List(ctx context.Context, filter proj.ListFilter) ([]proj.Project, error)
	GetByID(ctx context.Context, id string) (proj.Project, bool, error)
	Create(ctx context.Context, input proj.CreateInput) (proj.Project, error)
	Update(ctx context.Context, id string, patch proj.Patch) (proj.Project, error)
	Remove(ctx context.Context, id string) error
}

type Handler struct {
	repo     ProjectRepository
	logger   log.Logger
	registry *prometheus.Registry
	metrics  *metrics
}

type Config struct {
	Repository ProjectRepository
	Logger     log.Logger
	// Registry receives the API metrics. A private registry is created when nil.
	Registry *prometheus.Registry
}

type errorResponse struct {
	Error  string      `json:"error"`
	Field  string      `json:"field,omitempty"`
	Reason proj.Reason `json:"reason,omitempty"`
}

func NewHandler(cfg Config) *Handler {
	h := &Handler{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		registry: cfg.Registry,
	}

	if h.logger == nil {
		h.logger = log.NewNopLogger()
	}

	if h.registry == nil {
		h.registry = prometheus.NewRegistry()
	}

	h.metrics = newMetrics(h.registry)

	return h
}

// RegisterRoutes mounts the API under /api and the metrics endpoint under
// /metrics on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s := r.PathPrefix("/api").Subrouter()
	s.HandleFunc("/projects", h.instrument("list", h.listProjects)).Methods(http.MethodGet)
	s.HandleFunc("/projects", h.instrument("create", h.createProject)).Methods(http.MethodPost)
	s.HandleFunc("/projects/{id}", h.instrument("get", h.getProject)).Methods(http.MethodGet)
	s.HandleFunc("/projects/{id}", h.instrument("update", h.updateProject)).Methods(http.MethodPatch)
	s.HandleFunc("/projects/{id}", h.instrument("remove", h.removeProject)).Methods(http.MethodDelete)
	s.PathPrefix("/").HandlerFunc(h.notFound)
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.List(r.Context(), proj.ListFilter{SearchExpr: r.URL.Query().Get("q")})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, fmt.Errorf("api: failed to list projects: %w", err))
		return
	}

	h.writeJSON(w, http.StatusOK, projects)
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	project, ok, err := h.repo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, fmt.Errorf("api: failed to get project: %w", err))
		return
	}

	if !ok {
		h.writeError(w, http.StatusNotFound, proj.ErrProjectNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, project)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var input proj.CreateInput

	if err := decodeBody(r, &input); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	project, err := h.repo.Create(r.Context(), input)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, project)
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var patch proj.Patch

	if err := decodeBody(r, &patch); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	project, err := h.repo.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, project)
}

func (h *Handler) removeProject(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, http.StatusInternalServerError, fmt.Errorf("api: failed to remove project: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) notFound(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

// decodeBody rejects any field the target type does not declare, so callers
// cannot set system fields such as `id` or `updatedAt`.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("api: invalid request body: %w", err)
	}

	return nil
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error) {
	var validationErr *proj.ValidationError

	switch {
	case errors.As(err, &validationErr):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  validationErr.Message(),
			Field:  validationErr.Field,
			Reason: validationErr.Reason,
		})
	case errors.Is(err, proj.ErrProjectNotFound):
		h.writeError(w, http.StatusNotFound, err)
	default:
		h.writeError(w, http.StatusInternalServerError, err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		h.logger.Errorw("Request failed.", "error", err)
		h.writeJSON(w, code, errorResponse{Error: http.StatusText(code)})
		return
	}

	h.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debugw("Failed to write response.", "error", err)
	}
}
