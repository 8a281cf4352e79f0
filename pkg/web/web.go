// Package web serves the server-rendered projdesk UI: a home tab and a
// projects tab. Unknown paths redirect to the home tab.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/projdesk/projdesk/pkg/log"
	"github.com/projdesk/projdesk/pkg/proj"
)

//go:embed templates
var templateFS embed.FS

type ProjectRepository interface {
	List(ctx context.Context, filter proj.ListFilter) ([]proj.Project, error)
	GetByID(ctx context.Context, id string) (proj.Project, bool, error)
	Create(ctx context.Context, input proj.CreateInput) (proj.Project, error)
	Update(ctx context.Context, id string, patch proj.Patch) (proj.Project, error)
	Remove(ctx context.Context, id string) error
}

type Handler struct {
	repo    ProjectRepository
	backend string
	logger  log.Logger
	pages   map[string]*template.Template
}

type Config struct {
	Repository ProjectRepository
	// Backend names the storage backend, shown on the home tab.
	Backend string
	Logger  log.Logger
}

type formData struct {
	Name        string
	Description string
	Error       string
}

type pageData struct {
	Title    string
	Tab      string
	Backend  string
	Query    string
	Projects []proj.Project
	Editing  *proj.Project
	Deleting *proj.Project
	Form     formData
}

var templateFuncs = template.FuncMap{
	"formatTime": func(ms int64) string {
		return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
	},
}

func NewHandler(cfg Config) (*Handler, error) {
	h := &Handler{
		repo:    cfg.Repository,
		backend: cfg.Backend,
		logger:  cfg.Logger,
		pages:   make(map[string]*template.Template),
	}

	if h.logger == nil {
		h.logger = log.NewNopLogger()
	}

	for _, page := range []string{"home", "projects"} {
		tmpl, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("web: failed to parse %v template: %w", page, err)
		}

		h.pages[page] = tmpl
	}

	return h, nil
}

// RegisterRoutes mounts the pages on r. Requests matching no page, by path or
// by method, redirect to the home tab.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.home).Methods(http.MethodGet)
	r.HandleFunc("/projects", h.listProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects", h.createProject).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}", h.updateProject).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/delete", h.removeProject).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(redirectHome)
	r.MethodNotAllowedHandler = http.HandlerFunc(redirectHome)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	code := http.StatusFound
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		code = http.StatusSeeOther
	}

	http.Redirect(w, r, "/", code)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "home", pageData{
		Title:   "Home",
		Tab:     "home",
		Backend: h.backend,
	})
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := pageData{Query: q.Get("q")}

	if id := q.Get("edit"); id != "" {
		project, ok, err := h.repo.GetByID(r.Context(), id)
		if err != nil {
			h.serverError(w, err)
			return
		}
		if ok {
			data.Editing = &project
			data.Form = formData{Name: project.Name, Description: project.Description}
		}
	}

	if id := q.Get("delete"); id != "" {
		project, ok, err := h.repo.GetByID(r.Context(), id)
		if err != nil {
			h.serverError(w, err)
			return
		}
		if ok {
			data.Deleting = &project
		}
	}

	h.renderProjects(w, r, http.StatusOK, data)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	input := proj.CreateInput{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}

	_, err := h.repo.Create(r.Context(), input)

	var validationErr *proj.ValidationError
	if errors.As(err, &validationErr) {
		h.renderProjects(w, r, http.StatusUnprocessableEntity, pageData{
			Form: formData{Name: input.Name, Description: input.Description, Error: validationErr.Message()},
		})
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}

	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	name, description := r.PostFormValue("name"), r.PostFormValue("description")

	updated, err := h.repo.Update(r.Context(), id, proj.Patch{Name: &name, Description: &description})

	var validationErr *proj.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.renderProjects(w, r, http.StatusUnprocessableEntity, pageData{
			Editing: &proj.Project{ID: id},
			Form:    formData{Name: name, Description: description, Error: validationErr.Message()},
		})
		return
	case errors.Is(err, proj.ErrProjectNotFound):
		h.renderProjects(w, r, http.StatusNotFound, pageData{
			Form: formData{Error: "Project not found"},
		})
		return
	case err != nil:
		h.serverError(w, err)
		return
	}

	h.logger.Debugw("Project updated from form.", "projectID", updated.ID)

	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

func (h *Handler) removeProject(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.serverError(w, err)
		return
	}

	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

func (h *Handler) renderProjects(w http.ResponseWriter, r *http.Request, code int, data pageData) {
	projects, err := h.repo.List(r.Context(), proj.ListFilter{SearchExpr: data.Query})
	if err != nil {
		h.serverError(w, err)
		return
	}

	data.Title = "Projects"
	data.Tab = "projects"
	data.Projects = projects

	h.render(w, code, "projects", data)
}

func (h *Handler) render(w http.ResponseWriter, code int, page string, data pageData) {
	var buf bytes.Buffer

	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.serverError(w, fmt.Errorf("web: failed to render %v page: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Errorw("Failed to handle page request.", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
