package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/goleak"

	"github.com/projdesk/projdesk/pkg/kv"
	"github.com/projdesk/projdesk/pkg/proj"
	"github.com/projdesk/projdesk/pkg/testutil"
	"github.com/projdesk/projdesk/pkg/web"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRouter(t *testing.T) (*mux.Router, *proj.Repository) {
	t.Helper()

	repo := proj.NewRepository(proj.Config{Store: kv.NewMemory()})

	h, err := web.NewHandler(web.Config{
		Repository: repo,
		Backend:    "memory",
		Logger:     testutil.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	return router, repo
}

func postForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	tests := []struct {
		name        string
		method      string
		target      string
		expCode     int
		expLocation string
		expBody     string
	}{
		{name: "home", method: http.MethodGet, target: "/", expCode: http.StatusOK, expBody: "Available modules"},
		{name: "projects", method: http.MethodGet, target: "/projects", expCode: http.StatusOK, expBody: "No projects yet."},
		{name: "unknown path", method: http.MethodGet, target: "/nope/deeper", expCode: http.StatusFound, expLocation: "/"},
		{name: "unknown path, post", method: http.MethodPost, target: "/nope", expCode: http.StatusSeeOther, expLocation: "/"},
		{name: "post-only path, get", method: http.MethodGet, target: "/projects/abc", expCode: http.StatusFound, expLocation: "/"},
		{name: "post-only delete path, get", method: http.MethodGet, target: "/projects/abc/delete", expCode: http.StatusFound, expLocation: "/"},
		{name: "projects, put", method: http.MethodPut, target: "/projects", expCode: http.StatusSeeOther, expLocation: "/"},
		{name: "home, delete", method: http.MethodDelete, target: "/", expCode: http.StatusSeeOther, expLocation: "/"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			if rec.Code != tt.expCode {
				t.Fatalf("expected status %v, got: %v", tt.expCode, rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.expLocation {
				t.Fatalf("expected location %q, got: %q", tt.expLocation, got)
			}
			if !strings.Contains(rec.Body.String(), tt.expBody) {
				t.Fatalf("expected body to contain %q, got:\n%v", tt.expBody, rec.Body)
			}
		})
	}
}

func TestProjectForms(t *testing.T) {
	t.Parallel()

	t.Run("create", func(t *testing.T) {
		t.Parallel()

		router, repo := newTestRouter(t)

		rec := postForm(router, "/projects", url.Values{"name": {" foobar "}, "description": {"baz"}})
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected status 303, got: %v", rec.Code)
		}

		projects, _ := repo.List(context.Background(), proj.ListFilter{})
		if len(projects) != 1 || projects[0].Name != "foobar" {
			t.Fatalf("expected one project named foobar, got: %+v", projects)
		}

		body := get(router, "/projects").Body.String()
		for _, exp := range []string{"foobar", "1 items", "id: " + projects[0].ID} {
			if !strings.Contains(body, exp) {
				t.Fatalf("expected projects page to contain %q", exp)
			}
		}
	})

	t.Run("create with blank name", func(t *testing.T) {
		t.Parallel()

		router, repo := newTestRouter(t)

		rec := postForm(router, "/projects", url.Values{"name": {"   "}})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got: %v", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Name is required") {
			t.Fatalf("expected validation message in body, got:\n%v", rec.Body)
		}

		if projects, _ := repo.List(context.Background(), proj.ListFilter{}); len(projects) != 0 {
			t.Fatalf("expected no projects, got: %+v", projects)
		}
	})

	t.Run("edit and update", func(t *testing.T) {
		t.Parallel()

		router, repo := newTestRouter(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, proj.CreateInput{Name: "foo", Description: "bar"})
		if err != nil {
			t.Fatalf("unexpected error creating project: %v", err)
		}

		body := get(router, "/projects?edit="+created.ID).Body.String()
		if !strings.Contains(body, `action="/projects/`+created.ID+`"`) {
			t.Fatalf("expected edit form for project, got:\n%v", body)
		}

		rec := postForm(router, "/projects/"+created.ID, url.Values{"name": {"baz"}, "description": {""}})
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected status 303, got: %v", rec.Code)
		}

		got, _, _ := repo.GetByID(ctx, created.ID)
		if got.Name != "baz" || got.Description != "" {
			t.Fatalf("unexpected project after update: %+v", got)
		}
	})

	t.Run("update missing project", func(t *testing.T) {
		t.Parallel()

		router, _ := newTestRouter(t)

		rec := postForm(router, "/projects/missing", url.Values{"name": {"baz"}})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got: %v", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Project not found") {
			t.Fatalf("expected not found message, got:\n%v", rec.Body)
		}
	})

	t.Run("confirm and delete", func(t *testing.T) {
		t.Parallel()

		router, repo := newTestRouter(t)
		ctx := context.Background()

		created, _ := repo.Create(ctx, proj.CreateInput{Name: "doomed"})

		body := get(router, "/projects?delete="+created.ID).Body.String()
		if !strings.Contains(body, "This action cannot be undone.") {
			t.Fatalf("expected delete confirmation, got:\n%v", body)
		}

		for i := 0; i < 2; i++ {
			rec := postForm(router, "/projects/"+created.ID+"/delete", nil)
			if rec.Code != http.StatusSeeOther {
				t.Fatalf("expected status 303, got: %v", rec.Code)
			}
		}

		if _, ok, _ := repo.GetByID(ctx, created.ID); ok {
			t.Fatal("expected project to be removed")
		}
	})

	t.Run("search", func(t *testing.T) {
		t.Parallel()

		router, repo := newTestRouter(t)
		ctx := context.Background()

		_, _ = repo.Create(ctx, proj.CreateInput{Name: "alpha"})
		_, _ = repo.Create(ctx, proj.CreateInput{Name: "beta"})

		body := get(router, "/projects?q=alp").Body.String()
		if !strings.Contains(body, "alpha") || strings.Contains(body, "beta") {
			t.Fatalf("expected only alpha in results, got:\n%v", body)
		}
	})
}
