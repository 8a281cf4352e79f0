package proj

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/projdesk/projdesk/pkg/kv"
	"github.com/projdesk/projdesk/pkg/log"
)

// StorageKey is the key the whole project collection is stored under.
const StorageKey = "Project.projects.v1"

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Unix timestamps in milliseconds.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// CreateInput holds the fields a caller may set when creating a project.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Patch holds the fields a caller may change on an existing project. Nil
// fields are left untouched.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type SortOrder int

const (
	// SortUpdatedDesc lists the most recently updated projects first.
	SortUpdatedDesc SortOrder = iota
	// SortNameAsc lists projects alphabetically, ignoring case.
	SortNameAsc
)

type ListFilter struct {
	SearchExpr string
}

var (
	ErrProjectNotFound  = errors.New("proj: project not found")
	ErrInvalidSortOrder = errors.New("proj: invalid sort order, must be `updated` or `name`")
)

// Repository implements project CRUD on top of a kv.Store. Every mutation
// reads, modifies and rewrites the complete collection.
type Repository struct {
	store     kv.Store
	sortOrder SortOrder
	logger    log.Logger
	now       func() time.Time
	mu        sync.Mutex
}

type Config struct {
	Store     kv.Store
	SortOrder SortOrder
	Logger    log.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewRepository returns a new Repository.
func NewRepository(cfg Config) *Repository {
	repo := &Repository{
		store:     cfg.Store,
		sortOrder: cfg.SortOrder,
		logger:    cfg.Logger,
		now:       cfg.Clock,
	}

	if repo.logger == nil {
		repo.logger = log.NewNopLogger()
	}

	if repo.now == nil {
		repo.now = time.Now
	}

	return repo
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "", "updated":
		return SortUpdatedDesc, nil
	case "name":
		return SortNameAsc, nil
	default:
		return 0, ErrInvalidSortOrder
	}
}

// List returns all projects matching filter, ordered by the repository's
// sort order. The returned slice is never shared with the repository.
func (repo *Repository) List(ctx context.Context, filter ListFilter) ([]Project, error) {
	projects, err := repo.readAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Project, 0, len(projects))

	for _, project := range projects {
		if project.Matches(filter.SearchExpr) {
			result = append(result, project)
		}
	}

	repo.sortProjects(result)

	return result, nil
}

// GetByID returns the project with the given id. Absence is reported with
// ok == false.
func (repo *Repository) GetByID(ctx context.Context, id string) (Project, bool, error) {
	projects, err := repo.readAll(ctx)
	if err != nil {
		return Project{}, false, err
	}

	for _, p := range projects {
		if p.ID == id {
			return p, true, nil
		}
	}

	return Project{}, false, nil
}

func (repo *Repository) Create(ctx context.Context, input CreateInput) (Project, error) {
	input, err := Validate(input)
	if err != nil {
		return Project{}, err
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	projects, err := repo.readAll(ctx)
	if err != nil {
		return Project{}, err
	}

	now := repo.now().UnixMilli()
	project := Project{
		ID:          ulid.Make().String(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = repo.writeAll(ctx, append(projects, project))
	if err != nil {
		return Project{}, fmt.Errorf("proj: could not create project: %w", err)
	}

	repo.logger.Debugw("Created project.", "projectID", project.ID)

	return project, nil
}

// Update merges patch over the project with the given id and refreshes its
// UpdatedAt timestamp. It returns ErrProjectNotFound when no such project
// exists, leaving the stored collection untouched.
func (repo *Repository) Update(ctx context.Context, id string, patch Patch) (Project, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	projects, err := repo.readAll(ctx)
	if err != nil {
		return Project{}, err
	}

	idx := -1
	for i, p := range projects {
		if p.ID == id {
			idx = i
			break
		}
	}

	if idx == -1 {
		return Project{}, ErrProjectNotFound
	}

	patch, err = ValidatePatch(patch)
	if err != nil {
		return Project{}, err
	}

	updated := projects[idx]
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	updated.UpdatedAt = repo.now().UnixMilli()

	next := make([]Project, len(projects))
	copy(next, projects)
	next[idx] = updated

	err = repo.writeAll(ctx, next)
	if err != nil {
		return Project{}, fmt.Errorf("proj: failed to update project: %w", err)
	}

	repo.logger.Debugw("Updated project.", "projectID", id)

	return updated, nil
}

// Remove deletes the project with the given id. Removing an unknown id is
// not an error.
func (repo *Repository) Remove(ctx context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	projects, err := repo.readAll(ctx)
	if err != nil {
		return err
	}

	next := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.ID != id {
			next = append(next, p)
		}
	}

	err = repo.writeAll(ctx, next)
	if err != nil {
		return fmt.Errorf("proj: could not delete project: %w", err)
	}

	repo.logger.Debugw("Removed project.", "projectID", id)

	return nil
}

// Clear deletes the stored collection altogether.
func (repo *Repository) Clear(ctx context.Context) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if err := repo.store.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("proj: could not clear projects: %w", err)
	}

	return nil
}

func (repo *Repository) readAll(ctx context.Context) ([]Project, error) {
	raw, ok, err := repo.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("proj: could not get projects: %w", err)
	}

	if !ok || raw == "" {
		return nil, nil
	}

	var projects []Project

	if err := json.Unmarshal([]byte(raw), &projects); err != nil {
		// Unreadable data is treated as an empty collection.
		repo.logger.Debugw("Failed to decode stored projects.", "error", err)
		return nil, nil
	}

	return projects, nil
}

func (repo *Repository) writeAll(ctx context.Context, projects []Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if projects == nil {
		projects = []Project{}
	}

	buf, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to marshal projects: %w", err)
	}

	return repo.store.Set(ctx, StorageKey, string(buf))
}

func (repo *Repository) sortProjects(projects []Project) {
	switch repo.sortOrder {
	case SortNameAsc:
		sort.SliceStable(projects, func(i, j int) bool {
			a, b := strings.ToLower(projects[i].Name), strings.ToLower(projects[j].Name)
			if a != b {
				return a < b
			}
			return projects[i].ID < projects[j].ID
		})
	default:
		sort.SliceStable(projects, func(i, j int) bool {
			if projects[i].UpdatedAt != projects[j].UpdatedAt {
				return projects[i].UpdatedAt > projects[j].UpdatedAt
			}
			// ULIDs sort by creation time, so newer projects win ties.
			return projects[i].ID > projects[j].ID
		})
	}
}
