package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/observability/metrics"
	"github.com/yourorg/taskboard/pkg/cache"
)

const projectCacheTTL = 5 * time.Minute

// ProjectService handles project lifecycle and the embedded activity log.
// Reads go through a cache-aside layer with last-write-wins semantics: any
// write invalidates the cached document. Access checks always run against
// the loaded document, never against cached predicate results.
type ProjectService struct {
	projects domain.ProjectRepository
	users    domain.UserRepository
	cache    cache.Store
	logger   *slog.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(projects domain.ProjectRepository, users domain.UserRepository, store cache.Store, logger *slog.Logger) *ProjectService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProjectService{
		projects: projects,
		users:    users,
		cache:    store,
		logger:   logger,
	}
}

// CreateProjectInput carries the create-project request fields.
type CreateProjectInput struct {
	Title       string
	Description string
	Members     []string
	Status      string
	Priority    string
	StartDate   *time.Time
	EndDate     *time.Time
	Deadline    *time.Time
	Tags        []string
}

// ProjectPatch carries a partial project update. Nil fields are left
// untouched; Title/Status/Priority additionally ignore empty strings.
type ProjectPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Deadline    *time.Time
	Tags        []string
	Progress    *int
}

// ProjectView is a project with creator, members, and update authors
// expanded.
type ProjectView struct {
	*domain.Project
	CreatedBy *domain.UserRef     `json:"createdBy"`
	Members   []domain.UserRef    `json:"members"`
	Updates   []ProjectUpdateView `json:"updates"`
}

// ProjectUpdateView is an activity-log entry with its author expanded.
type ProjectUpdateView struct {
	domain.ProjectUpdate
	UpdatedBy *domain.UserRef `json:"updatedBy"`
}

// UpdatesPage is one page of the activity log, newest first.
type UpdatesPage struct {
	Updates    []ProjectUpdateView `json:"updates"`
	Pagination Pagination          `json:"pagination"`
}

// Pagination describes the slice position within the full log.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalUpdates int  `json:"totalUpdates"`
	HasMore      bool `json:"hasMore"`
}

// Create creates a project owned by the requester.
func (s *ProjectService) Create(ctx context.Context, userID string, in CreateProjectInput) (*domain.Project, error) {
	if in.Title == "" {
		return nil, domain.E(domain.ErrValidation, "Project title is required")
	}

	status := in.Status
	if status == "" {
		status = domain.ProjectStatusPlanning
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	members := in.Members
	if members == nil {
		members = []string{}
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	project := &domain.Project{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Deadline:    in.Deadline,
		CreatedBy:   userID,
		Members:     members,
		Updates:     []domain.ProjectUpdate{},
		Tags:        tags,
		Settings:    domain.DefaultProjectSettings(),
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		slog.String("project_id", project.ID),
		slog.String("user_id", userID),
	)

	return project, nil
}

// ListMine returns the requester's projects (creator or member), most
// recently updated first, with identities expanded.
func (s *ProjectService) ListMine(ctx context.Context, userID string) ([]ProjectView, error) {
	projects, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		view, err := s.expand(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	return views, nil
}

// Get returns one project scoped to the requester. A project that exists
// but does not include the requester reads as not found, not forbidden.
func (s *ProjectService) Get(ctx context.Context, userID, id string) (*ProjectView, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !project.CanAccess(userID) {
		return nil, domain.E(domain.ErrNotFound, "Project not found")
	}

	return s.expand(ctx, project)
}

// Update applies the patch within the creator-or-member scope and
// invalidates the cached document.
func (s *ProjectService) Update(ctx context.Context, userID, id string, patch ProjectPatch) (*domain.Project, error) {
	project, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}

	if !project.CanAccess(userID) {
		return nil, domain.E(domain.ErrNotFound, "Project not found")
	}

	if patch.Title != nil && *patch.Title != "" {
		project.Title = *patch.Title
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Status != nil && *patch.Status != "" {
		project.Status = *patch.Status
	}
	if patch.Priority != nil && *patch.Priority != "" {
		project.Priority = *patch.Priority
	}
	if patch.StartDate != nil {
		project.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		project.EndDate = patch.EndDate
	}
	if patch.Deadline != nil {
		project.Deadline = patch.Deadline
	}
	if patch.Tags != nil {
		project.Tags = patch.Tags
	}
	if patch.Progress != nil {
		project.Progress = *patch.Progress
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, projectKey(id))

	return project, nil
}

// Delete removes the project. Only the creator may delete; anyone else
// reads it as not found.
func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	project, err := s.loadFresh(ctx, id)
	if err != nil {
		return err
	}

	if project.CreatedBy != userID {
		return domain.E(domain.ErrNotFound, "Project not found or unauthorized")
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(ctx, projectKey(id))

	s.logger.Info("project deleted",
		slog.String("project_id", id),
		slog.String("user_id", userID),
	)

	return nil
}

// AppendUpdateInput carries the add-update request fields.
type AppendUpdateInput struct {
	Type        string
	Title       string
	Description string
	Priority    string
	Tags        []string
}

// AppendUpdate appends one immutable entry to the project's activity log.
// Only the creator or a member may append.
func (s *ProjectService) AppendUpdate(ctx context.Context, userID, id string, in AppendUpdateInput) (*ProjectUpdateView, error) {
	if in.Title == "" {
		return nil, domain.E(domain.ErrValidation, "Update title is required")
	}

	project, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}

	if !project.CanAccess(userID) {
		return nil, domain.E(domain.ErrNotFound, "Project not found")
	}

	updateType := in.Type
	if updateType == "" {
		updateType = domain.UpdateTypeGeneral
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	update := domain.ProjectUpdate{
		ID:          uuid.NewString(),
		Type:        updateType,
		Title:       in.Title,
		Description: in.Description,
		UpdatedBy:   userID,
		Priority:    priority,
		Tags:        tags,
		IsVisible:   true,
		CreatedAt:   time.Now(),
	}

	if err := s.projects.AppendUpdate(ctx, id, update); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, projectKey(id))

	refs, err := userRefs(ctx, s.users, []string{userID})
	if err != nil {
		return nil, err
	}

	return &ProjectUpdateView{
		ProjectUpdate: update,
		UpdatedBy:     refOrNil(refs, userID),
	}, nil
}

// PageUpdates returns one page of the activity log, sorted newest first.
// The embedded array is sorted and sliced per request.
func (s *ProjectService) PageUpdates(ctx context.Context, userID, id string, page, limit int) (*UpdatesPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !project.CanAccess(userID) {
		return nil, domain.E(domain.ErrNotFound, "Project not found")
	}

	updates := make([]domain.ProjectUpdate, len(project.Updates))
	copy(updates, project.Updates)
	sort.SliceStable(updates, func(i, j int) bool {
		return updates[i].CreatedAt.After(updates[j].CreatedAt)
	})

	total := len(updates)
	skip := (page - 1) * limit
	if skip > total {
		skip = total
	}
	end := skip + limit
	if end > total {
		end = total
	}

	ids := make([]string, 0, end-skip)
	for _, u := range updates[skip:end] {
		ids = append(ids, u.UpdatedBy)
	}
	refs, err := userRefs(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]ProjectUpdateView, 0, end-skip)
	for _, u := range updates[skip:end] {
		views = append(views, ProjectUpdateView{
			ProjectUpdate: u,
			UpdatedBy:     refOrNil(refs, u.UpdatedBy),
		})
	}

	totalPages := (total + limit - 1) / limit

	return &UpdatesPage{
		Updates: views,
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalUpdates: total,
			HasMore:      skip+limit < total,
		},
	}, nil
}

// load reads the project through the cache-aside layer.
func (s *ProjectService) load(ctx context.Context, id string) (*domain.Project, error) {
	key := projectKey(id)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var project domain.Project
		if err := json.Unmarshal([]byte(raw), &project); err == nil {
			metrics.ObserveProjectCache("hit")
			return &project, nil
		}
		// A corrupt entry falls through to the repository read.
		s.cache.Delete(ctx, key)
	}
	metrics.ObserveProjectCache("miss")

	project, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(project); err == nil {
		s.cache.Set(ctx, key, string(raw), projectCacheTTL)
	}

	return project, nil
}

// loadFresh bypasses the cache; write paths use it so the read-modify-write
// always starts from the persisted document.
func (s *ProjectService) loadFresh(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.ErrNotFound, "Project not found")
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) expand(ctx context.Context, p *domain.Project) (*ProjectView, error) {
	ids := make([]string, 0, len(p.Members)+len(p.Updates)+1)
	ids = append(ids, p.CreatedBy)
	ids = append(ids, p.Members...)
	for _, u := range p.Updates {
		ids = append(ids, u.UpdatedBy)
	}

	refs, err := userRefs(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	members := make([]domain.UserRef, 0, len(p.Members))
	for _, id := range p.Members {
		if ref := refOrNil(refs, id); ref != nil {
			members = append(members, *ref)
		}
	}

	updates := make([]ProjectUpdateView, 0, len(p.Updates))
	for _, u := range p.Updates {
		updates = append(updates, ProjectUpdateView{
			ProjectUpdate: u,
			UpdatedBy:     refOrNil(refs, u.UpdatedBy),
		})
	}

	return &ProjectView{
		Project:   p,
		CreatedBy: refOrNil(refs, p.CreatedBy),
		Members:   members,
		Updates:   updates,
	}, nil
}

func projectKey(id string) string {
	return "project:" + id
}
