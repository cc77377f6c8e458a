package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/pkg/cache"
)

func newTestProjectService() (*ProjectService, *memProjectRepo, *memUserRepo) {
	projects := newMemProjectRepo()
	users := newMemUserRepo()
	return NewProjectService(projects, users, cache.NewMemory(), nil), projects, users
}

func TestCreateProjectDefaults(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestProjectService()

	p, err := s.Create(ctx, "user-1", CreateProjectInput{Title: "Launch"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Status != domain.ProjectStatusPlanning || p.Priority != domain.PriorityMedium {
		t.Fatalf("unexpected defaults: %q %q", p.Status, p.Priority)
	}
	if p.CreatedBy != "user-1" {
		t.Fatalf("creator not recorded")
	}
	if p.Members == nil || p.Updates == nil || p.Tags == nil {
		t.Fatalf("collections must be initialized empty, not nil")
	}

	_, err = s.Create(ctx, "user-1", CreateProjectInput{})
	if !errors.Is(err, domain.ErrValidation) || err.Error() != "Project title is required" {
		t.Fatalf("expected title validation, got %v", err)
	}
}

func TestGetProjectScoping(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestProjectService()

	p, err := s.Create(ctx, "owner", CreateProjectInput{Title: "Launch", Members: []string{"member"}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := s.Get(ctx, "owner", p.ID); err != nil {
		t.Fatalf("owner get failed: %v", err)
	}
	if _, err := s.Get(ctx, "member", p.ID); err != nil {
		t.Fatalf("member get failed: %v", err)
	}

	// An outsider reads an existing project as not found, not forbidden.
	_, err = s.Get(ctx, "stranger", p.ID)
	if !errors.Is(err, domain.ErrNotFound) || err.Error() != "Project not found" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetProjectExpandsIdentities(t *testing.T) {
	ctx := context.Background()
	s, _, users := newTestProjectService()

	users.Create(ctx, &domain.User{ID: "owner", Name: "Olive", Email: "olive@example.com", Username: "olive"})
	users.Create(ctx, &domain.User{ID: "member", Name: "Mel", Email: "mel@example.com", Username: "mel"})

	p, err := s.Create(ctx, "owner", CreateProjectInput{Title: "Launch", Members: []string{"member", "ghost"}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	view, err := s.Get(ctx, "owner", p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.CreatedBy == nil || view.CreatedBy.Name != "Olive" {
		t.Fatalf("creator not expanded: %+v", view.CreatedBy)
	}
	if len(view.Members) != 2 {
		t.Fatalf("expected 2 member refs, got %d", len(view.Members))
	}
}

func TestUpdateProjectIgnoresEmptyStrings(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestProjectService()

	p, err := s.Create(ctx, "owner", CreateProjectInput{Title: "Launch"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	empty := ""
	desc := ""
	updated, err := s.Update(ctx, "owner", p.ID, ProjectPatch{Title: &empty, Status: &empty, Description: &desc})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "Launch" || updated.Status != domain.ProjectStatusPlanning {
		t.Fatalf("empty strings must be ignored for title/status: %+v", updated)
	}
	if updated.Description != "" {
		t.Fatalf("description accepts empty string")
	}

	prog := 40
	updated, err = s.Update(ctx, "owner", p.ID, ProjectPatch{Progress: &prog})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Progress != 40 {
		t.Fatalf("progress not applied")
	}

	if _, err := s.Update(ctx, "stranger", p.ID, ProjectPatch{Progress: &prog}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for outsider, got %v", err)
	}
}

func TestDeleteProjectCreatorOnly(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestProjectService()

	p, err := s.Create(ctx, "owner", CreateProjectInput{Title: "Launch", Members: []string{"member"}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err = s.Delete(ctx, "member", p.ID)
	if !errors.Is(err, domain.ErrNotFound) || err.Error() != "Project not found or unauthorized" {
		t.Fatalf("expected creator-only delete, got %v", err)
	}

	if err := s.Delete(ctx, "owner", p.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "owner", p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("project should be gone")
	}
}

func TestAppendUpdateDefaults(t *testing.T) {
	ctx := context.Background()
	s, projects, _ := newTestProjectService()

	p, err := s.Create(ctx, "owner", CreateProjectInput{Title: "Launch"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	view, err := s.AppendUpdate(ctx, "owner", p.ID, AppendUpdateInput{Title: "Kickoff done"})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if view.Type != domain.UpdateTypeGeneral || view.Priority != domain.PriorityMedium {
		t.Fatalf("unexpected defaults: %q %q", view.Type, view.Priority)
	}
	if !view.IsVisible || view.ID == "" {
		t.Fatalf("update not initialized: %+v", view.ProjectUpdate)
	}

	stored, _ := projects.GetByID(ctx, p.ID)
	if len(stored.Updates) != 1 {
		t.Fatalf("update not persisted")
	}

	_, err = s.AppendUpdate(ctx, "owner", p.ID, AppendUpdateInput{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected title validation, got %v", err)
	}

	_, err = s.AppendUpdate(ctx, "stranger", p.ID, AppendUpdateInput{Title: "Nope"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for outsider, got %v", err)
	}
}

func TestPageUpdatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, projects, _ := newTestProjectService()

	p, err := s.Create(ctx, "owner", CreateProjectInput{Title: "Launch"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		projects.AppendUpdate(ctx, p.ID, domain.ProjectUpdate{
			ID:        fmt.Sprintf("up-%d", i),
			Title:     fmt.Sprintf("Update %d", i),
			UpdatedBy: "owner",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := s.PageUpdates(ctx, "owner", p.ID, 1, 10)
	if err != nil {
		t.Fatalf("page failed: %v", err)
	}
	if len(page.Updates) != 10 {
		t.Fatalf("expected 10 updates, got %d", len(page.Updates))
	}
	if page.Updates[0].ID != "up-24" {
		t.Fatalf("expected newest first, got %s", page.Updates[0].ID)
	}
	if page.Pagination.TotalUpdates != 25 || page.Pagination.TotalPages != 3 || !page.Pagination.HasMore {
		t.Fatalf("unexpected pagination: %+v", page.Pagination)
	}

	last, err := s.PageUpdates(ctx, "owner", p.ID, 3, 10)
	if err != nil {
		t.Fatalf("page failed: %v", err)
	}
	if len(last.Updates) != 5 || last.Pagination.HasMore {
		t.Fatalf("unexpected last page: %d updates, hasMore=%v", len(last.Updates), last.Pagination.HasMore)
	}

	// Requests past the end return an empty page, not an error.
	past, err := s.PageUpdates(ctx, "owner", p.ID, 9, 10)
	if err != nil {
		t.Fatalf("page failed: %v", err)
	}
	if len(past.Updates) != 0 {
		t.Fatalf("expected empty page, got %d", len(past.Updates))
	}
}

func TestProjectCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	s, projects, _ := newTestProjectService()

	p, err := s.Create(ctx, "owner", CreateProjectInput{Title: "Launch"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Prime the cache.
	if _, err := s.Get(ctx, "owner", p.ID); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	// Write through the service; the next read must see the new title.
	title := "Renamed"
	if _, err := s.Update(ctx, "owner", p.ID, ProjectPatch{Title: &title}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	view, err := s.Get(ctx, "owner", p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.Title != "Renamed" {
		t.Fatalf("stale cache after update: %q", view.Title)
	}

	// Direct repository writes are invisible until the TTL lapses.
	stored, _ := projects.GetByID(ctx, p.ID)
	stored.Title = "Backdoor"
	projects.Update(ctx, stored)

	view, err = s.Get(ctx, "owner", p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.Title != "Renamed" {
		t.Fatalf("expected cached read, got %q", view.Title)
	}
}
