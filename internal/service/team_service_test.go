package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/taskboard/internal/domain"
)

func TestCreateTeam(t *testing.T) {
	ctx := context.Background()
	s := NewTeamService(newMemTeamRepo(), newMemUserRepo(), nil)

	team, err := s.Create(ctx, "owner", "Platform", []string{"a", "b"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if team.CreatedBy != "owner" || len(team.Members) != 2 {
		t.Fatalf("unexpected team: %+v", team)
	}

	_, err = s.Create(ctx, "owner", "", nil)
	if !errors.Is(err, domain.ErrValidation) || err.Error() != "Team name is required" {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListMineScopedToCreator(t *testing.T) {
	ctx := context.Background()
	teams := newMemTeamRepo()
	users := newMemUserRepo()
	s := NewTeamService(teams, users, nil)

	users.Create(ctx, &domain.User{ID: "a", Name: "Ann", Email: "ann@example.com", Username: "ann"})

	if _, err := s.Create(ctx, "owner", "Platform", []string{"a"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.Create(ctx, "someone-else", "Design", nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	views, err := s.ListMine(ctx, "owner")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected only own teams, got %d", len(views))
	}
	if len(views[0].Members) != 1 || views[0].Members[0].Name != "Ann" {
		t.Fatalf("members not expanded: %+v", views[0].Members)
	}
}
