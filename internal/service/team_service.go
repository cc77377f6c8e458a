package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/taskboard/internal/domain"
)

// TeamService handles team creation and listing. Teams are a flat grouping
// entity, not part of the board permission model.
type TeamService struct {
	teams  domain.TeamRepository
	users  domain.UserRepository
	logger *slog.Logger
}

// NewTeamService creates a new team service.
func NewTeamService(teams domain.TeamRepository, users domain.UserRepository, logger *slog.Logger) *TeamService {
	if logger == nil {
		logger = slog.Default()
	}

	return &TeamService{
		teams:  teams,
		users:  users,
		logger: logger,
	}
}

// TeamView is a team with member identities expanded.
type TeamView struct {
	*domain.Team
	Members []domain.UserRef `json:"members"`
}

// Create creates a team owned by the requester.
func (s *TeamService) Create(ctx context.Context, userID, name string, members []string) (*domain.Team, error) {
	if name == "" {
		return nil, domain.E(domain.ErrValidation, "Team name is required")
	}

	if members == nil {
		members = []string{}
	}

	team := &domain.Team{
		Name:      name,
		Members:   members,
		CreatedBy: userID,
	}

	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}

	s.logger.Info("team created",
		slog.String("team_id", team.ID),
		slog.String("user_id", userID),
	)

	return team, nil
}

// ListMine returns teams created by the requester, members expanded.
func (s *TeamService) ListMine(ctx context.Context, userID string) ([]TeamView, error) {
	teams, err := s.teams.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, t := range teams {
		ids = append(ids, t.Members...)
	}
	refs, err := userRefs(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]TeamView, 0, len(teams))
	for _, t := range teams {
		members := make([]domain.UserRef, 0, len(t.Members))
		for _, id := range t.Members {
			if ref := refOrNil(refs, id); ref != nil {
				members = append(members, *ref)
			}
		}
		views = append(views, TeamView{Team: t, Members: members})
	}

	return views, nil
}
