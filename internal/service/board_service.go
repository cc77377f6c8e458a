package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/observability/metrics"
)

// BoardService handles board lifecycle operations.
type BoardService struct {
	boards   domain.BoardRepository
	projects domain.ProjectRepository
	logger   *slog.Logger
}

// NewBoardService creates a new board service.
func NewBoardService(boards domain.BoardRepository, projects domain.ProjectRepository, logger *slog.Logger) *BoardService {
	if logger == nil {
		logger = slog.Default()
	}

	return &BoardService{
		boards:   boards,
		projects: projects,
		logger:   logger,
	}
}

// CreateBoardInput carries the create-board request fields.
type CreateBoardInput struct {
	Name        string
	Description string
	ProjectID   string
	Type        string
}

// Create creates a board. When no project is supplied, a default project
// titled "<name> Project" is synthesized first, owned by the requester. The
// two writes are independent; there is no atomicity between them.
func (s *BoardService) Create(ctx context.Context, userID string, in CreateBoardInput) (*domain.Board, error) {
	if in.Name == "" {
		return nil, domain.E(domain.ErrValidation, "Board name is required")
	}

	projectID := in.ProjectID
	if projectID == "" {
		project := &domain.Project{
			Title:       in.Name + " Project",
			Description: "Default project for " + in.Name + " board",
			Status:      domain.ProjectStatusPlanning,
			Priority:    domain.PriorityMedium,
			CreatedBy:   userID,
			Members:     []string{},
			Updates:     []domain.ProjectUpdate{},
			Tags:        []string{},
			Settings:    domain.DefaultProjectSettings(),
		}
		if err := s.projects.Create(ctx, project); err != nil {
			return nil, err
		}
		projectID = project.ID
		s.logger.Info("synthesized default project",
			slog.String("project_id", projectID),
			slog.String("board_name", in.Name),
		)
	} else {
		if _, err := s.projects.GetByID(ctx, projectID); err != nil {
			return nil, domain.E(domain.ErrValidation, "Project not found")
		}
	}

	boardType := in.Type
	if boardType == "" {
		boardType = domain.BoardTypeKanban
	}

	now := time.Now()
	board := &domain.Board{
		Name:           in.Name,
		Description:    in.Description,
		Project:        projectID,
		Type:           boardType,
		Administrators: []string{userID},
		Permissions: domain.BoardPermissions{
			View:  []string{userID},
			Edit:  []string{userID},
			Admin: []string{userID},
		},
		Visibility:    domain.VisibilityPublic,
		Configuration: domain.DefaultBoardConfiguration(),
		Statistics:    domain.BoardStatistics{LastViewed: &now},
		IsActive:      true,
	}

	if err := s.boards.Create(ctx, board); err != nil {
		return nil, err
	}

	metrics.ObserveBoardCreated()
	s.logger.Info("board created",
		slog.String("board_id", board.ID),
		slog.String("project_id", projectID),
		slog.String("user_id", userID),
	)

	return board, nil
}

// ListMine returns boards where the requester appears in administrators or
// any permission set. A public board the user has no relation to is not
// included, which is narrower than CanView.
func (s *BoardService) ListMine(ctx context.Context, userID string) ([]*domain.Board, error) {
	return s.boards.ListForUser(ctx, userID)
}

// Get returns a single board after a view-permission check.
func (s *BoardService) Get(ctx context.Context, userID, id string) (*domain.Board, error) {
	board, err := s.boards.GetByID(ctx, id)
	if err != nil {
		return nil, boardNotFound(err)
	}

	if !board.CanView(userID) {
		return nil, domain.E(domain.ErrForbidden, "Not authorized to view this board")
	}

	return board, nil
}

// ListByProject returns all boards of a project. There is no requester
// filter on this path.
func (s *BoardService) ListByProject(ctx context.Context, projectID string) ([]*domain.Board, error) {
	return s.boards.ListByProject(ctx, projectID)
}

// Update applies the given fields unconditionally. No permission check
// precedes the write.
func (s *BoardService) Update(ctx context.Context, id string, patch domain.BoardPatch) (*domain.Board, error) {
	board, err := s.boards.Update(ctx, id, patch)
	if err != nil {
		return nil, boardNotFound(err)
	}
	return board, nil
}

// Delete removes the board by id unconditionally. Lists and cards under it
// are not cascaded and remain queryable.
func (s *BoardService) Delete(ctx context.Context, id string) error {
	return s.boards.Delete(ctx, id)
}

func boardNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.E(domain.ErrNotFound, "Board not found")
	}
	return err
}
