package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yourorg/taskboard/internal/domain"
)

// ListService handles list lifecycle operations. Every mutation resolves the
// owning board and re-evaluates its permission sets; nothing is cached
// between requests.
type ListService struct {
	lists  domain.ListRepository
	boards domain.BoardRepository
	logger *slog.Logger
}

// NewListService creates a new list service.
func NewListService(lists domain.ListRepository, boards domain.BoardRepository, logger *slog.Logger) *ListService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ListService{
		lists:  lists,
		boards: boards,
		logger: logger,
	}
}

// Create creates a list on a board. The order value is the current sibling
// count at creation time; deletions never renumber, so gaps and duplicates
// can accumulate.
func (s *ListService) Create(ctx context.Context, userID, title, boardID string) (*domain.List, error) {
	if title == "" || boardID == "" {
		return nil, domain.E(domain.ErrValidation, "Title and boardId are required")
	}

	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, boardNotFound(err)
	}

	if !board.CanMutate(userID) {
		return nil, domain.E(domain.ErrForbidden, "Not authorized to edit this board")
	}

	count, err := s.lists.CountByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	list := &domain.List{
		Title:     title,
		Board:     boardID,
		CreatedBy: userID,
		Order:     count,
		IsActive:  true,
	}

	if err := s.lists.Create(ctx, list); err != nil {
		return nil, err
	}

	s.logger.Info("list created",
		slog.String("list_id", list.ID),
		slog.String("board_id", boardID),
		slog.Int("order", list.Order),
	)

	return list, nil
}

// ListByBoard returns the board's lists ordered ascending, after a
// view-permission check.
func (s *ListService) ListByBoard(ctx context.Context, userID, boardID string) ([]*domain.List, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, boardNotFound(err)
	}

	if !board.CanView(userID) {
		return nil, domain.E(domain.ErrForbidden, "Not authorized to view this board")
	}

	return s.lists.ListByBoard(ctx, boardID)
}

// Update changes the list's title and/or order after an edit-permission
// check on the owning board. Order is overwritten directly; siblings are
// untouched.
func (s *ListService) Update(ctx context.Context, userID, id string, title *string, order *int) (*domain.List, error) {
	list, board, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	if !board.CanMutate(userID) {
		return nil, domain.E(domain.ErrForbidden, "Not authorized to edit this board")
	}

	if title != nil && *title != "" {
		list.Title = *title
	}
	if order != nil {
		list.Order = *order
	}

	if err := s.lists.Update(ctx, list); err != nil {
		return nil, err
	}

	return list, nil
}

// Delete removes the list after an edit-permission check. Child cards are
// not cascaded; they remain queryable by id.
func (s *ListService) Delete(ctx context.Context, userID, id string) error {
	list, board, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}

	if !board.CanMutate(userID) {
		return domain.E(domain.ErrForbidden, "Not authorized to edit this board")
	}

	if err := s.lists.Delete(ctx, list.ID); err != nil {
		return err
	}

	s.logger.Info("list deleted",
		slog.String("list_id", id),
		slog.String("board_id", list.Board),
	)

	return nil
}

// resolve loads the list and its owning board, preserving the not-found
// status distinction between the two.
func (s *ListService) resolve(ctx context.Context, id string) (*domain.List, *domain.Board, error) {
	list, err := s.lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.E(domain.ErrNotFound, "List not found")
		}
		return nil, nil, err
	}

	board, err := s.boards.GetByID(ctx, list.Board)
	if err != nil {
		return nil, nil, boardNotFound(err)
	}

	return list, board, nil
}
