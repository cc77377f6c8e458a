package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/observability/metrics"
	"github.com/yourorg/taskboard/internal/upload"
)

// CardService handles card lifecycle operations. Every mutation resolves
// card -> list -> board and re-evaluates the board's permission sets from
// the current persisted document.
type CardService struct {
	cards  domain.CardRepository
	lists  domain.ListRepository
	boards domain.BoardRepository
	users  domain.UserRepository
	files  *upload.Store
	logger *slog.Logger
}

// NewCardService creates a new card service.
func NewCardService(
	cards domain.CardRepository,
	lists domain.ListRepository,
	boards domain.BoardRepository,
	users domain.UserRepository,
	files *upload.Store,
	logger *slog.Logger,
) *CardService {
	if logger == nil {
		logger = slog.Default()
	}

	return &CardService{
		cards:  cards,
		lists:  lists,
		boards: boards,
		users:  users,
		files:  files,
		logger: logger,
	}
}

// CreateCardInput carries the create-card request fields.
type CreateCardInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	AssignedTo  string
	Priority    string
}

// CardView is a card with its assignee and creator identities expanded.
type CardView struct {
	*domain.Card
	AssignedTo *domain.UserRef `json:"assignedTo"`
	CreatedBy  *domain.UserRef `json:"createdBy"`
}

// Create creates a card under a list after an edit-permission check on the
// owning board. The order value is the current sibling count within the
// list.
func (s *CardService) Create(ctx context.Context, userID, listID string, in CreateCardInput) (*domain.Card, error) {
	if in.Title == "" || listID == "" {
		return nil, domain.E(domain.ErrValidation, "Title and listId are required")
	}

	_, board, err := s.resolveList(ctx, listID)
	if err != nil {
		return nil, err
	}

	if !board.CanMutate(userID) {
		return nil, domain.E(domain.ErrForbidden, "Not authorized to edit this board")
	}

	count, err := s.cards.CountByList(ctx, listID)
	if err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.CardPriorityMedium
	}

	card := &domain.Card{
		Title:       in.Title,
		List:        listID,
		Description: in.Description,
		DueDate:     in.DueDate,
		AssignedTo:  in.AssignedTo,
		Priority:    priority,
		Status:      domain.CardStatusActive,
		CreatedBy:   userID,
		Order:       count,
		Labels:      []domain.Label{},
		Attachments: []domain.Attachment{},
	}

	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}

	metrics.ObserveCardCreated()
	s.logger.Info("card created",
		slog.String("card_id", card.ID),
		slog.String("list_id", listID),
		slog.Int("order", card.Order),
	)

	return card, nil
}

// ListByList returns the list's cards ordered ascending, with assignee and
// creator identities expanded, after a view-permission check.
func (s *CardService) ListByList(ctx context.Context, userID, listID string) ([]CardView, error) {
	_, board, err := s.resolveList(ctx, listID)
	if err != nil {
		return nil, err
	}

	if !board.CanView(userID) {
		return nil, domain.E(domain.ErrForbidden, "Not authorized to view this board")
	}

	cards, err := s.cards.ListByList(ctx, listID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(cards)*2)
	for _, c := range cards {
		ids = append(ids, c.AssignedTo, c.CreatedBy)
	}
	refs, err := userRefs(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]CardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, CardView{
			Card:       c,
			AssignedTo: refOrNil(refs, c.AssignedTo),
			CreatedBy:  refOrNil(refs, c.CreatedBy),
		})
	}

	return views, nil
}

// Update applies only the fields present in the patch, after an
// edit-permission check on the card's current board. Present-but-null
// clears the nullable fields; omitted leaves them untouched.
func (s *CardService) Update(ctx context.Context, userID, id string, patch domain.CardPatch) (*domain.Card, error) {
	card, _, board, err := s.resolveCard(ctx, id)
	if err != nil {
		return nil, err
	}

	if !board.CanMutate(userID) {
		return nil, domain.E(domain.ErrForbidden, "Not authorized to edit this board")
	}

	if patch.Title != nil {
		card.Title = *patch.Title
	}
	if patch.Description != nil {
		card.Description = *patch.Description
	}
	if patch.DueDateSet {
		card.DueDate = patch.DueDate
	}
	if patch.AssignedToSet {
		if patch.AssignedTo != nil {
			card.AssignedTo = *patch.AssignedTo
		} else {
			card.AssignedTo = ""
		}
	}
	if patch.Priority != nil {
		card.Priority = *patch.Priority
	}
	if patch.LabelsSet {
		card.Labels = patch.Labels
	}

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// Move rewrites the card's list reference and, when supplied, its order.
// The permission check runs against the destination list's board; no other
// card's order is renumbered on either side.
func (s *CardService) Move(ctx context.Context, userID, id, newListID string, newOrder *int) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, cardNotFound(err)
	}

	newList, err := s.lists.GetByID(ctx, newListID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.ErrNotFound, "New list not found")
		}
		return nil, err
	}

	board, err := s.boards.GetByID(ctx, newList.Board)
	if err != nil {
		return nil, boardNotFound(err)
	}

	if !board.CanMutate(userID) {
		return nil, domain.E(domain.ErrForbidden, "Not authorized to edit this board")
	}

	card.List = newListID
	if newOrder != nil {
		card.Order = *newOrder
	}

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, err
	}

	metrics.ObserveCardMoved()
	s.logger.Info("card moved",
		slog.String("card_id", id),
		slog.String("list_id", newListID),
	)

	return card, nil
}

// Delete removes the card after an edit-permission check.
func (s *CardService) Delete(ctx context.Context, userID, id string) error {
	card, _, board, err := s.resolveCard(ctx, id)
	if err != nil {
		return err
	}

	if !board.CanMutate(userID) {
		return domain.E(domain.ErrForbidden, "Not authorized to edit this board")
	}

	return s.cards.Delete(ctx, card.ID)
}

// UploadAttachment stores the file and appends its descriptor to the card,
// after an edit-permission check. The size and count ceilings are enforced
// by the upload store before anything is persisted.
func (s *CardService) UploadAttachment(ctx context.Context, userID, id string, file io.Reader, originalName, mimeType string, size int64) (*domain.Attachment, *domain.Card, error) {
	card, _, board, err := s.resolveCard(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !board.CanMutate(userID) {
		return nil, nil, domain.E(domain.ErrForbidden, "Not authorized to edit this board")
	}

	attachment, err := s.files.Save(file, originalName, mimeType, size, len(card.Attachments))
	if err != nil {
		metrics.ObserveAttachmentUpload("rejected")
		switch {
		case errors.Is(err, upload.ErrFileTooLarge):
			return nil, nil, domain.E(domain.ErrValidation,
				fmt.Sprintf("File too large. Maximum size is %dMB.", s.files.MaxFileSizeMB()))
		case errors.Is(err, upload.ErrTooManyFiles):
			return nil, nil, domain.E(domain.ErrValidation,
				fmt.Sprintf("Too many files. Maximum %d files allowed.", s.files.MaxPerCard()))
		}
		return nil, nil, err
	}

	attachment.UploadedBy = userID
	card.Attachments = append(card.Attachments, attachment)

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, nil, err
	}

	metrics.ObserveAttachmentUpload("accepted")
	s.logger.Info("attachment uploaded",
		slog.String("card_id", id),
		slog.String("attachment_id", attachment.ID),
		slog.Int64("size", attachment.Size),
	)

	return &attachment, card, nil
}

// DeleteAttachment removes the descriptor with the given sub-id by linear
// scan. The stored file itself is left in place.
func (s *CardService) DeleteAttachment(ctx context.Context, userID, id, attachmentID string) (*domain.Card, error) {
	card, _, board, err := s.resolveCard(ctx, id)
	if err != nil {
		return nil, err
	}

	if !board.CanMutate(userID) {
		return nil, domain.E(domain.ErrForbidden, "Not authorized to edit this board")
	}

	idx := -1
	for i, a := range card.Attachments {
		if a.ID == attachmentID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, domain.E(domain.ErrNotFound, "Attachment not found")
	}

	card.Attachments = append(card.Attachments[:idx], card.Attachments[idx+1:]...)

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// resolveList loads the list and its owning board.
func (s *CardService) resolveList(ctx context.Context, listID string) (*domain.List, *domain.Board, error) {
	list, err := s.lists.GetByID(ctx, listID)
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

// resolveCard loads the card, its list, and its board, preserving the
// not-found status distinctions along the chain.
func (s *CardService) resolveCard(ctx context.Context, id string) (*domain.Card, *domain.List, *domain.Board, error) {
	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, cardNotFound(err)
	}

	list, board, err := s.resolveList(ctx, card.List)
	if err != nil {
		return nil, nil, nil, err
	}

	return card, list, board, nil
}

func cardNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.E(domain.ErrNotFound, "Card not found")
	}
	return err
}
