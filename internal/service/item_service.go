package service

import (
	"context"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewItemService(repo domain.Repository, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, input models.ItemInput) (*models.Item, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.Validation("name must not be blank")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, domain.Validation("description must not be blank")
	}
	if input.Available == nil {
		return nil, domain.Validation("available must be set")
	}

	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if input.RequestID != nil {
		if _, err := s.repo.GetRequestByID(ctx, *input.RequestID); err != nil {
			return nil, err
		}
	}

	item := &models.Item{
		Name:        input.Name,
		Description: input.Description,
		Available:   *input.Available,
		OwnerID:     ownerID,
		RequestID:   input.RequestID,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.Validation("name must not be blank")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, domain.Validation("description must not be blank")
	}

	item, err := s.ownedItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	patch.Apply(item)
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, ownerID, itemID int64) error {
	if _, err := s.ownedItem(ctx, ownerID, itemID); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, itemID)
}

func (s *ItemService) ownedItem(ctx context.Context, ownerID, itemID int64) (*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, domain.Forbidden("user %d does not own item %d", ownerID, itemID)
	}
	return item, nil
}

// GetItem returns the item view. Last and next bookings are only filled in
// for the owner.
func (s *ItemService) GetItem(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, item, userID, s.now().UTC())
}

func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID int64, page models.Page) ([]*models.ItemDetails, error) {
	if err := ValidatePage(page); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	result := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		details, err := s.details(ctx, item, ownerID, now)
		if err != nil {
			return nil, err
		}
		result = append(result, details)
	}
	return result, nil
}

func (s *ItemService) details(ctx context.Context, item *models.Item, viewerID int64, now time.Time) (*models.ItemDetails, error) {
	comments, err := s.repo.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	details := &models.ItemDetails{Item: *item, Comments: comments}

	if item.OwnerID != viewerID {
		return details, nil
	}
	if details.LastBooking, err = s.repo.GetLastBooking(ctx, item.ID, now); err != nil {
		return nil, err
	}
	if details.NextBooking, err = s.repo.GetNextBooking(ctx, item.ID, now); err != nil {
		return nil, err
	}
	return details, nil
}

// SearchItems finds available items by name or description. Blank text
// finds nothing.
func (s *ItemService) SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error) {
	if err := ValidatePage(page); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchItems(ctx, text, page)
}

// AddComment stores feedback from a user who has already used the item.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, input models.CommentInput) (*models.Comment, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, domain.Validation("text must not be blank")
	}

	author, err := s.repo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ok, err := s.repo.HasFinishedBooking(ctx, authorID, item.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Forbidden("user %d is not a booker of item %d", authorID, item.ID)
	}

	comment := &models.Comment{
		Text:       input.Text,
		ItemID:     item.ID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		CreatedAt:  now,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
