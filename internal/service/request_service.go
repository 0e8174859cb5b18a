package service

import (
	"context"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *RequestService) CreateRequest(ctx context.Context, requestorID int64, input models.ItemRequestInput) (*models.ItemRequest, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, domain.Validation("description must not be blank")
	}
	if _, err := s.repo.GetUserByID(ctx, requestorID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		Description: input.Description,
		RequestorID: requestorID,
		CreatedAt:   s.now().UTC(),
		Items:       []*models.Item{},
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requestor_id", requestorID).Msg("item request created")
	return request, nil
}

// GetOwnRequests lists the caller's requests, newest first.
func (s *RequestService) GetOwnRequests(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, requestorID); err != nil {
		return nil, err
	}
	requests, err := s.repo.GetRequestsByRequestor(ctx, requestorID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// GetOtherRequests lists requests made by other users, newest first.
func (s *RequestService) GetOtherRequests(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	if err := ValidatePage(page); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.repo.GetRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) GetRequest(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.withItems(ctx, []*models.ItemRequest{request}); err != nil {
		return nil, err
	}
	return request, nil
}

// withItems attaches answering items with one query. The repository returns
// them by id descending, which is kept per request.
func (s *RequestService) withItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequest, error) {
	if len(requests) == 0 {
		return requests, nil
	}

	ids := make([]int64, 0, len(requests))
	byID := make(map[int64]*models.ItemRequest, len(requests))
	for _, r := range requests {
		r.CreatedAt = r.CreatedAt.UTC()
		r.Items = []*models.Item{}
		ids = append(ids, r.ID)
		byID[r.ID] = r
	}

	items, err := s.repo.GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		if r, ok := byID[*item.RequestID]; ok {
			r.Items = append(r.Items, item)
		}
	}
	return requests, nil
}
