package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingPolicy holds the configurable parts of the booking rules.
type BookingPolicy struct {
	// StrictStart requires start > now. Otherwise start == now is accepted.
	StrictStart bool
	// AllowRedecideRejected lets the owner decide a REJECTED booking again.
	AllowRedecideRejected bool
}

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	policy   BookingPolicy
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, policy BookingPolicy, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, bookerID int64, input models.BookingInput) (*models.Booking, error) {
	if input.Start == nil || input.End == nil {
		return nil, domain.Validation("start and end must be set")
	}

	booker, err := s.repo.GetUserByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItemByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if !item.Available {
		return nil, domain.Validation("Item with id=%d is not available", item.ID)
	}
	if item.OwnerID == bookerID {
		return nil, domain.Validation("owner cannot book their own item")
	}

	start, end := input.Start.UTC(), input.End.UTC()
	if err := s.validatePeriod(start, end); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ItemID:   item.ID,
		BookerID: booker.ID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
		Booker:   models.UserRef{ID: booker.ID, Name: booker.Name},
		Item:     models.ItemRef{ID: item.ID, Name: item.Name, OwnerID: item.OwnerID},
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", item.ID).
		Int64("booker_id", bookerID).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, bookerID)

	return booking, nil
}

func (s *BookingService) validatePeriod(start, end time.Time) error {
	return s.policy.CheckPeriod(start, end, s.now().UTC())
}

// CheckPeriod applies the booking period rules as of now. The gateway runs
// the same check before forwarding.
func (p BookingPolicy) CheckPeriod(start, end, now time.Time) error {
	// Проверяем, что бронирование не закончилось
	if !end.After(now) {
		return domain.Validation("end must be in the future")
	}
	if !end.After(start) {
		return domain.Validation("end must be after start")
	}
	// Начало не в прошлом
	if start.Before(now) || (p.StrictStart && start.Equal(now)) {
		return domain.Validation("start must not be in the past")
	}
	return nil
}

// DecideBooking approves or rejects a WAITING booking on behalf of the item owner.
func (s *BookingService) DecideBooking(ctx context.Context, bookingID, ownerID int64, approve bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Item.OwnerID != ownerID {
		return nil, domain.Forbidden("only the owner of item %d can decide booking %d", booking.ItemID, booking.ID)
	}

	switch booking.Status {
	case models.StatusWaiting:
	case models.StatusApproved:
		if approve {
			return nil, domain.Validation("booking %d is already approved", booking.ID)
		}
		return nil, domain.Validation("booking %d is approved and cannot be rejected", booking.ID)
	case models.StatusRejected:
		if !s.policy.AllowRedecideRejected {
			return nil, domain.Validation("booking %d is already rejected", booking.ID)
		}
	default:
		return nil, domain.Validation("booking %d cannot be decided in status %s", booking.ID, booking.Status)
	}

	next := models.StatusRejected
	if approve {
		next = models.StatusApproved
	}
	if next == booking.Status {
		// Re-rejecting is a no-op.
		return booking, nil
	}

	if err := s.repo.UpdateBookingStatus(ctx, booking.ID, booking.Status, next); err != nil {
		if errors.Is(err, database.ErrConcurrentModification) {
			return nil, domain.Validation("booking %d was changed concurrently", booking.ID)
		}
		return nil, err
	}
	booking.Status = next

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("owner_id", ownerID).
		Str("status", string(next)).
		Msg("booking decided")

	eventType := events.EventBookingRejected
	if approve {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, booking, ownerID)

	return booking, nil
}

// GetBooking is visible to the booker and the item owner only.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookerID != userID && booking.Item.OwnerID != userID {
		return nil, domain.Forbidden("user %d has no access to booking %d", userID, bookingID)
	}
	return booking, nil
}

func (s *BookingService) GetBookerBookings(ctx context.Context, bookerID int64, state string, page models.Page) ([]*models.Booking, error) {
	filter, err := s.listFilter(ctx, bookerID, state, page)
	if err != nil {
		return nil, err
	}
	return s.repo.GetBookingsByBooker(ctx, bookerID, filter, page)
}

func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID int64, state string, page models.Page) ([]*models.Booking, error) {
	filter, err := s.listFilter(ctx, ownerID, state, page)
	if err != nil {
		return nil, err
	}
	return s.repo.GetBookingsByOwner(ctx, ownerID, filter, page)
}

func (s *BookingService) listFilter(ctx context.Context, userID int64, state string, page models.Page) (domain.BookingFilter, error) {
	parsed, err := ParseBookingState(state)
	if err != nil {
		return domain.BookingFilter{}, err
	}
	if err := ValidatePage(page); err != nil {
		return domain.BookingFilter{}, err
	}
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return domain.BookingFilter{}, err
	}
	return domain.BookingFilter{State: parsed, Now: s.now().UTC()}, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		ItemID:      booking.ItemID,
		ItemName:    booking.Item.Name,
		BookerID:    booking.BookerID,
		OwnerID:     booking.Item.OwnerID,
		Status:      string(booking.Status),
		Start:       booking.Start,
		End:         booking.End,
		ChangedByID: changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
