package service

import (
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"
)

var bookingStates = map[string]models.BookingState{
	"ALL":      models.StateAll,
	"WAITING":  models.StateWaiting,
	"APPROVED": models.StateApproved,
	"REJECTED": models.StateRejected,
	"FUTURE":   models.StateFuture,
	"PAST":     models.StatePast,
	"CURRENT":  models.StateCurrent,
}

// ParseBookingState reads a list filter, ignoring case. An empty value means ALL.
func ParseBookingState(raw string) (models.BookingState, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.StateAll, nil
	}
	state, ok := bookingStates[strings.ToUpper(trimmed)]
	if !ok {
		return "", domain.UnsupportedState(raw)
	}
	return state, nil
}

// ValidatePage rejects negative offsets and empty pages.
func ValidatePage(page models.Page) error {
	if page.From < 0 {
		return domain.Validation("from must not be negative")
	}
	if page.Size <= 0 {
		return domain.Validation("size must be positive")
	}
	return nil
}
