package service

import (
	"testing"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingState(t *testing.T) {
	tests := []struct {
		raw  string
		want models.BookingState
	}{
		{"", models.StateAll},
		{"ALL", models.StateAll},
		{"waiting", models.StateWaiting},
		{"Approved", models.StateApproved},
		{"REJECTED", models.StateRejected},
		{"future", models.StateFuture},
		{" past ", models.StatePast},
		{"CURRENT", models.StateCurrent},
	}
	for _, tt := range tests {
		got, err := ParseBookingState(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}

	for _, raw := range []string{"UNSUPPORTED_STATUS", "CANCELED", "all-ish"} {
		_, err := ParseBookingState(raw)
		assert.ErrorIs(t, err, domain.ErrUnsupportedStatus)
		assert.EqualError(t, err, "Unknown state: "+raw)
	}
}

func TestValidatePage(t *testing.T) {
	assert.NoError(t, ValidatePage(models.Page{From: 0, Size: 1}))
	assert.ErrorIs(t, ValidatePage(models.Page{From: -1, Size: 10}), domain.ErrValidation)
	assert.ErrorIs(t, ValidatePage(models.Page{From: 0, Size: 0}), domain.ErrValidation)
}
