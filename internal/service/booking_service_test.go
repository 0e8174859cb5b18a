package service

import (
	"context"
	"io"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func newBookingService(repo *mockRepo, bus *mockEventBus, policy BookingPolicy) *BookingService {
	logger := zerolog.New(io.Discard)
	var publisher domain.EventPublisher
	if bus != nil {
		publisher = bus
	}
	svc := NewBookingService(repo, publisher, policy, &logger)
	svc.now = func() time.Time { return testNow }
	return svc
}

func period(start, end time.Duration) models.BookingInput {
	s, e := testNow.Add(start), testNow.Add(end)
	return models.BookingInput{ItemID: 10, Start: &s, End: &e}
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()
	owner := &models.User{ID: 1, Name: "owner", Email: "owner@example.com"}
	booker := &models.User{ID: 2, Name: "booker", Email: "booker@example.com"}
	item := &models.Item{ID: 10, Name: "Drill", Description: "d", Available: true, OwnerID: owner.ID}

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newBookingService(repo, bus, BookingPolicy{})

		repo.On("GetUserByID", ctx, booker.ID).Return(booker, nil)
		repo.On("GetItemByID", ctx, item.ID).Return(item, nil)
		repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 100
		}).Return(nil)
		bus.On("PublishJSON", events.EventBookingCreated, mock.MatchedBy(func(p events.BookingEventPayload) bool {
			return p.BookingID == 100 && p.OwnerID == owner.ID && p.Status == "WAITING"
		})).Return(nil)

		booking, err := svc.CreateBooking(ctx, booker.ID, period(time.Hour, 3*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(100), booking.ID)
		assert.Equal(t, models.StatusWaiting, booking.Status)
		assert.Equal(t, models.UserRef{ID: booker.ID, Name: "booker"}, booking.Booker)
		assert.Equal(t, "Drill", booking.Item.Name)

		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("MissingDates", func(t *testing.T) {
		svc := newBookingService(new(mockRepo), nil, BookingPolicy{})
		_, err := svc.CreateBooking(ctx, booker.ID, models.BookingInput{ItemID: item.ID})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("UnknownBooker", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{})
		repo.On("GetUserByID", ctx, int64(99)).Return(nil, domain.NotFound("User with id=99 not found"))

		_, err := svc.CreateBooking(ctx, 99, period(time.Hour, 2*time.Hour))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{})
		repo.On("GetUserByID", ctx, booker.ID).Return(booker, nil)
		repo.On("GetItemByID", ctx, item.ID).Return(nil, domain.NotFound("Item with id=10 not found"))

		_, err := svc.CreateBooking(ctx, booker.ID, period(time.Hour, 2*time.Hour))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UnavailableItem", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{})
		unavailable := *item
		unavailable.Available = false
		repo.On("GetUserByID", ctx, booker.ID).Return(booker, nil)
		repo.On("GetItemByID", ctx, item.ID).Return(&unavailable, nil)

		_, err := svc.CreateBooking(ctx, booker.ID, period(time.Hour, 2*time.Hour))
		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("OwnerCannotBook", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{})
		repo.On("GetUserByID", ctx, owner.ID).Return(owner, nil)
		repo.On("GetItemByID", ctx, item.ID).Return(item, nil)

		_, err := svc.CreateBooking(ctx, owner.ID, period(time.Hour, 2*time.Hour))
		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	periods := []struct {
		name       string
		start, end time.Duration
		strict     bool
		wantErr    bool
	}{
		{name: "end in the past", start: -3 * time.Hour, end: -time.Hour, wantErr: true},
		{name: "end equals now", start: -time.Hour, end: 0, wantErr: true},
		{name: "end before start", start: 2 * time.Hour, end: time.Hour, wantErr: true},
		{name: "end equals start", start: time.Hour, end: time.Hour, wantErr: true},
		{name: "start in the past", start: -time.Minute, end: time.Hour, wantErr: true},
		{name: "start now inclusive", start: 0, end: time.Hour},
		{name: "start now strict", start: 0, end: time.Hour, strict: true, wantErr: true},
		{name: "start later strict", start: time.Second, end: time.Hour, strict: true},
	}
	for _, tt := range periods {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepo)
			svc := newBookingService(repo, nil, BookingPolicy{StrictStart: tt.strict})
			repo.On("GetUserByID", ctx, booker.ID).Return(booker, nil)
			repo.On("GetItemByID", ctx, item.ID).Return(item, nil)
			repo.On("CreateBooking", ctx, mock.Anything).Return(nil).Maybe()

			_, err := svc.CreateBooking(ctx, booker.ID, period(tt.start, tt.end))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func waitingBooking(status models.BookingStatus) *models.Booking {
	return &models.Booking{
		ID:       100,
		ItemID:   10,
		BookerID: 2,
		Start:    testNow.Add(time.Hour),
		End:      testNow.Add(3 * time.Hour),
		Status:   status,
		Booker:   models.UserRef{ID: 2, Name: "booker"},
		Item:     models.ItemRef{ID: 10, Name: "Drill", OwnerID: 1},
	}
}

func TestBookingService_DecideBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Approve", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newBookingService(repo, bus, BookingPolicy{})

		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusWaiting), nil)
		repo.On("UpdateBookingStatus", ctx, int64(100), models.StatusWaiting, models.StatusApproved).Return(nil)
		bus.On("PublishJSON", events.EventBookingApproved, mock.Anything).Return(nil)

		booking, err := svc.DecideBooking(ctx, 100, 1, true)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, booking.Status)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("Reject", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newBookingService(repo, bus, BookingPolicy{})

		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusWaiting), nil)
		repo.On("UpdateBookingStatus", ctx, int64(100), models.StatusWaiting, models.StatusRejected).Return(nil)
		bus.On("PublishJSON", events.EventBookingRejected, mock.Anything).Return(nil)

		booking, err := svc.DecideBooking(ctx, 100, 1, false)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, booking.Status)
		bus.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{})
		repo.On("GetBooking", ctx, int64(5)).Return(nil, domain.NotFound("Booking with id=5 not found"))

		_, err := svc.DecideBooking(ctx, 5, 1, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{})
		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusWaiting), nil)

		_, err := svc.DecideBooking(ctx, 100, 2, true)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		repo.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DoubleApproval", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{AllowRedecideRejected: true})
		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusApproved), nil)

		_, err := svc.DecideBooking(ctx, 100, 1, true)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("RejectAfterApproval", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{AllowRedecideRejected: true})
		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusApproved), nil)

		_, err := svc.DecideBooking(ctx, 100, 1, false)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Canceled", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{AllowRedecideRejected: true})
		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusCanceled), nil)

		_, err := svc.DecideBooking(ctx, 100, 1, true)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("RejectedIsFinal", func(t *testing.T) {
		for _, approve := range []bool{true, false} {
			repo := new(mockRepo)
			svc := newBookingService(repo, nil, BookingPolicy{AllowRedecideRejected: false})
			repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusRejected), nil)

			_, err := svc.DecideBooking(ctx, 100, 1, approve)
			assert.ErrorIs(t, err, domain.ErrValidation)
		}
	})

	t.Run("RejectedRedecided", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newBookingService(repo, bus, BookingPolicy{AllowRedecideRejected: true})
		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusRejected), nil)
		repo.On("UpdateBookingStatus", ctx, int64(100), models.StatusRejected, models.StatusApproved).Return(nil)
		bus.On("PublishJSON", events.EventBookingApproved, mock.Anything).Return(nil)

		booking, err := svc.DecideBooking(ctx, 100, 1, true)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, booking.Status)

		// Rejecting again keeps the booking as it is.
		repo2 := new(mockRepo)
		svc2 := newBookingService(repo2, nil, BookingPolicy{AllowRedecideRejected: true})
		repo2.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusRejected), nil)

		booking, err = svc2.DecideBooking(ctx, 100, 1, false)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, booking.Status)
		repo2.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LostRace", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{})
		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusWaiting), nil)
		repo.On("UpdateBookingStatus", ctx, int64(100), models.StatusWaiting, models.StatusApproved).
			Return(database.ErrConcurrentModification)

		_, err := svc.DecideBooking(ctx, 100, 1, true)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestBookingService_GetBooking(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := newBookingService(repo, nil, BookingPolicy{})
	repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(models.StatusWaiting), nil)

	for _, userID := range []int64{1, 2} {
		booking, err := svc.GetBooking(ctx, 100, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), booking.ID)
	}

	_, err := svc.GetBooking(ctx, 100, 3)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBookingService_Lists(t *testing.T) {
	ctx := context.Background()
	page := models.Page{From: 0, Size: 10}
	user := &models.User{ID: 2, Name: "booker"}

	t.Run("Booker", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{})
		repo.On("GetUserByID", ctx, user.ID).Return(user, nil)
		repo.On("GetBookingsByBooker", ctx, user.ID,
			domain.BookingFilter{State: models.StateFuture, Now: testNow}, page).
			Return([]*models.Booking{waitingBooking(models.StatusWaiting)}, nil)

		got, err := svc.GetBookerBookings(ctx, user.ID, "future", page)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		repo.AssertExpectations(t)
	})

	t.Run("Owner", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{})
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
		repo.On("GetBookingsByOwner", ctx, int64(1),
			domain.BookingFilter{State: models.StateAll, Now: testNow}, page).
			Return([]*models.Booking{}, nil)

		got, err := svc.GetOwnerBookings(ctx, 1, "", page)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UnknownState", func(t *testing.T) {
		svc := newBookingService(new(mockRepo), nil, BookingPolicy{})
		_, err := svc.GetBookerBookings(ctx, user.ID, "UNSUPPORTED_STATUS", page)
		assert.ErrorIs(t, err, domain.ErrUnsupportedStatus)
		assert.EqualError(t, err, "Unknown state: UNSUPPORTED_STATUS")
	})

	t.Run("BadPage", func(t *testing.T) {
		svc := newBookingService(new(mockRepo), nil, BookingPolicy{})
		_, err := svc.GetOwnerBookings(ctx, 1, "ALL", models.Page{From: -1, Size: 10})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newBookingService(repo, nil, BookingPolicy{})
		repo.On("GetUserByID", ctx, int64(42)).Return(nil, domain.NotFound("User with id=42 not found"))

		_, err := svc.GetBookerBookings(ctx, 42, "ALL", page)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingPolicy_CheckPeriod(t *testing.T) {
	now := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	hour := time.Hour

	assert.NoError(t, BookingPolicy{}.CheckPeriod(now, now.Add(hour), now))
	assert.ErrorIs(t, BookingPolicy{StrictStart: true}.CheckPeriod(now, now.Add(hour), now), domain.ErrValidation)
	assert.NoError(t, BookingPolicy{StrictStart: true}.CheckPeriod(now.Add(time.Second), now.Add(hour), now))
	assert.ErrorIs(t, BookingPolicy{}.CheckPeriod(now.Add(-time.Second), now.Add(hour), now), domain.ErrValidation)
	assert.ErrorIs(t, BookingPolicy{}.CheckPeriod(now.Add(hour), now.Add(hour), now), domain.ErrValidation)
	assert.ErrorIs(t, BookingPolicy{}.CheckPeriod(now.Add(-2*hour), now.Add(-hour), now), domain.ErrValidation)
}
