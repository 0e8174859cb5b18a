package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// BookingFilter narrows a booking list. Now is the reference point for the
// time based states.
type BookingFilter struct {
	State models.BookingState
	Now   time.Time
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetRequestsExcept(ctx context.Context, requestorID int64, page models.Page) ([]*models.ItemRequest, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, from, to models.BookingStatus) error
	GetBookingsByBooker(ctx context.Context, bookerID int64, filter BookingFilter, page models.Page) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64, filter BookingFilter, page models.Page) ([]*models.Booking, error)
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingShort, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingShort, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

type Repository interface {
	UserRepository
	ItemRepository
	RequestRepository
	BookingRepository
	CommentRepository
	Ping(ctx context.Context) error
}

// RateLimitStore counts hits per key in a fixed window.
type RateLimitStore interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, bookerID int64, input models.BookingInput) (*models.Booking, error)
	DecideBooking(ctx context.Context, bookingID, ownerID int64, approve bool) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error)
	GetBookerBookings(ctx context.Context, bookerID int64, state string, page models.Page) ([]*models.Booking, error)
	GetOwnerBookings(ctx context.Context, ownerID int64, state string, page models.Page) ([]*models.Booking, error)
}

type UserService interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type ItemService interface {
	CreateItem(ctx context.Context, ownerID int64, input models.ItemInput) (*models.Item, error)
	UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	DeleteItem(ctx context.Context, ownerID, itemID int64) error
	GetItem(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error)
	GetOwnerItems(ctx context.Context, ownerID int64, page models.Page) ([]*models.ItemDetails, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	AddComment(ctx context.Context, authorID, itemID int64, input models.CommentInput) (*models.Comment, error)
}

type RequestService interface {
	CreateRequest(ctx context.Context, requestorID int64, input models.ItemRequestInput) (*models.ItemRequest, error)
	GetOwnRequests(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetOtherRequests(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error)
	GetRequest(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error)
}
