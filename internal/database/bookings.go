package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.item_id, b.booker_id, b.start_date, b.end_date, b.status,
		u.name AS booker_name, i.name AS item_name, i.owner_id
	FROM bookings b
	JOIN users u ON u.id = b.booker_id
	JOIN items i ON i.id = b.item_id`

type bookingRow struct {
	ID         int64     `db:"id"`
	ItemID     int64     `db:"item_id"`
	BookerID   int64     `db:"booker_id"`
	Start      time.Time `db:"start_date"`
	End        time.Time `db:"end_date"`
	Status     string    `db:"status"`
	BookerName string    `db:"booker_name"`
	ItemName   string    `db:"item_name"`
	OwnerID    int64     `db:"owner_id"`
}

func (r *bookingRow) toModel() *models.Booking {
	return &models.Booking{
		ID:       r.ID,
		ItemID:   r.ItemID,
		BookerID: r.BookerID,
		Start:    r.Start.UTC(),
		End:      r.End.UTC(),
		Status:   models.BookingStatus(r.Status),
		Booker:   models.UserRef{ID: r.BookerID, Name: r.BookerName},
		Item:     models.ItemRef{ID: r.ItemID, Name: r.ItemName, OwnerID: r.OwnerID},
	}
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	booking.Start = booking.Start.UTC()
	booking.End = booking.End.UTC()
	if booking.Status == "" {
		booking.Status = models.StatusWaiting
	}

	id, err := db.insertReturningID(ctx,
		`INSERT INTO bookings (item_id, booker_id, start_date, end_date, status)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		booking.ItemID, booking.BookerID, booking.Start, booking.End, string(booking.Status))
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ID = id
	return nil
}

// GetBooking returns the booking with its booker and item snapshots.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var row bookingRow
	if err := db.get(ctx, &row, bookingSelect+` WHERE b.id = ?`, id); err != nil {
		return nil, lookupError(err, "Booking", id)
	}
	return row.toModel(), nil
}

// UpdateBookingStatus moves the booking from one status to another. It fails
// with ErrConcurrentModification when the stored status is no longer from.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, from, to models.BookingStatus) error {
	rows, err := db.execAffected(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) GetBookingsByBooker(
	ctx context.Context, bookerID int64, filter domain.BookingFilter, page models.Page,
) ([]*models.Booking, error) {
	return db.listBookings(ctx, "b.booker_id = ?", bookerID, filter, page)
}

func (db *DB) GetBookingsByOwner(
	ctx context.Context, ownerID int64, filter domain.BookingFilter, page models.Page,
) ([]*models.Booking, error) {
	return db.listBookings(ctx, "i.owner_id = ?", ownerID, filter, page)
}

func (db *DB) listBookings(
	ctx context.Context, who string, userID int64, filter domain.BookingFilter, page models.Page,
) ([]*models.Booking, error) {
	conds := []string{who}
	args := []interface{}{userID}

	stateConds, stateArgs, err := stateCondition(filter)
	if err != nil {
		return nil, err
	}
	conds = append(conds, stateConds...)
	args = append(args, stateArgs...)
	args = append(args, page.Limit(), page.Offset())

	query := bookingSelect + ` WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY b.start_date DESC, b.id DESC LIMIT ? OFFSET ?`

	var rows []bookingRow
	if err := db.selectRows(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*models.Booking, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, rows[i].toModel())
	}
	return bookings, nil
}

// stateCondition translates a list filter into SQL conditions.
func stateCondition(filter domain.BookingFilter) ([]string, []interface{}, error) {
	now := filter.Now.UTC()
	switch filter.State {
	case models.StateAll, "":
		return nil, nil, nil
	case models.StateWaiting, models.StateApproved, models.StateRejected:
		return []string{"b.status = ?"}, []interface{}{string(filter.State)}, nil
	case models.StateFuture:
		return []string{"b.start_date > ?"}, []interface{}{now}, nil
	case models.StatePast:
		return []string{"b.end_date < ?"}, []interface{}{now}, nil
	case models.StateCurrent:
		return []string{"b.start_date <= ?", "b.end_date >= ?"}, []interface{}{now, now}, nil
	default:
		return nil, nil, domain.UnsupportedState(string(filter.State))
	}
}

// GetLastBooking is the latest booking of the item that started before now.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingShort, error) {
	return db.bookingShort(ctx,
		`SELECT id, booker_id, start_date, end_date FROM bookings
		 WHERE item_id = ? AND start_date < ? ORDER BY start_date DESC, id DESC LIMIT 1`,
		itemID, now.UTC())
}

// GetNextBooking is the earliest booking of the item that starts after now.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingShort, error) {
	return db.bookingShort(ctx,
		`SELECT id, booker_id, start_date, end_date FROM bookings
		 WHERE item_id = ? AND start_date > ? ORDER BY start_date ASC, id ASC LIMIT 1`,
		itemID, now.UTC())
}

func (db *DB) bookingShort(ctx context.Context, query string, args ...interface{}) (*models.BookingShort, error) {
	var short models.BookingShort
	if err := db.get(ctx, &short, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	short.Start = short.Start.UTC()
	short.End = short.End.UTC()
	return &short, nil
}

// HasFinishedBooking reports whether the booker holds an approved booking of
// the item that has already started.
func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var count int
	err := db.get(ctx, &count,
		`SELECT COUNT(*) FROM bookings
		 WHERE booker_id = ? AND item_id = ? AND status = ? AND start_date < ?`,
		bookerID, itemID, string(models.StatusApproved), now.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to check bookings: %w", err)
	}
	return count > 0, nil
}
