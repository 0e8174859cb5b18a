package models

import (
	"encoding/json"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	StatusCanceled BookingStatus = "CANCELED"
)

// BookingState is a list filter. Only WAITING, APPROVED and REJECTED map to a
// persisted status, the rest are evaluated against the current time.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateWaiting  BookingState = "WAITING"
	StateApproved BookingState = "APPROVED"
	StateRejected BookingState = "REJECTED"
	StateFuture   BookingState = "FUTURE"
	StatePast     BookingState = "PAST"
	StateCurrent  BookingState = "CURRENT"
)

type Booking struct {
	ID       int64         `json:"id"`
	ItemID   int64         `json:"itemId"`
	BookerID int64         `json:"bookerId"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
	Booker   UserRef       `json:"booker"`
	Item     ItemRef       `json:"item"`
}

// BookingShort is the booking snapshot embedded into an item view.
type BookingShort struct {
	ID       int64     `json:"id" db:"id"`
	BookerID int64     `json:"bookerId" db:"booker_id"`
	Start    time.Time `json:"start" db:"start_date"`
	End      time.Time `json:"end" db:"end_date"`
}

type BookingInput struct {
	ItemID int64      `json:"itemId"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
}

// UnmarshalJSON accepts RFC 3339 timestamps as well as zone-less
// "2006-01-02T15:04:05" values, which are read as UTC.
func (in *BookingInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemID int64   `json:"itemId"`
		Start  *string `json:"start"`
		End    *string `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	in.ItemID = raw.ItemID
	var err error
	if in.Start, err = parseOptionalTimestamp(raw.Start); err != nil {
		return err
	}
	if in.End, err = parseOptionalTimestamp(raw.End); err != nil {
		return err
	}
	return nil
}
