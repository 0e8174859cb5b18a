package models

type Item struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Available   bool   `json:"available" db:"available"`
	OwnerID     int64  `json:"ownerId" db:"owner_id"`
	RequestID   *int64 `json:"requestId,omitempty" db:"request_id"`
}

// ItemRef is the item snapshot carried by a booking.
type ItemRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"-"`
}

// ItemDetails is the item view: comments for everyone, last/next bookings
// only when the viewer owns the item.
type ItemDetails struct {
	Item
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
	Comments    []*Comment    `json:"comments"`
}

type ItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

func (p ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
}
