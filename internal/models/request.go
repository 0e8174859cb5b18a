package models

import "time"

type ItemRequest struct {
	ID          int64     `json:"id" db:"id"`
	Description string    `json:"description" db:"description"`
	RequestorID int64     `json:"requestorId" db:"requestor_id"`
	CreatedAt   time.Time `json:"created" db:"created_at"`
	Items       []*Item   `json:"items" db:"-"`
}

type ItemRequestInput struct {
	Description string `json:"description"`
}
