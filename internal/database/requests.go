package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

const requestColumns = `id, description, requestor_id, created_at`

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	request.CreatedAt = request.CreatedAt.UTC()
	id, err := db.insertReturningID(ctx,
		`INSERT INTO requests (description, requestor_id, created_at) VALUES (?, ?, ?) RETURNING id`,
		request.Description, request.RequestorID, request.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.ID = id
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var request models.ItemRequest
	if err := db.get(ctx, &request, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id); err != nil {
		return nil, lookupError(err, "Request", id)
	}
	return &request, nil
}

func (db *DB) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	requests := []*models.ItemRequest{}
	err := db.selectRows(ctx, &requests,
		`SELECT `+requestColumns+` FROM requests WHERE requestor_id = ? ORDER BY created_at DESC, id DESC`,
		requestorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get own requests: %w", err)
	}
	return requests, nil
}

// GetRequestsExcept lists the requests made by everyone but requestorID.
func (db *DB) GetRequestsExcept(ctx context.Context, requestorID int64, page models.Page) ([]*models.ItemRequest, error) {
	requests := []*models.ItemRequest{}
	err := db.selectRows(ctx, &requests,
		`SELECT `+requestColumns+` FROM requests WHERE requestor_id <> ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		requestorID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to get requests: %w", err)
	}
	return requests, nil
}
