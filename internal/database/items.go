package database

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/jmoiron/sqlx"
)

const itemColumns = `id, name, description, available, owner_id, request_id`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	id, err := db.insertReturningID(ctx,
		`INSERT INTO items (name, description, available, owner_id, request_id)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := db.get(ctx, &item, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id); err != nil {
		return nil, lookupError(err, "Item", id)
	}
	return &item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	rows, err := db.execAffected(ctx,
		`UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("Item with id=%d not found", item.ID)
	}
	return nil
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	rows, err := db.execAffected(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("Item with id=%d not found", id)
	}
	return nil
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error) {
	items := []*models.Item{}
	err := db.selectRows(ctx, &items,
		`SELECT `+itemColumns+` FROM items WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		ownerID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to get owner items: %w", err)
	}
	return items, nil
}

// SearchItems matches available items whose name or description contains
// text, ignoring case.
func (db *DB) SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error) {
	items := []*models.Item{}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
	lower := db.lowerFunc()
	err := db.selectRows(ctx, &items,
		`SELECT `+itemColumns+` FROM items
		 WHERE available = ?
		   AND (`+lower+`(name) LIKE ? ESCAPE '\' OR `+lower+`(description) LIKE ? ESCAPE '\')
		 ORDER BY id LIMIT ? OFFSET ?`,
		true, pattern, pattern, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

// GetItemsByRequestIDs returns the items answering any of the requests,
// newest item first.
func (db *DB) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	items := []*models.Item{}
	if len(requestIDs) == 0 {
		return items, nil
	}

	query, args, err := sqlx.In(
		`SELECT `+itemColumns+` FROM items WHERE request_id IN (?) ORDER BY id DESC`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build request items query: %w", err)
	}
	if err := db.selectRows(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get request items: %w", err)
	}
	return items, nil
}
