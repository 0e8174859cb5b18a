package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.CreatedAt = comment.CreatedAt.UTC()
	id, err := db.insertReturningID(ctx,
		`INSERT INTO comments (text, item_id, author_id, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		comment.Text, comment.ItemID, comment.AuthorID, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	comment.ID = id
	return nil
}

func (db *DB) GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := db.selectRows(ctx, &comments,
		`SELECT c.id, c.text, c.item_id, c.author_id, u.name AS author_name, c.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.item_id = ?
		 ORDER BY c.created_at, c.id`,
		itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}
