package database

import (
	"context"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	id, err := db.insertReturningID(ctx,
		`INSERT INTO users (name, email) VALUES (?, ?) RETURNING id`,
		user.Name, user.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("email %s is already in use", user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := db.get(ctx, &user, `SELECT id, name, email FROM users WHERE id = ?`, id); err != nil {
		return nil, lookupError(err, "User", id)
	}
	return &user, nil
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	if err := db.selectRows(ctx, &users, `SELECT id, name, email FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	rows, err := db.execAffected(ctx,
		`UPDATE users SET name = ?, email = ? WHERE id = ?`,
		user.Name, user.Email, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("email %s is already in use", user.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("User with id=%d not found", user.ID)
	}
	return nil
}

// DeleteUser removes the user together with everything they own.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	rows, err := db.execAffected(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("User with id=%d not found", id)
	}
	return nil
}
