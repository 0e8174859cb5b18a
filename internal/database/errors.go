package database

import (
	"database/sql"
	"errors"
	"fmt"

	"shareit/internal/domain"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrConcurrentModification is returned when a conditional update matched no
// row because the record changed in between.
var ErrConcurrentModification = errors.New("concurrent modification")

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// lookupError turns a missing row into a NotFound error and wraps the rest.
func lookupError(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("%s with id=%d not found", entity, id)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}
