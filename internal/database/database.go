package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shareit/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// sqliteDriverName is go-sqlite3 with shareit_lower registered on every
// connection. SQLite's own LOWER only folds ASCII letters.
const sqliteDriverName = "sqlite3_shareit"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("shareit_lower", strings.ToLower, true)
		},
	})
	sqlx.BindDriver(sqliteDriverName, sqlx.QUESTION)
}

// DB is the relational store behind every ShareIt repository.
type DB struct {
	*sqlx.DB
	driver string
	path   string
	logger *zerolog.Logger
}

// NewDB opens the configured database and creates the schema.
func NewDB(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	var dsn string
	sqlDriver := driver
	switch driver {
	case config.DriverSQLite:
		if cfg.Path != ":memory:" {
			// Создаем директорию для БД, если её нет
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = cfg.Path + "?_foreign_keys=on&_busy_timeout=5000"
		sqlDriver = sqliteDriverName
	case config.DriverPostgres:
		dsn = cfg.Postgres.DSN()
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sqlx.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch {
	case driver == config.DriverSQLite:
		// SQLite serialises writers anyway, and an in-memory database only
		// exists inside a single connection.
		conn.SetMaxOpenConns(1)
	case cfg.Postgres.MaxConnections > 0:
		conn.SetMaxOpenConns(cfg.Postgres.MaxConnections)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: conn, driver: driver, path: cfg.Path, logger: logger}
	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if logger != nil {
		logger.Info().Str("driver", driver).Str("path", cfg.Path).Msg("Database initialized")
	}
	return db, nil
}

// Driver reports the sql driver name.
func (db *DB) Driver() string { return db.driver }

// Path is the SQLite file path, empty for postgres.
func (db *DB) Path() string {
	if db.driver != config.DriverSQLite {
		return ""
	}
	return db.path
}

// lowerFunc is the SQL function that lowercases any Unicode letter.
func (db *DB) lowerFunc() string {
	if db.driver == config.DriverSQLite {
		return "shareit_lower"
	}
	return "LOWER"
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) createTables() error {
	queries := sqliteSchema
	if db.driver == config.DriverPostgres {
		queries = postgresSchema
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", strings.TrimSpace(query), err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	// Пользователи
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE
	)`,
	// Запросы на вещи
	`CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		requestor_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL
	)`,
	// Вещи
	`CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		available BOOLEAN NOT NULL,
		owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		request_id INTEGER REFERENCES requests(id) ON DELETE SET NULL
	)`,
	// Бронирования
	`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		booker_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'WAITING'
	)`,
	// Комментарии
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_items_request_id ON items(request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_requestor_id ON requests(requestor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON bookings(booker_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_start_date ON bookings(start_date)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(512) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id BIGSERIAL PRIMARY KEY,
		description TEXT NOT NULL,
		requestor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		available BOOLEAN NOT NULL,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		request_id BIGINT REFERENCES requests(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		booker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'WAITING'
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		text TEXT NOT NULL,
		item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_items_request_id ON items(request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_requestor_id ON requests(requestor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON bookings(booker_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_start_date ON bookings(start_date)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id)`,
}

// insertReturningID runs an INSERT ... RETURNING id written with ? placeholders.
func (db *DB) insertReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := db.QueryRowxContext(ctx, db.Rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (db *DB) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return db.GetContext(ctx, dest, db.Rebind(query), args...)
}

func (db *DB) selectRows(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return db.SelectContext(ctx, dest, db.Rebind(query), args...)
}

// execAffected executes a statement and returns the number of affected rows.
func (db *DB) execAffected(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
