// Package store provides SQLite-backed persistence for the describe history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/dx/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides access to the history SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS describe_history (
		id TEXT PRIMARY KEY,
		input TEXT NOT NULL,
		object_id TEXT,
		class TEXT,
		status TEXT NOT NULL,
		category TEXT,
		kind TEXT,
		message TEXT,
		attempts INTEGER NOT NULL DEFAULT 0,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		inputs_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_describe_history_created_at ON describe_history(created_at);
	CREATE INDEX IF NOT EXISTS idx_describe_history_object_id ON describe_history(object_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// WriteHistory inserts a history entry. ID and CreatedAt are filled in when
// empty.
func (s *Store) WriteHistory(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO describe_history (id, input, object_id, class, status, category, kind, message, attempts, elapsed_ms, inputs_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Input, nullString(entry.ObjectID), nullString(entry.Class), entry.Status,
		nullString(entry.Category), nullString(entry.Kind), nullString(entry.Message), entry.Attempts, entry.ElapsedMS,
		entry.InputsHash, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// ListHistory returns up to limit entries, newest first. A limit of zero or
// less returns everything.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	query := `SELECT id, input, object_id, class, status, category, kind, message, attempts, elapsed_ms, inputs_hash, created_at
		FROM describe_history ORDER BY created_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var objectID, class, category, kind, message sql.NullString
		if err := rows.Scan(&e.ID, &e.Input, &objectID, &class, &e.Status, &category, &kind, &message,
			&e.Attempts, &e.ElapsedMS, &e.InputsHash, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.ObjectID = objectID.String
		e.Class = class.String
		e.Category = category.String
		e.Kind = kind.String
		e.Message = message.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearHistory deletes every entry and returns how many were removed.
func (s *Store) ClearHistory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM describe_history`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
