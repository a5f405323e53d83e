package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/Landonswork/lando-backend-call-routing/internal/logging"
)

// DB wraps a SQLite connection with migration support.
type DB struct {
	sql *sql.DB
	log *logging.Logger
}

// Open opens (or creates) a SQLite database at the given path and runs
// migrations. Use ":memory:" for tests.
func Open(path string, log *logging.Logger) (*DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating db directory: %w", err)
			}
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	db := &DB{sql: sqlDB, log: log.Sub("store")}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	db.log.Info().Str("path", path).Msg("database opened")
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.sql.Close()
}

func (db *DB) migrate() error {
	if _, err := db.sql.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := db.sql.QueryRow(
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version,
		).Scan(&count); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		db.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := db.sql.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

type migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "incomplete_records",
		SQL: `CREATE TABLE IF NOT EXISTS incomplete_records (
			caller_number TEXT PRIMARY KEY,
			fields TEXT NOT NULL,
			status TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
}

// SQLiteIncompleteStore implements IncompleteStore on a DB.
type SQLiteIncompleteStore struct {
	db *DB
}

// NewSQLiteIncompleteStore creates an incomplete-record store on db.
func NewSQLiteIncompleteStore(db *DB) *SQLiteIncompleteStore {
	return &SQLiteIncompleteStore{db: db}
}

// Get returns the record for a number, or nil if none exists.
func (s *SQLiteIncompleteStore) Get(ctx context.Context, number string) (*Incomplete, error) {
	var fieldsJSON, status, updatedAt string
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT fields, status, updated_at FROM incomplete_records WHERE caller_number = ?`, number,
	).Scan(&fieldsJSON, &status, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec := Incomplete{CallerNumber: number, Status: status}
	if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
		return nil, fmt.Errorf("decoding record fields: %w", err)
	}
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rec, nil
}

// Put stores a record, overwriting any prior one for the same number.
func (s *SQLiteIncompleteStore) Put(ctx context.Context, rec Incomplete) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return err
	}
	_, err = s.db.sql.ExecContext(ctx,
		`INSERT INTO incomplete_records (caller_number, fields, status, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(caller_number) DO UPDATE SET
		   fields = excluded.fields,
		   status = excluded.status,
		   updated_at = excluded.updated_at`,
		rec.CallerNumber, string(fieldsJSON), rec.Status, rec.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

// Delete removes the record for a number.
func (s *SQLiteIncompleteStore) Delete(ctx context.Context, number string) error {
	_, err := s.db.sql.ExecContext(ctx,
		`DELETE FROM incomplete_records WHERE caller_number = ?`, number)
	return err
}

// compile-time interface checks
var (
	_ IncompleteStore = (*MemoryIncompleteStore)(nil)
	_ IncompleteStore = (*SQLiteIncompleteStore)(nil)
)
