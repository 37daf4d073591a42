package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/ladder/internal/domain/profile"
)

const schema = `CREATE TABLE IF NOT EXISTS profile_cache (
	slot       TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps records in a single sqlite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, slot string) (profile.Source, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM profile_cache WHERE slot = ?", slot).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.Absent(profile.KindCache), nil
	}
	if err != nil {
		return profile.Absent(profile.KindCache), fmt.Errorf("load slot %q: %w", slot, err)
	}
	return decodeRecord(raw)
}

func (s *SQLiteStore) Save(ctx context.Context, slot string, p profile.UserProfile) error {
	raw, err := encodeRecord(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profile_cache (slot, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, slot, raw, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save slot %q: %w", slot, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
