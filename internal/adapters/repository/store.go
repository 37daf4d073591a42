// Package repository persists the resolved profile in a named slot of a
// local key-value cache. It only serializes; merging belongs to the resolver.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/ladder/internal/domain/profile"
)

// Store reads and overwrites profile records by slot.
type Store interface {
	// Load returns an absent source for a missing slot, and an absent source
	// with an ErrCorrupt error when the slot holds unreadable bytes.
	Load(ctx context.Context, slot string) (profile.Source, error)
	// Save fully overwrites slot with p.
	Save(ctx context.Context, slot string, p profile.UserProfile) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open creates the store selected by driver. path is a directory for the
// file driver and a database file for sqlite.
func Open(ctx context.Context, driver, path string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(path)
	case DriverSQLite:
		return NewSQLiteStore(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func encodeRecord(p profile.UserProfile) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return b, nil
}

func decodeRecord(raw []byte) (profile.Source, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return profile.Absent(profile.KindCache), fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if rec == nil {
		return profile.Absent(profile.KindCache), fmt.Errorf("%w: not an object", ErrCorrupt)
	}
	return profile.FromRecord(profile.KindCache, rec), nil
}
