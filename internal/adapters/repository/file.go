package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/okian/ladder/internal/domain/profile"
)

// FileStore keeps one JSON file per slot in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.dir, url.PathEscape(slot)+".json")
}

func (s *FileStore) Load(_ context.Context, slot string) (profile.Source, error) {
	raw, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return profile.Absent(profile.KindCache), nil
	}
	if err != nil {
		return profile.Absent(profile.KindCache), fmt.Errorf("read slot %q: %w", slot, err)
	}
	return decodeRecord(raw)
}

// Save writes to a temp file and renames it over the slot.
func (s *FileStore) Save(_ context.Context, slot string, p profile.UserProfile) error {
	raw, err := encodeRecord(p)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("write slot %q: %w", slot, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write slot %q: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write slot %q: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), s.path(slot)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write slot %q: %w", slot, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
