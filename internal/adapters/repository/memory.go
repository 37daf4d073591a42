package repository

import (
	"context"
	"sync"

	"github.com/okian/ladder/internal/domain/profile"
)

// MemoryStore keeps encoded records in a map.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, slot string) (profile.Source, error) {
	s.mu.RLock()
	raw, ok := s.slots[slot]
	s.mu.RUnlock()
	if !ok {
		return profile.Absent(profile.KindCache), nil
	}
	return decodeRecord(raw)
}

func (s *MemoryStore) Save(_ context.Context, slot string, p profile.UserProfile) error {
	raw, err := encodeRecord(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.slots[slot] = raw
	s.mu.Unlock()
	return nil
}

// Put stores raw bytes in slot as they are.
func (s *MemoryStore) Put(slot string, raw []byte) {
	s.mu.Lock()
	s.slots[slot] = append([]byte(nil), raw...)
	s.mu.Unlock()
}

func (s *MemoryStore) Close() error { return nil }
