package storage

import (
	"context"
	"sync"

	"github.com/cory-johannsen/tinymud/internal/game/db"
)

// MemoryStore keeps the last saved snapshot in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	saved *db.Database
	saves int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the last saved world, or ErrEmpty.
func (m *MemoryStore) Load(ctx context.Context) (*db.Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil || m.saved.Len() == 0 {
		return nil, ErrEmpty
	}
	return m.saved.Clone(), nil
}

// Save stores a copy of d.
func (m *MemoryStore) Save(ctx context.Context, d *db.Database) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = d.Clone()
	m.saves++
	return nil
}

// Saves reports how many snapshots have been saved.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
