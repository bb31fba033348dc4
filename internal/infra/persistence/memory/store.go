// Package memory provides an in-process snapshot store used for tests and
// ephemeral runs. Snapshots are held as encoded JSON so callers never share
// state with the store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"starfieldpedia/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

// Store keeps the most recent snapshot in memory.
type Store struct {
	mu      sync.RWMutex
	payload []byte
	saves   int
}

// NewStore constructs an empty in-memory snapshot store.
func NewStore() *Store { return &Store{} }

// Save replaces the stored snapshot.
func (s *Store) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.mu.Lock()
	s.payload = data
	s.saves++
	s.mu.Unlock()
	return nil
}

// Load returns a copy of the stored snapshot; ok is false when none was saved.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, false, err
	}
	s.mu.RLock()
	data := s.payload
	s.mu.RUnlock()
	if data == nil {
		return domain.Snapshot{}, false, nil
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, true, nil
}

// Saves reports how many snapshots have been written.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close implements domain.SnapshotStore.
func (s *Store) Close() error { return nil }
