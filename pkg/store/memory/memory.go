// Package memory implements store.Store with an in-process map.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"mercator-hq/dashgate/pkg/store"
)

// Store is a map-backed definition store. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]store.Record
}

// New creates an empty Store.
func New() *Store {
	return &Store{records: make(map[string]store.Record)}
}

// FindDefinition returns a copy of the record stored under id.
func (s *Store) FindDefinition(ctx context.Context, id string) (*store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(rec), nil
}

// ListIDs returns all stored identifiers in ascending order.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids, nil
}

// PutDefinition inserts or replaces rec.
func (s *Store) PutDefinition(ctx context.Context, rec *store.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil || rec.ID == "" {
		return store.NewStorageError("memory", "put", errors.New("record id is required"))
	}

	stored := *clone(*rec)
	if stored.Encoding == "" {
		stored.Encoding = store.EncodingIdentity
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.records[rec.ID] = stored
	s.mu.Unlock()
	return nil
}

// DeleteDefinition removes the record stored under id.
func (s *Store) DeleteDefinition(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func clone(rec store.Record) *store.Record {
	if rec.Definition != nil {
		rec.Definition = append([]byte(nil), rec.Definition...)
	}
	return &rec
}
