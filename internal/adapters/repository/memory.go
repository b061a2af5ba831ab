// Package repository defines the versioned-document persistence port used
// by the reputation engine.
package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for embedded and test use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		docs: make(map[string]Document),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the document stored under key.
func (s *MemoryStore) Read(ctx context.Context, key string) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	return doc, ok, nil
}

// Write replaces the document under key.
func (s *MemoryStore) Write(ctx context.Context, key string, schemaVersion int, data json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrEmptyKey
	}
	// Copy so callers reusing their buffer cannot mutate stored state.
	stored := make(json.RawMessage, len(data))
	copy(stored, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = Document{
		SchemaVersion: schemaVersion,
		Data:          stored,
		UpdatedAt:     s.now(),
	}
	return nil
}

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
