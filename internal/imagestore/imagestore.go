// Package imagestore offloads captured image payloads to object storage so
// persisted session snapshots stay small.
package imagestore

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("imagestore: object not found")

// Store is the payload storage surface. S3Store is the production
// implementation; MemoryStore serves tests and single-process setups.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

// MemoryStore keeps payloads in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	m.byID[key] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.byID[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.byID, key)
	m.mu.Unlock()
	return nil
}
