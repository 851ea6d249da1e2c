// Package kvstore is the host's persistent string key-value store.
package kvstore

import (
	"context"
	"sync"
)

const (
	// FrequencyKey holds the sealed word-frequency blob
	FrequencyKey = "word_Frequency"
	// PreferenceKey holds the host's theme preference; the autocomplete core never reads it
	PreferenceKey = "darkMode"
)

// Store is a string-keyed slot store
type Store interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)
	// Put stores value under key, replacing any existing value
	Put(ctx context.Context, key, value string) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryStore keeps slots in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string)}
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[key]
	return v, ok, nil
}

// Put implements Store
func (m *MemoryStore) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = value
	return nil
}

// Delete implements Store
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	return nil
}

// Close implements Store
func (m *MemoryStore) Close() error {
	return nil
}
