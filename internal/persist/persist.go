// Package persist defines the durable key/value contract behind the audit
// collections and the write path that mirrors in-memory changes into it.
package persist

import (
	"context"
	"strings"
	"sync"
)

// Collection keys. Each holds one JSON array, overwritten as a whole.
const (
	KeyBuildings       = "buildings"
	KeyAssets          = "assets"
	KeyCatalogue       = "catalogue"
	KeyFunctionalAreas = "functionalAreas"
)

const photoKeyPrefix = "photo:"

// PhotoKey is the storage key for a photo attachment.
func PhotoKey(name string) string { return photoKeyPrefix + name }

// IsPhotoKey reports whether key addresses a photo attachment.
func IsPhotoKey(key string) bool { return strings.HasPrefix(key, photoKeyPrefix) }

// Gateway stores opaque values by key. Load reports ok=false for absent keys.
type Gateway interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Gateway used by tests and throwaway sessions.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
	// SaveErr, when set, is returned from every Save.
	SaveErr error
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Keys returns the stored keys in no particular order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}
