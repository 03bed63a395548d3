// Package snapshot holds the storage backends for the persisted dashboard
// state. Every backend stores opaque bytes under a key and reports a missing
// key as sentinel.ErrNotFound.
package snapshot

import (
	"context"
	"sync"

	"cosurvival/pkg/platform/sentinel"
)

// Memory keeps snapshots in process memory. It is the default backend and
// what tests use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}
