package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/seniorinteract/internal/errors"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend is an in-memory Backend, used by tests and short-lived runs.
type MemoryBackend struct {
	mu       sync.RWMutex
	values   map[string]string
	capacity int // total bytes of keys+values; 0 means unbounded
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithCapacity bounds the total size of stored keys and values in bytes.
// Writes that would exceed it fail with ErrQuotaExceeded.
func WithCapacity(bytes int) MemoryOption {
	return func(m *MemoryBackend) {
		m.capacity = bytes
	}
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend(options ...MemoryOption) *MemoryBackend {
	m := &MemoryBackend{
		values: make(map[string]string),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.capacity > 0 {
		used := 0
		for k, v := range m.values {
			if k == key {
				continue
			}
			used += len(k) + len(v)
		}
		if used+len(key)+len(value) > m.capacity {
			return fmt.Errorf("set %q (%d bytes, capacity %d): %w", key, len(value), m.capacity, errors.ErrQuotaExceeded)
		}
	}

	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
