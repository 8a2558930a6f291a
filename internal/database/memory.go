package database

import (
	"context"
	"sync"
)

// MemoryBackend keeps collections in process memory. Used by tests and the
// "memory" storage driver.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

func (b *MemoryBackend) Read(_ context.Context, name string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.docs[name]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *MemoryBackend) Write(_ context.Context, name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	b.docs[name] = buf
	return nil
}

func (b *MemoryBackend) Close() error { return nil }
