package testutil

import (
	"context"
	"sync"

	"redweb-backend/internal/database"
)

// HookBackend wraps a Backend so tests can fail writes to a collection or
// run code right after a collection is read.
type HookBackend struct {
	database.Backend

	mu         sync.Mutex
	failWrites map[string]error
	afterRead  map[string]func()
}

func NewHookBackend(inner database.Backend) *HookBackend {
	return &HookBackend{
		Backend:    inner,
		failWrites: make(map[string]error),
		afterRead:  make(map[string]func()),
	}
}

// FailWrites makes every Write to name return err. A nil err clears it.
func (b *HookBackend) FailWrites(name string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failWrites, name)
		return
	}
	b.failWrites[name] = err
}

// AfterNextRead runs fn once, after the next successful Read of name.
func (b *HookBackend) AfterNextRead(name string, fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.afterRead[name] = fn
}

func (b *HookBackend) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := b.Backend.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	fn := b.afterRead[name]
	delete(b.afterRead, name)
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
	return data, nil
}

func (b *HookBackend) Write(ctx context.Context, name string, data []byte) error {
	b.mu.Lock()
	err := b.failWrites[name]
	b.mu.Unlock()
	if err != nil {
		return err
	}
	return b.Backend.Write(ctx, name, data)
}
