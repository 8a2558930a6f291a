package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"redweb-backend/internal/apperr"
)

// Collection is a typed view over one named collection. Every mutation is a
// full load, change in memory, full save.
type Collection[T any] struct {
	name    string
	backend Backend
	logger  *zap.Logger
	lock    *sync.Mutex
}

// NewCollection binds name on s to element type T.
func NewCollection[T any](s *Store, name string) *Collection[T] {
	return &Collection[T]{
		name:    name,
		backend: s.backend,
		logger:  s.logger.With(zap.String("collection", name)),
		lock:    s.lockFor(name),
	}
}

func (c *Collection[T]) Name() string { return c.name }

// Load returns every record. A missing or unparseable document yields an
// empty slice; only backend I/O failures are returned as errors.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	records, _, err := c.load(ctx)
	return records, err
}

// load additionally reports whether the stored document was corrupt.
func (c *Collection[T]) load(ctx context.Context) ([]T, bool, error) {
	data, err := c.backend.Read(ctx, c.name)
	if err != nil {
		c.logger.Error("❌ failed to read collection", zap.Error(err))
		return nil, false, apperr.Storage("Server error", fmt.Errorf("read %s: %w", c.name, err))
	}
	if len(data) == 0 {
		return []T{}, false, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.Warn("⚠️  collection is not a valid JSON array, treating as empty", zap.Error(err))
		return []T{}, true, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, false, nil
}

// Save overwrites the collection with records.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return apperr.Storage("Server error", fmt.Errorf("encode %s: %w", c.name, err))
	}
	if err := c.backend.Write(ctx, c.name, data); err != nil {
		c.logger.Error("❌ failed to write collection", zap.Error(err))
		return apperr.Storage("Server error", fmt.Errorf("write %s: %w", c.name, err))
	}
	return nil
}

// Update runs a load, fn, save cycle while holding the collection's lock, so
// concurrent updates in this process apply one after the other. If fn
// returns an error nothing is written. A corrupt document is never
// overwritten: Update fails instead of replacing it with fn's result.
func (c *Collection[T]) Update(ctx context.Context, fn func(records []T) ([]T, error)) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	records, corrupt, err := c.load(ctx)
	if err != nil {
		return err
	}
	if corrupt {
		return apperr.Storage("Server error", fmt.Errorf("refusing to overwrite unparseable collection %s", c.name))
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return c.Save(ctx, updated)
}
