package store

import (
	"context"
	"fmt"

	"github.com/go-pkgz/lcw/v2"

	"github.com/umputun/shade/app/enum"
)

// Cached wraps a store Interface with a loading cache and satisfies the
// Interface itself. Cache is populated on reads via loader function,
// invalidated on writes.
type Cached struct {
	store Interface
	cache lcw.LoadingCache[enum.Theme]
}

// NewCached creates a new cached store wrapper.
// maxKeys sets the maximum number of entries in the cache.
func NewCached(store Interface, maxKeys int) (*Cached, error) {
	cache, err := lcw.NewLruCache(lcw.NewOpts[enum.Theme]().MaxKeys(maxKeys))
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Cached{store: store, cache: cache}, nil
}

// Get retrieves the theme for a visitor, using cache with load-through.
// ErrNotFound from the underlying store is passed through unwrapped so
// callers can keep checking it with errors.Is.
func (c *Cached) Get(ctx context.Context, visitor string) (enum.Theme, error) {
	theme, err := c.cache.Get(visitor, func() (enum.Theme, error) {
		th, loadErr := c.store.Get(ctx, visitor)
		if loadErr != nil {
			return enum.ThemeLight, fmt.Errorf("load from store: %w", loadErr)
		}
		return th, nil
	})
	if err != nil {
		return enum.ThemeLight, fmt.Errorf("cache get: %w", err)
	}
	return theme, nil
}

// Set stores the theme and invalidates the cache entry.
func (c *Cached) Set(ctx context.Context, visitor string, theme enum.Theme) error {
	if err := c.store.Set(ctx, visitor, theme); err != nil {
		return fmt.Errorf("store set: %w", err)
	}
	c.cache.Invalidate(func(k string) bool { return k == visitor })
	return nil
}

// Close closes the cache and underlying store.
func (c *Cached) Close() error {
	_ = c.cache.Close()
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("store close: %w", err)
	}
	return nil
}

// Stats returns cache statistics.
func (c *Cached) Stats() lcw.CacheStat {
	return c.cache.Stat()
}
