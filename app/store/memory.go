package store

import (
	"context"
	"sync"

	"github.com/umputun/shade/app/enum"
)

// Memory implements preference storage in process memory. Used as the
// fallback when durable storage is unavailable; preferences survive for
// the lifetime of the process only.
type Memory struct {
	mu    sync.RWMutex
	prefs map[string]enum.Theme
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{prefs: map[string]enum.Theme{}}
}

// Get retrieves the stored theme for the given visitor.
// Returns ErrNotFound when nothing is stored.
func (m *Memory) Get(_ context.Context, visitor string) (enum.Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	theme, ok := m.prefs[visitor]
	if !ok {
		return enum.ThemeLight, ErrNotFound
	}
	return theme, nil
}

// Set stores the theme for the given visitor, overwriting any prior value.
func (m *Memory) Set(_ context.Context, visitor string, theme enum.Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prefs[visitor] = theme
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
