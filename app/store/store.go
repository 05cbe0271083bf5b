// Package store provides per-visitor theme preference storage.
package store

import (
	"context"
	"errors"

	"github.com/umputun/shade/app/enum"
)

// ErrNotFound is returned when no preference is stored for a visitor,
// including the case of a stored value that fails theme validation.
var ErrNotFound = errors.New("preference not found")

// Interface defines preference storage operations.
type Interface interface {
	Get(ctx context.Context, visitor string) (enum.Theme, error)
	Set(ctx context.Context, visitor string, theme enum.Theme) error
	Close() error
}

// RWLocker is a subset of sync.RWMutex, allows no-op implementation
// for databases with their own concurrency control.
type RWLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// noopLocker does nothing, used for postgres which handles concurrent
// writers natively.
type noopLocker struct{}

func (noopLocker) Lock()    {}
func (noopLocker) Unlock()  {}
func (noopLocker) RLock()   {}
func (noopLocker) RUnlock() {}
