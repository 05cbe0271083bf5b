// Package theme resolves the effective theme for a visitor.
package theme

import (
	"context"
	"errors"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/shade/app/enum"
	"github.com/umputun/shade/app/store"
)

// Prefs defines the read side of preference storage.
// Defined here (consumer side) to allow different store implementations.
type Prefs interface {
	Get(ctx context.Context, visitor string) (enum.Theme, error)
}

// Resolution is a resolved theme with its provenance.
type Resolution struct {
	Theme  enum.Theme
	Source enum.Source
}

// Resolver computes the effective theme: stored override if present,
// platform signal otherwise, light as the implicit default. It never
// writes to storage, so repeated calls with no intervening preference
// change yield the same result.
type Resolver struct {
	prefs Prefs
}

// NewResolver creates a resolver over the given preference storage.
func NewResolver(prefs Prefs) *Resolver {
	return &Resolver{prefs: prefs}
}

// Preferred returns the effective theme for the visitor. A stored
// preference strictly dominates the platform signal; the signal dominates
// the implicit light default. Storage errors other than not-found are
// logged and degrade to the signal path.
func (r *Resolver) Preferred(ctx context.Context, visitor string, signal enum.Signal) Resolution {
	if r.prefs != nil && visitor != "" {
		theme, err := r.prefs.Get(ctx, visitor)
		switch {
		case err == nil:
			return Resolution{Theme: theme, Source: enum.SourceStored}
		case !errors.Is(err, store.ErrNotFound):
			log.Printf("[WARN] preference lookup failed for %s: %v", visitor, err)
		}
	}

	switch signal {
	case enum.SignalDark:
		return Resolution{Theme: enum.ThemeDark, Source: enum.SourceSignal}
	case enum.SignalLight:
		return Resolution{Theme: enum.ThemeLight, Source: enum.SourceSignal}
	}
	return Resolution{Theme: enum.ThemeLight, Source: enum.SourceDefault}
}
