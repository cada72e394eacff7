// SPDX-License-Identifier: MIT

// Package ruleset defines game-mode plugins and the per-ruleset skin
// chain that composes the upstream skin sources for one mode.
package ruleset

import (
	"fmt"
	"sort"
	"sync"

	"github.com/beatkit/skind/internal/skin"
	"github.com/beatkit/skind/internal/store"
)

// Ruleset is a game-mode plugin. Implementations declare how legacy
// skins are reinterpreted for the mode and expose the mode's bundled
// default resources.
type Ruleset interface {
	// ID is the stable machine identifier ("classic", "drum", ...).
	ID() string
	// Name is the human-readable mode name.
	Name() string
	// TransformLegacy wraps a legacy skin source with mode-specific
	// reinterpretation. Rulesets that declare no transform return nil;
	// the caller then keeps the original source unchanged.
	TransformLegacy(src skin.Source) skin.Source
	// Resources opens the ruleset's bundled resource store, or
	// (nil, nil) when the ruleset bundles none. Each call returns a
	// fresh handle owned by the caller.
	Resources() (store.Store, error)
}

// Registry holds the installed rulesets. Registration order is the
// listing order.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]Ruleset
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Ruleset)}
}

// Register adds a ruleset. Duplicate IDs are an error: two plugins
// claiming the same mode is a packaging mistake, not a fallback case.
func (r *Registry) Register(rs Ruleset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := rs.ID()
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("ruleset %q already registered", id)
	}
	r.byID[id] = rs
	r.order = append(r.order, id)
	return nil
}

// Get returns the ruleset with the given ID.
func (r *Registry) Get(id string) (Ruleset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.byID[id]
	return rs, ok
}

// List returns all rulesets in registration order.
func (r *Registry) List() []Ruleset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Ruleset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// IDs returns the registered ruleset IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]string(nil), r.order...)
	sort.Strings(out)
	return out
}
