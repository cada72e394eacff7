// SPDX-License-Identifier: MIT

package ruleset

import (
	"errors"
	"sync"

	"github.com/beatkit/skind/internal/skin"
	"github.com/beatkit/skind/internal/store"
)

// ResourceSkin is a skin-like view over a ruleset's bundled resource
// store. The chain that creates it owns its disposal; Close is
// idempotent and closes the underlying store exactly once.
type ResourceSkin struct {
	rulesetID string
	store     store.Store

	closeOnce sync.Once
	closeErr  error
}

// NewResourceSkin wraps the given store for the given ruleset.
func NewResourceSkin(rulesetID string, st store.Store) *ResourceSkin {
	return &ResourceSkin{rulesetID: rulesetID, store: st}
}

// Info implements skin.Source.
func (r *ResourceSkin) Info() skin.Info {
	return skin.Info{
		Slug: r.rulesetID + "-resources",
		Name: r.rulesetID + " bundled resources",
	}
}

// Texture implements skin.Source. Textures live under "textures/" in the
// bundle, stored as PNG.
func (r *ResourceSkin) Texture(name string) ([]byte, error) {
	return r.open("textures/" + name + ".png")
}

// Sample implements skin.Source. Samples live under "samples/"; WAV is
// preferred over OGG when both exist.
func (r *ResourceSkin) Sample(name string) ([]byte, error) {
	for _, ext := range []string{".wav", ".ogg"} {
		data, err := r.open("samples/" + name + ext)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, skin.ErrNotFound) {
			return nil, err
		}
	}
	return nil, skin.ErrNotFound
}

// ConfigValue implements skin.Source. Resource bundles carry assets
// only; configuration always falls through.
func (r *ResourceSkin) ConfigValue(string) (string, bool) { return "", false }

// Close implements skin.Source.
func (r *ResourceSkin) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.store.Close()
	})
	return r.closeErr
}

func (r *ResourceSkin) open(name string) ([]byte, error) {
	data, err := r.store.Open(name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, skin.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
