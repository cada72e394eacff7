// SPDX-License-Identifier: MIT

package skin

import "errors"

// Chain is an ordered list of skin sources. Index 0 is the highest
// priority; later entries are fallbacks queried only when every earlier
// source reports ErrNotFound. A Chain does not own its sources.
type Chain struct {
	sources []Source
}

// NewChain builds a chain over the given sources. The slice is copied;
// nil entries are skipped.
func NewChain(sources ...Source) *Chain {
	c := &Chain{sources: make([]Source, 0, len(sources))}
	for _, s := range sources {
		if s != nil {
			c.sources = append(c.sources, s)
		}
	}
	return c
}

// Sources returns the chain's sources in priority order.
func (c *Chain) Sources() []Source {
	out := make([]Source, len(c.sources))
	copy(out, c.sources)
	return out
}

// Len returns the number of sources in the chain.
func (c *Chain) Len() int { return len(c.sources) }

// Texture resolves a texture by walking the chain in order. The returned
// tier is the index of the source that served the asset.
func (c *Chain) Texture(name string) ([]byte, int, error) {
	return c.lookup(KindTexture, name)
}

// Sample resolves an audio sample by walking the chain in order.
func (c *Chain) Sample(name string) ([]byte, int, error) {
	return c.lookup(KindSample, name)
}

// ConfigValue resolves a configuration value by walking the chain in order.
func (c *Chain) ConfigValue(key string) (string, int, bool) {
	for i, src := range c.sources {
		if v, ok := src.ConfigValue(key); ok {
			return v, i, true
		}
	}
	return "", -1, false
}

func (c *Chain) lookup(kind Kind, name string) ([]byte, int, error) {
	for i, src := range c.sources {
		data, err := Lookup(src, kind, name)
		if err == nil {
			return data, i, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, i, err
		}
	}
	return nil, -1, ErrNotFound
}
