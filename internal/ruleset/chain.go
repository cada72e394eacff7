// SPDX-License-Identifier: MIT

package ruleset

import (
	"sync"
	"time"

	xglog "github.com/beatkit/skind/internal/log"
	"github.com/beatkit/skind/internal/metrics"
	"github.com/beatkit/skind/internal/skin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Chain composes the upstream skin sources for one ruleset. On
// construction and on every manager notification it rebuilds its ordered
// source list wholesale:
//
//  1. copy the upstream list in order,
//  2. substitute legacy skins with the ruleset transform (keeping the
//     original instance when the ruleset declares none),
//  3. insert the ruleset's bundled resource view at the default skin's
//     position, or append it when the default skin is absent.
//
// The chain owns disposal of resource views it creates and nothing else.
type Chain struct {
	rs      Ruleset
	manager *skin.Manager
	logger  zerolog.Logger

	mu      sync.RWMutex
	current *skin.Chain
	// owned holds the resource views created by the latest rebuild; they
	// are disposed before the next rebuild replaces them.
	owned []skin.Source

	unsubscribe func()
	closeOnce   sync.Once
}

// NewChain builds a chain for rs over the manager's sources and
// subscribes to source-set changes. Callers must Close the chain to
// release its subscription and any resource views it created.
func NewChain(rs Ruleset, manager *skin.Manager) *Chain {
	c := &Chain{
		rs:      rs,
		manager: manager,
		logger:  xglog.WithComponent("ruleset.chain").With().Str(xglog.FieldRuleset, rs.ID()).Logger(),
	}
	c.rebuild()
	c.unsubscribe = manager.Subscribe(c.rebuild)
	return c
}

// Ruleset returns the ruleset this chain composes for.
func (c *Chain) Ruleset() Ruleset { return c.rs }

// Snapshot returns the current composed chain. The returned chain is
// immutable; it remains valid (but stale) across rebuilds.
func (c *Chain) Snapshot() *skin.Chain {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Texture resolves a texture through the current chain.
func (c *Chain) Texture(name string) ([]byte, int, error) {
	return c.Snapshot().Texture(name)
}

// Sample resolves a sample through the current chain.
func (c *Chain) Sample(name string) ([]byte, int, error) {
	return c.Snapshot().Sample(name)
}

// ConfigValue resolves a configuration value through the current chain.
func (c *Chain) ConfigValue(key string) (string, int, bool) {
	return c.Snapshot().ConfigValue(key)
}

// Close unsubscribes from the manager and disposes owned resource views.
func (c *Chain) Close() error {
	c.closeOnce.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		c.mu.Lock()
		c.disposeOwnedLocked()
		c.current = skin.NewChain()
		c.mu.Unlock()
	})
	return nil
}

func (c *Chain) rebuild() {
	start := time.Now()
	rebuildID := uuid.NewString()
	logger := c.logger.With().Str(xglog.FieldRebuildID, rebuildID).Logger()

	upstream := c.manager.Sources()
	defaultSkin := c.manager.Default()

	next := make([]skin.Source, 0, len(upstream)+1)
	defaultIdx := -1
	for _, src := range upstream {
		if src == defaultSkin {
			defaultIdx = len(next)
		}
		next = append(next, c.transform(src))
	}

	var owned []skin.Source
	if view := c.resourceView(logger); view != nil {
		owned = append(owned, view)
		if defaultIdx >= 0 {
			next = append(next[:defaultIdx], append([]skin.Source{view}, next[defaultIdx:]...)...)
		} else {
			next = append(next, view)
		}
	}

	c.mu.Lock()
	c.disposeOwnedLocked()
	c.owned = owned
	c.current = skin.NewChain(next...)
	c.mu.Unlock()

	metrics.ChainRebuilt(c.rs.ID(), len(next), time.Since(start))
	logger.Debug().
		Str("event", "chain.rebuilt").
		Int("sources", len(next)).
		Msg("skin source chain rebuilt")
}

// transform substitutes legacy skins with the ruleset's reinterpretation,
// keeping the original instance when no transform is declared.
func (c *Chain) transform(src skin.Source) skin.Source {
	if !src.Info().Legacy {
		return src
	}
	if wrapped := c.rs.TransformLegacy(src); wrapped != nil {
		return wrapped
	}
	return src
}

// resourceView opens a fresh resource view over the ruleset's bundled
// store. Rulesets without bundled resources, and stores that fail to
// open, fall back to no insertion.
func (c *Chain) resourceView(logger zerolog.Logger) *ResourceSkin {
	st, err := c.rs.Resources()
	if err != nil {
		logger.Warn().Err(err).
			Str("event", "chain.resources_unavailable").
			Msg("ruleset resources unavailable, skipping resource view")
		return nil
	}
	if st == nil {
		return nil
	}
	return NewResourceSkin(c.rs.ID(), st)
}

// disposeOwnedLocked closes resource views created by the previous
// rebuild. Callers hold c.mu.
func (c *Chain) disposeOwnedLocked() {
	for _, src := range c.owned {
		if err := src.Close(); err != nil {
			c.logger.Warn().Err(err).
				Str("event", "chain.dispose_failed").
				Str(xglog.FieldSkin, src.Info().Slug).
				Msg("failed to dispose resource view")
		}
	}
	c.owned = nil
}
