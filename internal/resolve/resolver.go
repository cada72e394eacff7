// SPDX-License-Identifier: MIT

package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/beatkit/skind/internal/metrics"
	"github.com/beatkit/skind/internal/skin"
	"github.com/beatkit/skind/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownRuleset is returned when no chain is registered for the
// requested ruleset ID.
var ErrUnknownRuleset = errors.New("resolve: unknown ruleset")

// Chain is the per-ruleset lookup surface the resolver walks.
type Chain interface {
	Texture(name string) ([]byte, int, error)
	Sample(name string) ([]byte, int, error)
	ConfigValue(key string) (string, int, bool)
}

// Options configures a Resolver.
type Options struct {
	Cache   Cache
	Backend string // cache backend label for metrics ("memory", "redis")
	TTL     time.Duration

	// Compiled is an optional persistent layer behind the cache.
	Compiled *store.CompiledStore

	// Profile returns the identity of the current skin selection; it
	// scopes cache keys so a skin change cannot serve stale assets.
	Profile func() string

	Logger zerolog.Logger
}

// Resolver answers asset lookups for registered ruleset chains. Lookups
// for the same key are deduplicated, so a burst of identical requests
// walks the chain once.
type Resolver struct {
	mu     sync.RWMutex
	chains map[string]Chain

	cache    Cache
	backend  string
	ttl      time.Duration
	compiled *store.CompiledStore
	profile  func() string

	group  singleflight.Group
	logger zerolog.Logger
}

// New creates a Resolver. A nil Options.Cache disables caching.
func New(opts Options) *Resolver {
	cache := opts.Cache
	if cache == nil {
		cache = NewNoOpCache()
	}
	profile := opts.Profile
	if profile == nil {
		profile = func() string { return "default" }
	}
	return &Resolver{
		chains:   make(map[string]Chain),
		cache:    cache,
		backend:  opts.Backend,
		ttl:      opts.TTL,
		compiled: opts.Compiled,
		profile:  profile,
		logger:   opts.Logger,
	}
}

// Register adds a chain for a ruleset. Later registrations replace
// earlier ones.
func (r *Resolver) Register(rulesetID string, chain Chain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[rulesetID] = chain
}

// Rulesets returns the registered ruleset IDs, sorted.
func (r *Resolver) Rulesets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.chains))
	for id := range r.chains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve looks up one asset: cache first, then the compiled store,
// then a full chain walk. Misses everywhere return skin.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, rulesetID string, kind skin.Kind, name string) (Result, error) {
	if !kind.Valid() {
		return Result{}, fmt.Errorf("resolve: invalid asset kind %q", kind)
	}

	r.mu.RLock()
	chain, ok := r.chains[rulesetID]
	r.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownRuleset, rulesetID)
	}

	profile := r.profile()
	key := cacheKey(profile, rulesetID, kind, name)

	if res, ok := r.cache.Get(ctx, key); ok {
		metrics.CacheLookup(r.backend, "hit")
		metrics.ResolveServed(rulesetID, strconv.Itoa(res.Tier), "cache")
		res.Origin = "cache"
		return res, nil
	}
	metrics.CacheLookup(r.backend, "miss")

	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.resolveSlow(ctx, profile, rulesetID, chain, kind, name, key)
	})
	if err != nil {
		if errors.Is(err, skin.ErrNotFound) {
			metrics.ResolveServed(rulesetID, "none", "miss")
		}
		return Result{}, err
	}

	res := v.(Result)
	metrics.ResolveServed(rulesetID, strconv.Itoa(res.Tier), res.Origin)
	return res, nil
}

func (r *Resolver) resolveSlow(ctx context.Context, profile, rulesetID string, chain Chain, kind skin.Kind, name, key string) (Result, error) {
	if r.compiled != nil {
		asset, err := r.compiled.Get(profile, rulesetID, string(kind), name)
		if err == nil {
			res := Result{Data: asset.Data, Tier: asset.Tier, Origin: "compiled"}
			r.cache.Set(ctx, key, res, r.ttl)
			return res, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			r.logger.Warn().Err(err).Str("key", key).Msg("compiled store read failed")
		}
	}

	res, err := walk(chain, kind, name)
	if err != nil {
		if errors.Is(err, skin.ErrNotFound) {
			return Result{}, fmt.Errorf("resolve %s/%s/%s: %w", rulesetID, kind, name, skin.ErrNotFound)
		}
		return Result{}, fmt.Errorf("resolve %s/%s/%s: %w", rulesetID, kind, name, err)
	}

	r.cache.Set(ctx, key, res, r.ttl)
	if r.compiled != nil {
		if err := r.compiled.Put(profile, rulesetID, string(kind), name, store.CompiledAsset{Data: res.Data, Tier: res.Tier}); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("compiled store write failed")
		}
	}
	return res, nil
}

func walk(chain Chain, kind skin.Kind, name string) (Result, error) {
	switch kind {
	case skin.KindTexture:
		data, tier, err := chain.Texture(name)
		if err != nil {
			return Result{}, err
		}
		return Result{Data: data, Tier: tier, Origin: "chain"}, nil
	case skin.KindSample:
		data, tier, err := chain.Sample(name)
		if err != nil {
			return Result{}, err
		}
		return Result{Data: data, Tier: tier, Origin: "chain"}, nil
	case skin.KindConfig:
		v, tier, ok := chain.ConfigValue(name)
		if !ok {
			return Result{}, skin.ErrNotFound
		}
		return Result{Data: []byte(v), Tier: tier, Origin: "chain"}, nil
	default:
		return Result{}, skin.ErrNotFound
	}
}

// Invalidate drops all cached resolutions, including the current
// profile's compiled entries. Called after a chain rebuild so stale
// pre-rebuild assets cannot be served from any layer.
func (r *Resolver) Invalidate(ctx context.Context) {
	r.cache.Clear(ctx)
	if r.compiled != nil {
		profile := r.profile()
		if err := r.compiled.DropSkin(profile); err != nil {
			r.logger.Warn().Err(err).
				Str("profile", profile).
				Msg("compiled store invalidation failed")
		}
	}
	r.logger.Debug().Str("event", "resolve.cache_invalidated").Msg("resolution cache cleared")
}

// CacheStats exposes the underlying cache counters.
func (r *Resolver) CacheStats() CacheStats {
	return r.cache.Stats()
}

func cacheKey(profile, rulesetID string, kind skin.Kind, name string) string {
	return fmt.Sprintf("resolve:%s:%s:%s:%s", profile, rulesetID, kind, name)
}
