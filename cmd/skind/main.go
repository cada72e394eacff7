// SPDX-License-Identifier: MIT

// Command skind composes skin asset chains for rhythm-game clients and
// serves resolved assets over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/beatkit/skind/internal/api"
	"github.com/beatkit/skind/internal/config"
	xglog "github.com/beatkit/skind/internal/log"
	"github.com/beatkit/skind/internal/manifest"
	"github.com/beatkit/skind/internal/registry"
	"github.com/beatkit/skind/internal/resolve"
	"github.com/beatkit/skind/internal/ruleset"
	"github.com/beatkit/skind/internal/skin"
	"github.com/beatkit/skind/internal/skin/legacy"
	"github.com/beatkit/skind/internal/snapshot"
	"github.com/beatkit/skind/internal/store"
	"github.com/beatkit/skind/internal/telemetry"
	"github.com/beatkit/skind/internal/version"
	"github.com/beatkit/skind/internal/watch"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	xglog.Configure(xglog.Config{
		Service: "skind",
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		logger.Fatal().Err(err).Msg("daemon failed")
	}
}

// app holds the wired daemon state.
type app struct {
	cfg      config.Config
	holder   *config.Holder
	registry *registry.Store
	manager  *skin.Manager
	rulesets *ruleset.Registry
	chains   []*ruleset.Chain
	resolver *resolve.Resolver
	snapshot *snapshot.Writer

	mu       sync.Mutex
	userSkin skin.Source // currently selected user skin, owned by app
	profile  string
	ready    bool
}

func run(ctx context.Context, configPath string) error {
	logger := xglog.WithComponent("daemon")

	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	reg, err := registry.NewStore(filepath.Join(cfg.DataDir, "registry.db"))
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer func() { _ = reg.Close() }()

	a := &app{
		cfg:      cfg,
		holder:   config.NewHolder(cfg, loader, configPath),
		registry: reg,
		snapshot: snapshot.NewWriter(filepath.Join(cfg.DataDir, "chain.json")),
		profile:  "default",
	}

	if _, err := registry.Scan(ctx, reg, cfg.SkinsDir); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}

	defaultSrc, err := openDefaultSkin(cfg)
	if err != nil {
		return fmt.Errorf("open default skin: %w", err)
	}
	a.manager = skin.NewManager(defaultSrc)
	a.manager.SetBeatmapSkinEnabled(cfg.BeatmapSkins)

	if err := a.selectUserSkin(ctx, cfg.UserSkin); err != nil {
		logger.Warn().Err(err).
			Str(xglog.FieldSkin, cfg.UserSkin).
			Msg("configured user skin unavailable, continuing with default")
	}

	a.rulesets, err = ruleset.Builtins(cfg.ResourcesDir)
	if err != nil {
		return fmt.Errorf("register rulesets: %w", err)
	}

	for _, rs := range a.rulesets.List() {
		chain := ruleset.NewChain(rs, a.manager)
		a.chains = append(a.chains, chain)
		defer func() { _ = chain.Close() }()
	}

	cache, compiled, err := a.buildCacheLayers(cfg)
	if err != nil {
		return err
	}
	defer closeCache(cache)
	if compiled != nil {
		defer func() { _ = compiled.Close() }()
	}

	a.resolver = resolve.New(resolve.Options{
		Cache:    cache,
		Backend:  cfg.CacheBackend,
		TTL:      cfg.CacheTTL,
		Compiled: compiled,
		Profile:  a.currentProfile,
		Logger:   xglog.WithComponent("resolve"),
	})
	for _, chain := range a.chains {
		a.resolver.Register(chain.Ruleset().ID(), chain)
	}

	// Chains subscribed first, so by the time this runs they are
	// already rebuilt and the snapshot reflects the new composition.
	unsubscribe := a.manager.Subscribe(func() {
		a.resolver.Invalidate(ctx)
		a.writeSnapshot()
	})
	defer unsubscribe()
	a.writeSnapshot()

	tracing, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.OTLPEndpoint != "",
		ServiceName:    "skind",
		ServiceVersion: version.Version,
		ExporterType:   cfg.OTLPProtocol,
		Endpoint:       cfg.OTLPEndpoint,
		SamplingRate:   1.0,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = tracing.Shutdown(context.Background()) }()

	watcher, err := watch.New(cfg.SkinsDir, 500*time.Millisecond, func(ctx context.Context) {
		if err := a.rescan(ctx); err != nil {
			logger.Warn().Err(err).Msg("rescan after skins change failed")
		}
	})
	if err != nil {
		return fmt.Errorf("start skins watcher: %w", err)
	}
	watcher.Start(ctx)

	if err := a.holder.StartWatcher(ctx); err != nil {
		return fmt.Errorf("start config watcher: %w", err)
	}

	configUpdates := make(chan config.Config, 1)
	a.holder.Subscribe(configUpdates)

	server := api.NewServer(api.Deps{
		Registry:      reg,
		Rulesets:      a.rulesets,
		Resolver:      a.resolver,
		Reload:        a.reload,
		Ready:         a.isReady,
		Version:       version.Version,
		RatePerMinute: cfg.APIRatePerMinute,
	})

	a.setReady(true)
	logger.Info().
		Str("event", "daemon.started").
		Str("listen", cfg.Listen).
		Int("rulesets", len(a.chains)).
		Msg("skind started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gctx, cfg.Listen)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case newCfg := <-configUpdates:
				a.applyConfig(gctx, newCfg)
			}
		}
	})

	err = g.Wait()
	<-watcher.Done()

	a.closeUserSkin()
	logger.Info().Str("event", "daemon.stopped").Msg("skind stopped")
	return err
}

// openDefaultSkin loads the bundled default skin. With no directory
// configured the chain bottoms out on an empty in-memory source, which
// keeps lookups well-defined.
func openDefaultSkin(cfg config.Config) (skin.Source, error) {
	if cfg.DefaultSkin == "" {
		return skin.NewMemorySource(skin.Info{Slug: "default", Name: "Default"}), nil
	}
	return openSkinDir(cfg.DefaultSkin, "default")
}

// openSkinDir opens a skin directory in whichever format it carries.
func openSkinDir(dir, slug string) (skin.Source, error) {
	if _, err := os.Stat(filepath.Join(dir, "skin.yaml")); err == nil {
		return manifest.Load(dir, slug)
	}
	return legacy.Load(dir, slug)
}

func (a *app) buildCacheLayers(cfg config.Config) (resolve.Cache, *store.CompiledStore, error) {
	var cache resolve.Cache
	switch cfg.CacheBackend {
	case "redis":
		rc, err := resolve.NewRedisCache(resolve.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, xglog.WithComponent("cache"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		cache = rc
	default:
		cache = resolve.NewMemoryCache(time.Minute)
	}

	if !cfg.CompiledStore {
		return cache, nil, nil
	}
	compiled, err := store.OpenCompiledStore(filepath.Join(cfg.DataDir, "compiled"), cfg.CompiledStoreTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("open compiled store: %w", err)
	}
	return cache, compiled, nil
}

// closeCache releases whatever the cache backend holds: the memory
// backend's janitor goroutine or the Redis connection pool.
func closeCache(cache resolve.Cache) {
	switch c := cache.(type) {
	case interface{ Stop() }:
		c.Stop()
	case interface{ Close() error }:
		_ = c.Close()
	}
}

// selectUserSkin looks up a slug in the registry, opens it, and swaps
// it into the manager. An empty slug deselects the user skin.
func (a *app) selectUserSkin(ctx context.Context, slug string) error {
	if slug == "" {
		a.swapUserSkin(nil, "default")
		return nil
	}

	sk, err := a.registry.Get(ctx, slug)
	if err != nil {
		return fmt.Errorf("select user skin %q: %w", slug, err)
	}
	src, err := registry.OpenSource(sk)
	if err != nil {
		return fmt.Errorf("open user skin %q: %w", slug, err)
	}

	a.swapUserSkin(src, slug)
	return nil
}

func (a *app) swapUserSkin(src skin.Source, profile string) {
	a.mu.Lock()
	old := a.userSkin
	a.userSkin = src
	a.profile = profile
	a.mu.Unlock()

	a.manager.SetUserSkin(src)
	if old != nil {
		_ = old.Close()
	}
}

func (a *app) closeUserSkin() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.userSkin != nil {
		_ = a.userSkin.Close()
		a.userSkin = nil
	}
}

func (a *app) currentProfile() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile
}

func (a *app) isReady() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

func (a *app) setReady(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ready = v
}

// rescan refreshes the registry from disk and fans the change out to
// every chain.
func (a *app) rescan(ctx context.Context) error {
	if _, err := registry.Scan(ctx, a.registry, a.holder.Get().SkinsDir); err != nil {
		return fmt.Errorf("rescan skins: %w", err)
	}

	// Reopen the selected user skin in case its files changed.
	if err := a.selectUserSkin(ctx, a.holder.Get().UserSkin); err != nil {
		logger := xglog.WithComponent("daemon")
		logger.Warn().Err(err).Msg("user skin unavailable after rescan")
	}

	a.manager.Refresh()
	return nil
}

// reload backs the POST /api/reload endpoint.
func (a *app) reload(ctx context.Context) error {
	if err := a.holder.Reload(ctx); err != nil {
		return err
	}
	return a.rescan(ctx)
}

// applyConfig reacts to a hot-reloaded configuration. Listen address
// and store backends stay fixed until restart; selection and toggles
// apply immediately.
func (a *app) applyConfig(ctx context.Context, cfg config.Config) {
	logger := xglog.WithComponent("daemon")

	if err := a.selectUserSkin(ctx, cfg.UserSkin); err != nil {
		logger.Warn().Err(err).
			Str(xglog.FieldSkin, cfg.UserSkin).
			Msg("reloaded user skin unavailable")
	}
	a.manager.SetBeatmapSkinEnabled(cfg.BeatmapSkins)

	logger.Info().
		Str("event", "daemon.config_applied").
		Str(xglog.FieldSkin, cfg.UserSkin).
		Bool("beatmap_skins", cfg.BeatmapSkins).
		Msg("configuration changes applied")
}

func (a *app) writeSnapshot() {
	snaps := make([]snapshot.ChainSnapshot, 0, len(a.chains))
	for _, chain := range a.chains {
		snaps = append(snaps, snapshot.Capture(chain.Ruleset().ID(), chain.Snapshot()))
	}
	if err := a.snapshot.Write(snaps); err != nil {
		logger := xglog.WithComponent("daemon")
		logger.Warn().Err(err).Msg("snapshot write failed")
	}
}
