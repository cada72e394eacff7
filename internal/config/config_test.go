// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func skinsDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, ":7420", cfg.Listen)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.BeatmapSkins)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoaderFileOverlay(t *testing.T) {
	dir := skinsDir(t)
	path := writeConfig(t, `
skins_dir: `+dir+`
data_dir: `+dir+`
listen: "127.0.0.1:9000"
cache_ttl: 30s
user_skin: minimal-dark
`)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "minimal-dark", cfg.UserSkin)
	// Unset keys keep defaults.
	assert.Equal(t, "memory", cfg.CacheBackend)
}

func TestLoaderEnvWinsOverFile(t *testing.T) {
	dir := skinsDir(t)
	path := writeConfig(t, `
skins_dir: `+dir+`
data_dir: `+dir+`
listen: "127.0.0.1:9000"
`)

	t.Setenv("SKIND_LISTEN", "127.0.0.1:9999")
	t.Setenv("SKIND_BEATMAP_SKINS", "false")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Listen)
	assert.False(t, cfg.BeatmapSkins)
}

func TestLoaderRejectsUnknownKeys(t *testing.T) {
	dir := skinsDir(t)
	path := writeConfig(t, `
skins_dir: `+dir+`
data_dir: `+dir+`
skinz_dir: /oops
`)

	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config file")
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoaderEmptyFile(t *testing.T) {
	dir := skinsDir(t)
	path := writeConfig(t, "")

	t.Setenv("SKIND_SKINS_DIR", dir)
	t.Setenv("SKIND_DATA_DIR", dir)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.SkinsDir)
}

func TestValidate(t *testing.T) {
	dir := skinsDir(t)

	valid := Defaults()
	valid.SkinsDir = dir
	valid.DataDir = dir

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing skins dir", func(c *Config) { c.SkinsDir = filepath.Join(dir, "nope") }, "skins_dir"},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"bad listen", func(c *Config) { c.Listen = "no-port" }, "listen"},
		{"bad cache backend", func(c *Config) { c.CacheBackend = "memcached" }, "cache_backend"},
		{"redis without addr", func(c *Config) { c.CacheBackend = "redis" }, "redis_addr"},
		{"zero cache ttl", func(c *Config) { c.CacheTTL = 0 }, "cache_ttl"},
		{"bad otlp protocol", func(c *Config) { c.OTLPProtocol = "udp" }, "otlp_protocol"},
		{"zero rate", func(c *Config) { c.APIRatePerMinute = 0 }, "api_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseEnvFallbacks(t *testing.T) {
	t.Setenv("SKIND_TEST_INT", "not-a-number")
	assert.Equal(t, 42, ParseInt("SKIND_TEST_INT", 42))

	t.Setenv("SKIND_TEST_BOOL", "maybe")
	assert.True(t, ParseBool("SKIND_TEST_BOOL", true))

	t.Setenv("SKIND_TEST_DUR", "fortnight")
	assert.Equal(t, time.Minute, ParseDuration("SKIND_TEST_DUR", time.Minute))

	t.Setenv("SKIND_TEST_STR", "")
	assert.Equal(t, "fallback", ParseString("SKIND_TEST_STR", "fallback"))
}

func TestHolderReloadKeepsOldConfigOnFailure(t *testing.T) {
	dir := skinsDir(t)
	path := writeConfig(t, `
skins_dir: `+dir+`
data_dir: `+dir+`
listen: "127.0.0.1:9000"
`)
	loader := NewLoader(path)

	initial, err := loader.Load()
	require.NoError(t, err)

	holder := NewHolder(initial, loader, path)

	// Break the file: listen address without a port fails validation.
	require.NoError(t, os.WriteFile(path, []byte(`
skins_dir: `+dir+`
data_dir: `+dir+`
listen: "broken"
`), 0o644))

	err = holder.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, "127.0.0.1:9000", holder.Get().Listen)

	// Fix it and reload again.
	require.NoError(t, os.WriteFile(path, []byte(`
skins_dir: `+dir+`
data_dir: `+dir+`
listen: "127.0.0.1:9001"
`), 0o644))

	require.NoError(t, holder.Reload(context.Background()))
	assert.Equal(t, "127.0.0.1:9001", holder.Get().Listen)
}

func TestHolderNotifiesSubscribers(t *testing.T) {
	dir := skinsDir(t)
	path := writeConfig(t, `
skins_dir: `+dir+`
data_dir: `+dir+`
`)
	loader := NewLoader(path)

	initial, err := loader.Load()
	require.NoError(t, err)

	holder := NewHolder(initial, loader, path)

	ch := make(chan Config, 1)
	holder.Subscribe(ch)

	require.NoError(t, holder.Reload(context.Background()))

	select {
	case got := <-ch:
		assert.Equal(t, dir, got.SkinsDir)
	case <-time.After(time.Second):
		t.Fatal("no reload notification received")
	}
}
