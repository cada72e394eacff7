// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration with precedence: ENV > file > defaults.
type Loader struct {
	configPath string
}

// NewLoader creates a loader. An empty configPath skips the file layer.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load builds the effective configuration and validates it.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := mergeFile(&cfg, l.configPath); err != nil {
			return Config{}, err
		}
	}
	mergeEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile overlays values from a YAML config file. Unknown keys are
// rejected so typos fail loudly instead of silently using defaults.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %q not found", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if node.Kind == 0 {
		// Empty file: nothing to overlay.
		return nil
	}
	if err := node.Decode(cfg); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

// mergeEnv overlays SKIND_* environment variables.
func mergeEnv(cfg *Config) {
	cfg.SkinsDir = ParseString("SKIND_SKINS_DIR", cfg.SkinsDir)
	cfg.DataDir = ParseString("SKIND_DATA_DIR", cfg.DataDir)
	cfg.DefaultSkin = ParseString("SKIND_DEFAULT_SKIN", cfg.DefaultSkin)
	cfg.ResourcesDir = ParseString("SKIND_RESOURCES_DIR", cfg.ResourcesDir)
	cfg.UserSkin = ParseString("SKIND_USER_SKIN", cfg.UserSkin)
	cfg.BeatmapSkins = ParseBool("SKIND_BEATMAP_SKINS", cfg.BeatmapSkins)
	cfg.Listen = ParseString("SKIND_LISTEN", cfg.Listen)
	cfg.CacheBackend = ParseString("SKIND_CACHE_BACKEND", cfg.CacheBackend)
	cfg.CacheTTL = ParseDuration("SKIND_CACHE_TTL", cfg.CacheTTL)
	cfg.RedisAddr = ParseString("SKIND_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = ParseString("SKIND_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = ParseInt("SKIND_REDIS_DB", cfg.RedisDB)
	cfg.CompiledStore = ParseBool("SKIND_COMPILED_STORE", cfg.CompiledStore)
	cfg.CompiledStoreTTL = ParseDuration("SKIND_COMPILED_STORE_TTL", cfg.CompiledStoreTTL)
	cfg.APIRatePerMinute = ParseInt("SKIND_API_RATE_PER_MINUTE", cfg.APIRatePerMinute)
	cfg.OTLPEndpoint = ParseString("SKIND_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.OTLPProtocol = ParseString("SKIND_OTLP_PROTOCOL", cfg.OTLPProtocol)
	cfg.LogLevel = ParseString("SKIND_LOG_LEVEL", cfg.LogLevel)
}
