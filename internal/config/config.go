// SPDX-License-Identifier: MIT

// Package config loads daemon configuration with precedence
// ENV > file > defaults and supports hot reloading.
package config

import "time"

// Config is the effective daemon configuration.
type Config struct {
	// Directories
	SkinsDir     string `yaml:"skins_dir"`
	DataDir      string `yaml:"data_dir"`
	DefaultSkin  string `yaml:"default_skin"`  // directory of the bundled default skin
	ResourcesDir string `yaml:"resources_dir"` // ruleset resource bundles

	// Selection
	UserSkin     string `yaml:"user_skin"` // slug; empty selects none
	BeatmapSkins bool   `yaml:"beatmap_skins"`

	// HTTP
	Listen string `yaml:"listen"`

	// Resolution cache
	CacheBackend  string        `yaml:"cache_backend"` // "memory" or "redis"
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`

	// Compiled-asset store
	CompiledStore    bool          `yaml:"compiled_store"`
	CompiledStoreTTL time.Duration `yaml:"compiled_store_ttl"`

	// Rate limiting
	APIRatePerMinute int `yaml:"api_rate_per_minute"`

	// Telemetry
	OTLPEndpoint string `yaml:"otlp_endpoint"` // empty disables tracing
	OTLPProtocol string `yaml:"otlp_protocol"` // "grpc" or "http"

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		SkinsDir:         "./skins",
		DataDir:          "./data",
		BeatmapSkins:     true,
		Listen:           ":7420",
		CacheBackend:     "memory",
		CacheTTL:         5 * time.Minute,
		CompiledStore:    false,
		CompiledStoreTTL: 24 * time.Hour,
		APIRatePerMinute: 600,
		OTLPProtocol:     "grpc",
		LogLevel:         "info",
	}
}
