// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"net"
	"os"
)

// Validate checks the configuration for values the daemon cannot start
// with. Either the whole config is valid, or the caller keeps whatever
// it had before.
func Validate(cfg Config) error {
	if cfg.SkinsDir == "" {
		return fmt.Errorf("config: skins_dir is required")
	}
	if st, err := os.Stat(cfg.SkinsDir); err != nil || !st.IsDir() {
		return fmt.Errorf("config: skins_dir %q is not a directory", cfg.SkinsDir)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}

	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		return fmt.Errorf("config: invalid listen address %q: %w", cfg.Listen, err)
	}

	switch cfg.CacheBackend {
	case "memory":
	case "redis":
		if cfg.RedisAddr == "" {
			return fmt.Errorf("config: cache_backend redis requires redis_addr")
		}
	default:
		return fmt.Errorf("config: unknown cache_backend %q", cfg.CacheBackend)
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("config: cache_ttl must be positive")
	}

	switch cfg.OTLPProtocol {
	case "grpc", "http":
	default:
		return fmt.Errorf("config: unknown otlp_protocol %q", cfg.OTLPProtocol)
	}

	if cfg.APIRatePerMinute <= 0 {
		return fmt.Errorf("config: api_rate_per_minute must be positive")
	}
	return nil
}
