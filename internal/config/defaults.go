package config

import (
	"time"

	"github.com/roach88/bourse/internal/engine"
)

// Default values for optional configuration fields.
const (
	DefaultStorePath       = "bourse.db"
	DefaultCacheSize       = 1024
	DefaultCacheTTL        = 5 * time.Minute
	DefaultHTTPAddr        = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.Market.Vault == "" {
		c.Market.Vault = engine.DefaultVault
	}
	if c.Metadata.CacheSize == 0 {
		c.Metadata.CacheSize = DefaultCacheSize
	}
	if c.Metadata.CacheTTL == 0 {
		c.Metadata.CacheTTL = DefaultCacheTTL
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
