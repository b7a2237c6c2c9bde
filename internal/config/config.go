// Package config loads the bourse configuration file.
//
// A file is YAML with ${VAR} expansion. Defaults fill unset fields,
// BOURSE_* environment variables override single values, and the result
// is checked against an embedded CUE policy before use.
package config

import (
	"time"

	"github.com/roach88/bourse/internal/market"
)

// Config is the root configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Market   MarketConfig   `yaml:"market"`
	Metadata MetadataConfig `yaml:"metadata"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Display  DisplayConfig  `yaml:"display"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// MarketConfig is the registry `bourse init` creates.
type MarketConfig struct {
	Admin      string            `yaml:"admin"`
	Vault      string            `yaml:"vault"`
	FeeRate    uint64            `yaml:"fee_rate"` // permyriad
	Treasuries []market.Treasury `yaml:"treasuries"`
}

// MetadataConfig selects the royalty catalog and its cache.
type MetadataConfig struct {
	Catalog   string        `yaml:"catalog"`
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// HTTPConfig holds `bourse serve` settings.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// DisplayConfig controls how amounts are rendered in text output.
type DisplayConfig struct {
	Decimals int32 `yaml:"decimals"`
}
