package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &cfg, nil
}

// envOverrides are the fields settable from the environment. A nil
// field means the variable is unset.
type envOverrides struct {
	StorePath *string        `env:"BOURSE_STORE_PATH"`
	Admin     *string        `env:"BOURSE_ADMIN"`
	Vault     *string        `env:"BOURSE_VAULT"`
	FeeRate   *uint64        `env:"BOURSE_FEE_RATE"`
	Catalog   *string        `env:"BOURSE_METADATA_CATALOG"`
	CacheSize *int           `env:"BOURSE_METADATA_CACHE_SIZE"`
	CacheTTL  *time.Duration `env:"BOURSE_METADATA_CACHE_TTL"`
	HTTPAddr  *string        `env:"BOURSE_HTTP_ADDR"`
	LogLevel  *string        `env:"BOURSE_LOG_LEVEL"`
	LogFormat *string        `env:"BOURSE_LOG_FORMAT"`
	Decimals  *int32         `env:"BOURSE_DISPLAY_DECIMALS"`
}

// ApplyEnv overrides fields from BOURSE_* environment variables.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	set(&c.Store.Path, o.StorePath)
	set(&c.Market.Admin, o.Admin)
	set(&c.Market.Vault, o.Vault)
	set(&c.Market.FeeRate, o.FeeRate)
	set(&c.Metadata.Catalog, o.Catalog)
	set(&c.Metadata.CacheSize, o.CacheSize)
	set(&c.Metadata.CacheTTL, o.CacheTTL)
	set(&c.HTTP.Addr, o.HTTPAddr)
	set(&c.Log.Level, o.LogLevel)
	set(&c.Log.Format, o.LogFormat)
	set(&c.Display.Decimals, o.Decimals)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// LoadAndValidate loads path (or starts from an empty config when path
// is empty), applies env overrides and defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
