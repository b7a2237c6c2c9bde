package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"go.uber.org/multierr"

	"github.com/roach88/bourse/internal/market"
)

//go:embed policy.cue
var policySource string

// Validate checks the configuration against the CUE policy and the
// registry rules the policy cannot express. Every problem is reported.
func (c *Config) Validate() error {
	err := c.checkPolicy()

	if n := len(c.Market.Treasuries); n > market.MaxTreasuries {
		err = multierr.Append(err, fmt.Errorf("market.treasuries: at most %d, got %d", market.MaxTreasuries, n))
	}
	var sum uint64
	seen := make(map[string]bool, len(c.Market.Treasuries))
	for i, t := range c.Market.Treasuries {
		if seen[t.Recipient] {
			err = multierr.Append(err, fmt.Errorf("market.treasuries[%d]: duplicate recipient %q", i, t.Recipient))
		}
		seen[t.Recipient] = true
		sum += t.Rate
	}
	if sum > market.Permyriad {
		err = multierr.Append(err, fmt.Errorf("market.treasuries: rates sum to %d, above %d", sum, market.Permyriad))
	}
	return err
}

// checkPolicy unifies the config with policy.cue.
func (c *Config) checkPolicy() error {
	ctx := cuecontext.New()
	policy := ctx.CompileString(policySource, cue.Filename("policy.cue"))
	if err := policy.Err(); err != nil {
		return fmt.Errorf("compile policy: %w", err)
	}

	v := policy.Unify(ctx.Encode(c.document()))
	verr := v.Validate(cue.Concrete(true))
	if verr == nil {
		return nil
	}
	var err error
	for _, e := range cueerrors.Errors(verr) {
		msg := e.Error()
		if path := strings.Join(e.Path(), "."); path != "" && !strings.HasPrefix(msg, path) {
			msg = path + ": " + msg
		}
		err = multierr.Append(err, errors.New(msg))
	}
	return err
}

// document renders the config with its YAML field names for the policy.
func (c *Config) document() map[string]any {
	treasuries := make([]any, len(c.Market.Treasuries))
	for i, t := range c.Market.Treasuries {
		treasuries[i] = map[string]any{"recipient": t.Recipient, "rate": t.Rate}
	}
	return map[string]any{
		"store": map[string]any{"path": c.Store.Path},
		"market": map[string]any{
			"admin":      c.Market.Admin,
			"vault":      c.Market.Vault,
			"fee_rate":   c.Market.FeeRate,
			"treasuries": treasuries,
		},
		"metadata": map[string]any{
			"catalog":    c.Metadata.Catalog,
			"cache_size": c.Metadata.CacheSize,
			"cache_ttl":  int64(c.Metadata.CacheTTL),
		},
		"http": map[string]any{
			"addr":             c.HTTP.Addr,
			"shutdown_timeout": int64(c.HTTP.ShutdownTimeout),
		},
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
		"display": map[string]any{"decimals": c.Display.Decimals},
	}
}
