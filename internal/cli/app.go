package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/local"
	"github.com/roach88/bourse/internal/metadata"
	"github.com/roach88/bourse/internal/store"
)

// app is everything a command needs to talk to the marketplace: the
// store, the engine over store-backed custody and rail, and output.
type app struct {
	cfg     *config.Config
	store   *store.Store
	engine  *engine.Engine
	custody *local.Custody
	rail    *local.Rail
	logger  *slog.Logger
	out     *OutputFormatter
}

// openApp loads configuration, opens the database and builds the engine.
// The caller must call close.
func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadAndValidate(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Store.Path = opts.Database
	}

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr(), opts.Verbose)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	src, err := metadataSource(cfg.Metadata)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load metadata catalog", err)
	}

	logger.Debug("opening database", "path", cfg.Store.Path)
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	custody := local.NewCustody(st, cfg.Market.Vault)
	rail := local.NewRail(st)
	eng := engine.New(st, engine.Collaborators{
		Custody:  custody,
		Rail:     rail,
		Metadata: src,
	}, engine.WithVault(cfg.Market.Vault), engine.WithLogger(logger))

	out := newFormatter(opts, cmd)
	out.Decimals = cfg.Display.Decimals

	return &app{
		cfg:     cfg,
		store:   st,
		engine:  eng,
		custody: custody,
		rail:    rail,
		logger:  logger,
		out:     out,
	}, nil
}

// metadataSource returns the cached catalog, or an empty catalog when
// none is configured so that registry and account commands still work.
func metadataSource(cfg config.MetadataConfig) (metadata.Source, error) {
	catalog := metadata.EmptyCatalog()
	if cfg.Catalog != "" {
		var err error
		if catalog, err = metadata.LoadCatalog(cfg.Catalog); err != nil {
			return nil, err
		}
	}
	return metadata.NewCached(catalog, cfg.CacheSize, cfg.CacheTTL), nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

// commandContext returns the command context, which main wires to SIGINT.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withApp opens the app, runs fn and closes it.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(commandContext(cmd), a)
}

// parseAmount parses a base-unit amount argument.
func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid amount %q: must be a non-negative integer", s))
	}
	return v, nil
}
