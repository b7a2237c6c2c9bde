package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/api"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the marketplace over HTTP",
		Long: `Serve the marketplace over HTTP until interrupted.

Routes:
  POST /v1/ops/:op           invoke an operation with a JSON argument object
  GET  /v1/registry          registry
  GET  /v1/users/:owner      escrow account
  GET  /v1/items/:item       listing, auction and offers
  GET  /v1/items/:item/payees
  GET  /v1/items/:item/trace
  GET  /v1/listings          active listings
  GET  /v1/auctions?status=  auctions by status
  GET  /v1/effects           pending effects
  POST /v1/effects/resume    apply pending effects
  GET  /metrics              Prometheus metrics

Examples:
  bourse serve --addr :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if addr == "" {
					addr = a.cfg.HTTP.Addr
				}
				router := api.NewRouter(&api.Handler{Engine: a.engine, Logger: a.logger})
				if err := api.Serve(ctx, addr, router, a.cfg.HTTP.ShutdownTimeout, a.logger); err != nil {
					return WrapExitError(ExitCommandError, "server failed", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
