package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/market"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the marketplace registry from config",
		Long: `Initialize the registry with the admin, fee rate and treasuries from the
market section of the config file.

Example:
  bourse --config bourse.yaml init`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, initRegistry)
		},
	}
}

func initRegistry(ctx context.Context, a *app) error {
	m := a.cfg.Market
	if m.Admin == "" {
		return NewExitError(ExitCommandError, "market.admin is required to initialize the registry")
	}

	if _, err := a.engine.Initialize(ctx, m.Admin); err != nil {
		return a.out.Reject(err)
	}
	if _, err := a.engine.SetFee(ctx, m.Admin, m.FeeRate); err != nil {
		return a.out.Reject(err)
	}
	for _, t := range m.Treasuries {
		if _, err := a.engine.AddTreasury(ctx, m.Admin, t.Recipient, t.Rate); err != nil {
			return a.out.Reject(err)
		}
		a.logger.Debug("treasury added", "recipient", t.Recipient, "rate", t.Rate)
	}

	reg, err := a.engine.Registry(ctx)
	if err != nil {
		return a.out.Reject(err)
	}
	if a.out.Format == "json" {
		return a.out.Success(reg)
	}
	return a.out.Success(registryText(reg))
}

func registryText(reg market.Registry) string {
	s := fmt.Sprintf("admin %s, fee rate %d/%d", reg.Admin, reg.FeeRate, market.Permyriad)
	for i, t := range reg.ActiveTreasuries() {
		s += fmt.Sprintf("\n  treasury[%d] %s rate %d", i, t.Recipient, t.Rate)
	}
	return s
}
