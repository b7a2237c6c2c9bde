package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// The fund and mint commands seed the store-backed rail and custody
// ledgers that stand in for real collaborators.

// NewFundCommand creates the fund command.
func NewFundCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fund <account> <amount>",
		Short: "Credit an account on the local payment rail",
		Long: `Credit an account on the local payment rail. Amounts are in base units.

Examples:
  bourse fund bob 2000000`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if err := a.rail.Fund(ctx, args[0], amount); err != nil {
					return WrapExitError(ExitCommandError, "failed to fund account", err)
				}
				balance, err := a.rail.Balance(ctx, args[0])
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read balance", err)
				}
				return a.show(
					map[string]any{"account": args[0], "balance": balance},
					fmt.Sprintf("%s rail balance %s", args[0], a.out.Amount(balance)),
				)
			})
		},
	}
}

// NewMintCommand creates the mint command.
func NewMintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mint <item> <holder>",
		Short: "Record an item as held by a party in local custody",
		Long: `Record an item as held by a party in local custody. The item's
royalty policy comes from the metadata catalog.

Examples:
  bourse mint item-1 alice`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if err := a.custody.Mint(ctx, args[0], args[1]); err != nil {
					return WrapExitError(ExitCommandError, "failed to mint item", err)
				}
				return a.show(
					map[string]any{"item": args[0], "holder": args[1]},
					fmt.Sprintf("%s held by %s", args[0], args[1]),
				)
			})
		},
	}
}
