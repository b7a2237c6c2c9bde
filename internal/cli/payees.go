package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewPayeesCommand creates the payees command.
func NewPayeesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "payees <item>",
		Short: "List the payees a sale of an item must supply",
		Long: `List the auxiliary payees a settlement of the item requires right now:
treasuries in slot order, then the item's creators.

Pass them in this order as the "payees" argument of purchase,
accept_offer and claim_auction.

Examples:
  bourse payees item-1
  bourse payees item-1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				payees, err := a.engine.ExpectedPayees(ctx, args[0])
				if err != nil {
					return a.out.Reject(err)
				}
				if payees == nil {
					payees = []string{}
				}
				return a.show(payees, textOrNone(payees, "no payees"))
			})
		},
	}
}
