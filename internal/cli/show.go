package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
)

// NewShowCommand creates the show command and its record subcommands.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show marketplace records",
		Long: `Show marketplace records.

Examples:
  bourse show registry
  bourse show user bob
  bourse show item item-1
  bourse show listings
  bourse show auctions --status reserved`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "registry",
		Short:         "Show the registry",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				reg, err := a.engine.Registry(ctx)
				if err != nil {
					return a.out.Reject(err)
				}
				return a.show(reg, registryText(reg))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "user <owner>",
		Short:         "Show an escrow account",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				u, err := a.engine.User(ctx, args[0])
				if err != nil {
					return a.out.Reject(err)
				}
				return a.show(u, fmt.Sprintf("%s: escrow %s, traded volume %s",
					u.Owner, a.out.Amount(u.EscrowBalance), a.out.Amount(u.TradedVolume)))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "item <item>",
		Short:         "Show an item's listing, auction and offers",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				view, err := a.engine.Item(ctx, args[0])
				if err != nil {
					return a.out.Reject(err)
				}
				return a.show(view, a.out.itemText(view))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "listings",
		Short:         "Show active listings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				listings, err := a.engine.ActiveListings(ctx)
				if err != nil {
					return a.out.Reject(err)
				}
				lines := make([]string, len(listings))
				for i, l := range listings {
					lines[i] = a.out.listingText(l)
				}
				return a.show(listings, textOrNone(lines, "no active listings"))
			})
		},
	})

	var status string
	auctions := &cobra.Command{
		Use:           "auctions",
		Short:         "Show auctions by status",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, ok := market.ParseAuctionStatus(status)
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid status %q", status))
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				list, err := a.engine.Auctions(ctx, st)
				if err != nil {
					return a.out.Reject(err)
				}
				lines := make([]string, len(list))
				for i, auc := range list {
					lines[i] = a.out.auctionText(auc)
				}
				return a.show(list, textOrNone(lines, "no "+status+" auctions"))
			})
		},
	}
	auctions.Flags().StringVar(&status, "status", "running", "auction status (running|reserved|claimed|cancelled)")
	cmd.AddCommand(auctions)

	return cmd
}

// show prints data as JSON or text as text.
func (a *app) show(data any, text string) error {
	if a.out.Format == "json" {
		return a.out.Success(data)
	}
	return a.out.Success(text)
}

func textOrNone(lines []string, none string) string {
	if len(lines) == 0 {
		return none
	}
	return strings.Join(lines, "\n")
}

func (f *OutputFormatter) listingText(l market.Listing) string {
	state := "active"
	if !l.Active {
		state = "inactive"
	}
	return fmt.Sprintf("%s listed by %s at %s (%s, epoch %d, collection %s)",
		l.Item, l.Seller, f.Amount(l.Price), state, l.ListedAt, l.Collection)
}

func (f *OutputFormatter) auctionText(a market.Auction) string {
	leader := "no bids"
	if a.HasBid() {
		leader = fmt.Sprintf("highest %s by %s", f.Amount(a.HighestBid), a.LastBidder)
	}
	return fmt.Sprintf("%s auction by %s, %s, start %s, increment %s, %s, ends %d",
		a.Item, a.Creator, a.Status, f.Amount(a.StartPrice), f.Amount(a.MinIncrement), leader, a.EndAt())
}

func (f *OutputFormatter) itemText(v engine.ItemView) string {
	lines := []string{v.Item}
	if v.Listing != nil {
		lines = append(lines, "  listing: "+f.listingText(*v.Listing))
	}
	if v.Auction != nil {
		lines = append(lines, "  auction: "+f.auctionText(*v.Auction))
	}
	for _, o := range v.Offers {
		lines = append(lines, fmt.Sprintf("  offer: %s by %s (epoch %d)", f.Amount(o.Price), o.Buyer, o.ListingEpoch))
	}
	if len(lines) == 1 {
		lines = append(lines, "  no marketplace records")
	}
	return strings.Join(lines, "\n")
}
