package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Op string // optional - filter to one operation name
}

// TraceStats holds summary statistics for an item's history.
type TraceStats struct {
	Operations  int    `json:"operations"`
	Settlements int    `json:"settlements"`
	Gross       uint64 `json:"gross"`
	Royalties   uint64 `json:"royalties"`
	Fees        uint64 `json:"fees"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	engine.Trace
	Stats TraceStats `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <item>",
		Short: "Show the audit history of an item",
		Long: `Show the audit history of an item.

Lists every committed operation that touched the item in commit order,
followed by the settlements its sales produced.

Examples:
  bourse trace item-1
  bourse trace item-1 --op purchase
  bourse trace item-1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "filter to a specific operation")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command, item string) error {
	return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
		tr, err := a.engine.Trace(ctx, item)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load trace", err)
		}
		result := buildTraceResult(tr, opts.Op)
		if a.out.Format == "json" {
			return a.out.Success(result)
		}
		return a.out.Success(a.out.traceText(result))
	})
}

func buildTraceResult(tr engine.Trace, op string) TraceResult {
	if op != "" {
		filtered := make([]market.Operation, 0, len(tr.Operations))
		keep := make(map[string]bool)
		for _, o := range tr.Operations {
			if o.Op == op {
				filtered = append(filtered, o)
				keep[o.ID] = true
			}
		}
		settlements := make([]market.Settlement, 0, len(tr.Settlements))
		for _, s := range tr.Settlements {
			if keep[s.OperationID] {
				settlements = append(settlements, s)
			}
		}
		tr.Operations = filtered
		tr.Settlements = settlements
	}

	stats := TraceStats{Operations: len(tr.Operations), Settlements: len(tr.Settlements)}
	for _, s := range tr.Settlements {
		stats.Gross += s.Gross
		stats.Royalties += s.RoyaltyTotal
		stats.Fees += s.PlatformFee
	}
	return TraceResult{Trace: tr, Stats: stats}
}

func (f *OutputFormatter) traceText(r TraceResult) string {
	if r.Stats.Operations == 0 {
		return fmt.Sprintf("no operations recorded for %s", r.Item)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Trace for %s\n\nOperations:\n", r.Item)
	for _, o := range r.Operations {
		fmt.Fprintf(&b, "  [%d] %s by %s at %d %s\n", o.Seq, o.Op, o.Caller, o.At, o.Args)
	}
	if len(r.Settlements) > 0 {
		b.WriteString("\nSettlements:\n")
		for _, s := range r.Settlements {
			fmt.Fprintf(&b, "  %s at %d: gross %s, royalty %s, fee %s, seller net %s\n",
				s.Kind, s.At, f.Amount(s.Gross), f.Amount(s.RoyaltyTotal), f.Amount(s.PlatformFee), f.Amount(s.SellerNet))
			for _, p := range s.Payouts {
				fmt.Fprintf(&b, "    %-8s %-20s %s\n", p.Role, p.Recipient, f.Amount(p.Amount))
			}
		}
	}
	fmt.Fprintf(&b, "\n%d operations, %d settlements, gross %s", r.Stats.Operations, r.Stats.Settlements, f.Amount(r.Stats.Gross))
	return b.String()
}
