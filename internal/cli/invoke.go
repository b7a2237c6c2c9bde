package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/engine"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Args string
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <operation>",
		Short: "Run a marketplace operation by name",
		Long: `Run a marketplace operation by name with JSON arguments.

Operations: ` + strings.Join(engine.OperationNames(), ", ") + `

Exit codes:
  0 - Operation committed
  1 - Operation rejected (the rejection code is printed)
  2 - Command error

Examples:
  bourse invoke list --args '{"item":"item-1","seller":"alice","price":1000000}'
  bourse invoke purchase --args '{"item":"item-1","buyer":"bob","payees":["treasury-a","carol"]}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeOperation(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "operation arguments as JSON")

	return cmd
}

func invokeOperation(opts *InvokeOptions, op string, cmd *cobra.Command) error {
	args := engine.Args{}
	dec := json.NewDecoder(strings.NewReader(opts.Args))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return WrapExitError(ExitCommandError, "invalid --args JSON", err)
	}

	return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
		a.out.VerboseLog("invoking %s with %s", op, opts.Args)
		receipt, err := a.engine.Invoke(ctx, op, args)
		if err != nil {
			return a.out.Reject(err)
		}
		if a.out.Format == "json" {
			return a.out.Success(receipt)
		}
		return a.out.Success(a.out.receiptText(receipt))
	})
}

// receiptText renders a receipt for humans.
func (f *OutputFormatter) receiptText(r *engine.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s committed as %s (seq %d, at %d)", r.Op, r.OperationID, r.Seq, r.At)
	if r.Item != "" {
		fmt.Fprintf(&b, " for %s", r.Item)
	}
	if s := r.Settlement; s != nil {
		fmt.Fprintf(&b, "\nsettlement %s: gross %s, royalty %s, platform fee %s, seller net %s",
			s.Kind, f.Amount(s.Gross), f.Amount(s.RoyaltyTotal), f.Amount(s.PlatformFee), f.Amount(s.SellerNet))
		for _, p := range s.Payouts {
			fmt.Fprintf(&b, "\n  %-8s %-20s %s", p.Role, p.Recipient, f.Amount(p.Amount))
		}
	}
	if len(r.Effects) > 0 {
		fmt.Fprintf(&b, "\n%d effects, %d pending", len(r.Effects), r.Pending)
	}
	if r.Pending > 0 {
		b.WriteString("\nrun `bourse resume` once the collaborator recovers")
	}
	return b.String()
}
