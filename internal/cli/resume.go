package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/market"
)

// ResumeResult is the outcome of one resume run.
type ResumeResult struct {
	Applied int             `json:"applied"`
	Pending []market.Effect `json:"pending"`
}

// NewResumeCommand creates the resume command.
func NewResumeCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Apply pending custody and payment effects",
		Long: `Apply journaled effects that a custody or payment rail failure left
pending. Effects are applied in commit order and the run stops at the
first failure, leaving it and every later effect pending.

Examples:
  bourse resume
  bourse resume --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				result := ResumeResult{}
				var runErr error
				if !dryRun {
					result.Applied, runErr = a.engine.Resume(ctx)
				}
				pending, err := a.engine.PendingEffects(ctx)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to load pending effects", err)
				}
				result.Pending = pending
				if result.Pending == nil {
					result.Pending = []market.Effect{}
				}

				if a.out.Format == "json" {
					if err := a.out.Success(result); err != nil {
						return err
					}
				} else if err := a.out.Success(a.out.resumeText(result)); err != nil {
					return err
				}
				if runErr != nil {
					return WrapExitError(ExitFailure, "resume stopped", runErr)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending effects without applying them")

	return cmd
}

func (f *OutputFormatter) resumeText(r ResumeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "applied %d effects, %d pending", r.Applied, len(r.Pending))
	for _, e := range r.Pending {
		switch e.Kind {
		case market.EffectPayout:
			fmt.Fprintf(&b, "\n  [%d] payout %s from %s to %s", e.Seq, f.Amount(e.Amount), e.From, e.To)
		case market.EffectLock:
			fmt.Fprintf(&b, "\n  [%d] lock %s from %s", e.Seq, e.Item, e.From)
		default:
			fmt.Fprintf(&b, "\n  [%d] %s %s to %s", e.Seq, e.Kind, e.Item, e.To)
		}
	}
	return b.String()
}
