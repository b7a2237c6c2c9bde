package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/testutil"
)

// errRailDown is what a failed rail transfer returns inside a scenario.
var errRailDown = errors.New("rail unavailable")

// Harness runs one scenario against a fresh market.
type Harness struct {
	market *testutil.Market
	logger *slog.Logger
}

// Run executes a scenario and returns its result.
//
// Each scenario runs in a fresh in-memory database. An error is returned
// only when the market cannot be built or seeded; step and assertion
// mismatches are reported on the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := testutil.OpenMarket(":memory:", engine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory market: %w", err)
	}
	defer m.Store.Close()

	h := &Harness{market: m, logger: logger}
	if err := h.setup(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	for _, msg := range EvaluateAssertions(ctx, m, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// setup seeds the registry, accounts and items. Setup operations must
// succeed and are not traced.
func (h *Harness) setup(ctx context.Context, s *Scenario) error {
	eng := h.market.Engine

	if r := s.Registry; r != nil {
		if _, err := eng.Initialize(ctx, r.Admin); err != nil {
			return err
		}
		if _, err := eng.SetFee(ctx, r.Admin, r.FeeRate); err != nil {
			return err
		}
		for _, t := range r.Treasuries {
			if _, err := eng.AddTreasury(ctx, r.Admin, t.Recipient, t.Rate); err != nil {
				return err
			}
		}
	}

	for _, a := range s.Accounts {
		if _, err := eng.InitUser(ctx, a.Owner); err != nil {
			return err
		}
		if a.Escrow == 0 {
			continue
		}
		h.market.Rail.Fund(a.Owner, a.Escrow)
		if _, err := eng.Deposit(ctx, a.Owner, a.Escrow); err != nil {
			return err
		}
	}

	for _, it := range s.Items {
		h.market.Item(it.Item, it.Holder, it.Royalty)
	}
	return nil
}

func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) {
	m := h.market
	switch {
	case step.Advance != 0:
		m.Clock.Advance(step.Advance)
	case step.FailRail != "":
		m.Rail.FailTransfersTo(step.FailRail, errRailDown)
	case step.HealRail != "":
		m.Rail.FailTransfersTo(step.HealRail, nil)
	case step.Resume:
		h.resume(ctx, i, result)
	default:
		h.invoke(ctx, i, step, result)
	}
}

func (h *Harness) resume(ctx context.Context, i int, result *Result) {
	n, err := h.market.Engine.Resume(ctx)
	event := TraceEvent{Step: i, Op: "resume", Outcome: OutcomeOK, Applied: n}
	if err != nil {
		event.Outcome = "error"
		result.AddError(fmt.Sprintf("steps[%d] resume: %v", i, err))
	}
	result.Trace = append(result.Trace, event)
}

func (h *Harness) invoke(ctx context.Context, i int, step Step, result *Result) {
	event := TraceEvent{Step: i, Op: step.Op, Args: step.Args}
	receipt, err := h.market.Engine.Invoke(ctx, step.Op, engine.Args(step.Args))

	expect := step.Expect
	if expect == nil {
		expect = &Expect{}
	}

	if err != nil {
		me, ok := market.AsError(err)
		if !ok {
			event.Outcome = "error"
			result.Trace = append(result.Trace, event)
			result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, step.Op, err))
			return
		}
		event.Outcome = string(me.Code)
		result.Trace = append(result.Trace, event)
		if expect.Code != string(me.Code) {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got %v", i, step.Op, outcomeName(expect.Code), err))
		}
		return
	}

	event.Outcome = OutcomeOK
	event.At = receipt.At
	event.Settlement = receipt.Settlement
	event.Pending = receipt.Pending
	result.Trace = append(result.Trace, event)

	if expect.Code != "" {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got success", i, step.Op, expect.Code))
		return
	}
	if expect.Pending != nil && *expect.Pending != receipt.Pending {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %d pending effects, got %d", i, step.Op, *expect.Pending, receipt.Pending))
	}
	if expect.Settlement != nil {
		for _, msg := range matchSettlement(*expect.Settlement, receipt.Settlement) {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Op, msg))
		}
	}
	h.logger.Debug("step completed", "step", i, "op", step.Op, "operation_id", receipt.OperationID)
}

func outcomeName(code string) string {
	if code == "" {
		return "success"
	}
	return code
}

func matchSettlement(want ExpectSettlement, got *market.Settlement) []string {
	if got == nil {
		return []string{"expected a settlement, got none"}
	}
	var errs []string
	check := func(field string, want *uint64, got uint64) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Sprintf("settlement %s: expected %d, got %d", field, *want, got))
		}
	}
	check("gross", want.Gross, got.Gross)
	check("royalty_total", want.RoyaltyTotal, got.RoyaltyTotal)
	check("platform_fee", want.PlatformFee, got.PlatformFee)
	check("seller_net", want.SellerNet, got.SellerNet)
	return errs
}
