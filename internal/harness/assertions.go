package harness

import (
	"context"
	"fmt"

	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/testutil"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against the market and
// returns one message per failure.
func EvaluateAssertions(ctx context.Context, m *testutil.Market, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(ctx, m, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(ctx context.Context, m *testutil.Market, a Assertion) error {
	rec := m.Store.Records()

	switch a.Type {
	case AssertEscrow:
		u, ok, err := rec.User(ctx, a.Owner)
		if err != nil {
			return err
		}
		if !ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("account for %s", a.Owner), Actual: "no account"}
		}
		return equalAmount(a, u.EscrowBalance)

	case AssertRailBalance:
		return equalAmount(a, m.Rail.Balance(a.Account))

	case AssertHolder:
		if got := m.Holder(a.Item); got != a.Holder {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s held by %s", a.Item, a.Holder), Actual: holderName(got)}
		}

	case AssertListing:
		l, ok, err := rec.Listing(ctx, a.Item)
		if err != nil {
			return err
		}
		if active := ok && l.Active; active != *a.Active {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("active=%t", *a.Active), Actual: fmt.Sprintf("active=%t", active)}
		}

	case AssertAuction:
		auc, ok, err := rec.Auction(ctx, a.Item)
		if err != nil {
			return err
		}
		if !ok {
			return &AssertionError{Type: a.Type, Expected: a.Status, Actual: "no auction"}
		}
		if want, _ := market.ParseAuctionStatus(a.Status); auc.Status != want {
			return &AssertionError{Type: a.Type, Expected: a.Status, Actual: auc.Status.String()}
		}

	case AssertPendingEffects:
		n, err := rec.CountPendingEffects(ctx)
		if err != nil {
			return err
		}
		return equalCount(a, n)

	case AssertSettlements:
		s, err := rec.Settlements(ctx, a.Item)
		if err != nil {
			return err
		}
		return equalCount(a, len(s))

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func equalAmount(a Assertion, got uint64) error {
	if got != *a.Amount {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprint(*a.Amount), Actual: fmt.Sprint(got)}
	}
	return nil
}

func equalCount(a Assertion, got int) error {
	if got != *a.Count {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("count %d", *a.Count), Actual: fmt.Sprintf("count %d", got)}
	}
	return nil
}

func holderName(h string) string {
	if h == "" {
		return "nobody"
	}
	return h
}
