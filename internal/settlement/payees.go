package settlement

import "github.com/roach88/bourse/internal/market"

// ExpectedPayees returns the auxiliary payee order a caller must supply:
// every treasury in slot order, then every creator in metadata order.
func ExpectedPayees(treasuries []market.Treasury, creators []market.Creator) []string {
	out := make([]string, 0, len(treasuries)+len(creators))
	for _, t := range treasuries {
		out = append(out, t.Recipient)
	}
	for _, c := range creators {
		out = append(out, c.Address)
	}
	return out
}

// CheckPayees verifies the caller-supplied payees position by position.
// Any mismatch means the caller's view of the registry or metadata is
// stale, and nothing may be paid.
func CheckPayees(treasuries []market.Treasury, creators []market.Creator, payees []string) error {
	want := ExpectedPayees(treasuries, creators)
	if len(payees) != len(want) {
		return market.Consistency(market.CodePayeeCountMismatch,
			"expected %d payees, got %d", len(want), len(payees))
	}
	for i := range want {
		if payees[i] != want[i] {
			return market.Consistency(market.CodePayeeMismatch,
				"payee %d is %q, expected %q", i, payees[i], want[i])
		}
	}
	return nil
}
