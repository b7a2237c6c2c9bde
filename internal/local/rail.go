package local

import (
	"context"

	"github.com/roach88/bourse/internal/store"
)

// Rail keeps account balances in the store's rail_accounts table.
type Rail struct {
	store *store.Store
}

// NewRail creates a Rail.
func NewRail(s *store.Store) *Rail {
	return &Rail{store: s}
}

// Fund credits account. It stands in for an external top-up.
func (r *Rail) Fund(ctx context.Context, account string, amount uint64) error {
	return r.store.Update(ctx, func(rec *store.Records) error {
		return rec.RailCredit(ctx, account, amount)
	})
}

// Balance returns the balance of account.
func (r *Rail) Balance(ctx context.Context, account string) (uint64, error) {
	return r.store.Records().RailBalance(ctx, account)
}

// Transfer moves amount between accounts atomically.
func (r *Rail) Transfer(ctx context.Context, from, to string, amount uint64) error {
	return r.store.Update(ctx, func(rec *store.Records) error {
		return rec.RailTransfer(ctx, from, to, amount)
	})
}
