package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/bourse/internal/market"
)

// Transfer is one completed rail transfer.
type Transfer struct {
	From   string
	To     string
	Amount uint64
}

// Rail is a ledger of account balances.
type Rail struct {
	mu        sync.Mutex
	balances  map[string]uint64
	transfers []Transfer
	failTo    map[string]error
}

// NewRail creates an empty Rail.
func NewRail() *Rail {
	return &Rail{
		balances: make(map[string]uint64),
		failTo:   make(map[string]error),
	}
}

// Fund credits account out of thin air.
func (r *Rail) Fund(account string, amount uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[account] += amount
}

// Balance returns the balance of account.
func (r *Rail) Balance(account string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[account]
}

// Transfers returns every completed transfer in order.
func (r *Rail) Transfers() []Transfer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Transfer, len(r.transfers))
	copy(out, r.transfers)
	return out
}

// FailTransfersTo makes transfers into account return err. A nil err
// clears the failure.
func (r *Rail) FailTransfersTo(account string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failTo, account)
		return
	}
	r.failTo[account] = err
}

// Transfer moves amount from one account to another.
func (r *Rail) Transfer(_ context.Context, from, to string, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failTo[to]; err != nil {
		return err
	}
	if r.balances[from] < amount {
		return fmt.Errorf("transfer %d from %s: %w", amount, from, market.ErrInsufficientFunds)
	}
	r.balances[from] -= amount
	r.balances[to] += amount
	r.transfers = append(r.transfers, Transfer{From: from, To: to, Amount: amount})
	return nil
}
