package engine

import (
	"context"

	"github.com/roach88/bourse/internal/market"
)

// Initialize creates the registry with admin as its administrator.
// It succeeds once.
func (e *Engine) Initialize(ctx context.Context, admin string) (*Receipt, error) {
	c := call{op: "initialize", caller: admin, args: map[string]any{"admin": admin}}
	if admin == "" {
		return nil, e.fail(c, market.Validation(market.CodeInvalidArgument, "admin is empty"))
	}
	return e.execute(ctx, c, func(t *txn) error {
		_, ok, err := t.rec.Registry(t.ctx)
		if err != nil {
			return err
		}
		if ok {
			return market.State(market.CodeAlreadyInitialized, "registry already initialized")
		}
		return t.rec.PutRegistry(t.ctx, market.Registry{Admin: admin})
	})
}

// SetFee replaces the platform fee rate (permyriad).
func (e *Engine) SetFee(ctx context.Context, caller string, rate uint64) (*Receipt, error) {
	c := call{op: "set_fee", caller: caller, args: map[string]any{"caller": caller, "rate": rate}}
	return e.updateRegistry(ctx, c, func(reg *market.Registry) error {
		return reg.SetFee(rate)
	})
}

// AddTreasury appends a platform fee recipient.
func (e *Engine) AddTreasury(ctx context.Context, caller, recipient string, rate uint64) (*Receipt, error) {
	c := call{op: "add_treasury", caller: caller, args: map[string]any{
		"caller": caller, "recipient": recipient, "rate": rate,
	}}
	return e.updateRegistry(ctx, c, func(reg *market.Registry) error {
		return reg.AddTreasury(recipient, rate)
	})
}

// RemoveTreasury deletes a platform fee recipient. The last treasury
// takes the removed one's slot.
func (e *Engine) RemoveTreasury(ctx context.Context, caller, recipient string) (*Receipt, error) {
	c := call{op: "remove_treasury", caller: caller, args: map[string]any{
		"caller": caller, "recipient": recipient,
	}}
	return e.updateRegistry(ctx, c, func(reg *market.Registry) error {
		return reg.RemoveTreasury(recipient)
	})
}

// updateRegistry applies an admin-only change to the registry.
func (e *Engine) updateRegistry(ctx context.Context, c call, change func(*market.Registry) error) (*Receipt, error) {
	return e.execute(ctx, c, func(t *txn) error {
		reg, err := t.registry()
		if err != nil {
			return err
		}
		if c.caller != reg.Admin {
			return market.Authorization(market.CodeUnauthorized, "%q is not the registry admin", c.caller)
		}
		if err := change(&reg); err != nil {
			return err
		}
		return t.rec.PutRegistry(t.ctx, reg)
	})
}
