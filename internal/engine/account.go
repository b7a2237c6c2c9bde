package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/roach88/bourse/internal/market"
)

// InitUser creates an empty escrow account for owner.
func (e *Engine) InitUser(ctx context.Context, owner string) (*Receipt, error) {
	c := call{op: "init_user", caller: owner, args: map[string]any{"owner": owner}}
	if owner == "" {
		return nil, e.fail(c, market.Validation(market.CodeInvalidArgument, "owner is empty"))
	}
	return e.execute(ctx, c, func(t *txn) error {
		_, ok, err := t.rec.User(t.ctx, owner)
		if err != nil {
			return err
		}
		if ok {
			return market.State(market.CodeAccountExists, "account %q already exists", owner)
		}
		return t.rec.PutUser(t.ctx, market.UserAccount{Owner: owner})
	})
}

// Deposit moves amount from owner's rail account into the vault and
// credits owner's escrow balance.
//
// The rail transfer precedes the record transaction. If the transaction
// then fails, the transfer is reversed.
func (e *Engine) Deposit(ctx context.Context, owner string, amount uint64) (*Receipt, error) {
	c := call{op: "deposit", caller: owner, args: map[string]any{"owner": owner, "amount": amount}}
	if amount == 0 {
		return nil, e.fail(c, market.Validation(market.CodeInvalidAmount, "deposit amount must be positive"))
	}
	if _, ok, err := e.store.Records().User(ctx, owner); err != nil || !ok {
		if err == nil {
			err = market.State(market.CodeAccountNotFound, "no account for %q", owner)
		}
		return nil, e.fail(c, err)
	}

	if err := e.rail.Transfer(ctx, owner, e.vault, amount); err != nil {
		if errors.Is(err, market.ErrInsufficientFunds) {
			err = market.InsufficientFunds(market.CodeInsufficientRail, "%q cannot fund deposit of %d", owner, amount)
		}
		return nil, e.fail(c, err)
	}

	receipt, err := e.execute(ctx, c, func(t *txn) error {
		u, err := t.user(owner)
		if err != nil {
			return err
		}
		if err := credit(&u, amount); err != nil {
			return err
		}
		return t.rec.PutUser(t.ctx, u)
	})
	if err != nil {
		if rerr := e.rail.Transfer(ctx, e.vault, owner, amount); rerr != nil {
			e.logger.Error("deposit reversal failed", "owner", owner, "amount", amount, "error", rerr)
			err = multierr.Append(err, fmt.Errorf("reverse deposit: %w", rerr))
		}
		return nil, err
	}
	return receipt, nil
}

// Withdraw debits owner's escrow balance and pays it out of the vault.
func (e *Engine) Withdraw(ctx context.Context, owner string, amount uint64) (*Receipt, error) {
	c := call{op: "withdraw", caller: owner, args: map[string]any{"owner": owner, "amount": amount}}
	if amount == 0 {
		return nil, e.fail(c, market.Validation(market.CodeInvalidAmount, "withdraw amount must be positive"))
	}
	return e.execute(ctx, c, func(t *txn) error {
		u, err := t.user(owner)
		if err != nil {
			return err
		}
		if err := debit(&u, amount); err != nil {
			return err
		}
		if err := t.rec.PutUser(t.ctx, u); err != nil {
			return err
		}
		t.pay(owner, amount)
		return nil
	})
}

// debit removes amount from u's escrow balance.
func debit(u *market.UserAccount, amount uint64) error {
	if u.EscrowBalance < amount {
		return market.InsufficientFunds(market.CodeInsufficientEscrow,
			"%q has %d in escrow, needs %d", u.Owner, u.EscrowBalance, amount)
	}
	u.EscrowBalance -= amount
	return nil
}

// credit adds amount to u's escrow balance.
func credit(u *market.UserAccount, amount uint64) error {
	if u.EscrowBalance+amount < u.EscrowBalance {
		return market.Validation(market.CodeInvalidAmount, "escrow balance of %q would overflow", u.Owner)
	}
	u.EscrowBalance += amount
	return nil
}
