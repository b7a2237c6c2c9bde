package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/bourse/internal/market"
)

// CustodyHolder returns the party currently holding item.
func (r *Records) CustodyHolder(ctx context.Context, item string) (string, bool, error) {
	var holder string
	err := r.q.QueryRowContext(ctx, `SELECT holder FROM custody WHERE item = ?`, item).Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read custody: %w", err)
	}
	return holder, true, nil
}

// SetCustodyHolder records holder as the owner of item unconditionally.
func (r *Records) SetCustodyHolder(ctx context.Context, item, holder string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO custody (item, holder) VALUES (?, ?)
		ON CONFLICT(item) DO UPDATE SET holder = excluded.holder
	`, item, holder)
	if err != nil {
		return fmt.Errorf("write custody: %w", err)
	}
	return nil
}

// MoveCustody transfers item from one holder to another, failing with
// market.ErrNotHolder if from does not hold it.
func (r *Records) MoveCustody(ctx context.Context, item, from, to string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE custody SET holder = ? WHERE item = ? AND holder = ?
	`, to, item, from)
	if err != nil {
		return fmt.Errorf("move custody: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("move custody: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("move custody of %s from %s: %w", item, from, market.ErrNotHolder)
	}
	return nil
}

// RailBalance returns the balance of a rail account; unknown accounts are empty.
func (r *Records) RailBalance(ctx context.Context, account string) (uint64, error) {
	var balance int64
	err := r.q.QueryRowContext(ctx, `SELECT balance FROM rail_accounts WHERE account = ?`, account).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read rail balance: %w", err)
	}
	return u64(balance), nil
}

// RailCredit adds amount to an account.
func (r *Records) RailCredit(ctx context.Context, account string, amount uint64) error {
	balance, err := r.RailBalance(ctx, account)
	if err != nil {
		return err
	}
	if balance+amount < balance {
		return fmt.Errorf("rail credit %s: balance overflow", account)
	}
	return r.putRailBalance(ctx, account, balance+amount)
}

// RailTransfer moves amount between accounts, failing with
// market.ErrInsufficientFunds if from cannot cover it. Call it inside Update so
// the debit and credit commit together.
func (r *Records) RailTransfer(ctx context.Context, from, to string, amount uint64) error {
	balance, err := r.RailBalance(ctx, from)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("rail transfer from %s: %w", from, market.ErrInsufficientFunds)
	}
	if err := r.putRailBalance(ctx, from, balance-amount); err != nil {
		return err
	}
	return r.RailCredit(ctx, to, amount)
}

func (r *Records) putRailBalance(ctx context.Context, account string, balance uint64) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO rail_accounts (account, balance) VALUES (?, ?)
		ON CONFLICT(account) DO UPDATE SET balance = excluded.balance
	`, account, i64(balance))
	if err != nil {
		return fmt.Errorf("write rail balance: %w", err)
	}
	return nil
}
