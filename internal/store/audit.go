package store

import (
	"context"
	"fmt"

	"github.com/roach88/bourse/internal/market"
)

// AppendOperation records a committed operation and returns its seq.
func (r *Records) AppendOperation(ctx context.Context, op market.Operation) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO operations (id, op, item, caller, args, at) VALUES (?, ?, ?, ?, ?, ?)
	`, op.ID, op.Op, op.Item, op.Caller, op.Args, op.At)
	if err != nil {
		return 0, fmt.Errorf("write operation: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write operation: %w", err)
	}
	return seq, nil
}

// Operations returns the audit log of an item in seq order. An empty item
// selects registry and account operations.
// Returns an empty slice (not nil) if there are none.
func (r *Records) Operations(ctx context.Context, item string) ([]market.Operation, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT seq, id, op, item, caller, args, at FROM operations
		WHERE item = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, item)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	ops := []market.Operation{}
	for rows.Next() {
		var op market.Operation
		if err := rows.Scan(&op.Seq, &op.ID, &op.Op, &op.Item, &op.Caller, &op.Args, &op.At); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return ops, nil
}

// AppendSettlement records a distributed sale.
func (r *Records) AppendSettlement(ctx context.Context, s market.Settlement) error {
	payouts, err := marshalPayouts(s.Payouts)
	if err != nil {
		return fmt.Errorf("write settlement: %w", err)
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO settlements
		(id, operation_id, item, kind, gross, royalty_total, platform_fee, seller_net, payouts, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.OperationID, s.Item, string(s.Kind), i64(s.Gross), i64(s.RoyaltyTotal),
		i64(s.PlatformFee), i64(s.SellerNet), payouts, s.At)
	if err != nil {
		return fmt.Errorf("write settlement: %w", err)
	}
	return nil
}

// Settlements returns the settlements of an item in commit order.
// Returns an empty slice (not nil) if there are none.
func (r *Records) Settlements(ctx context.Context, item string) ([]market.Settlement, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT s.id, s.operation_id, s.item, s.kind, s.gross, s.royalty_total,
		       s.platform_fee, s.seller_net, s.payouts, s.at
		FROM settlements s
		JOIN operations o ON o.id = s.operation_id
		WHERE s.item = ?
		ORDER BY o.seq ASC, s.id COLLATE BINARY ASC
	`, item)
	if err != nil {
		return nil, fmt.Errorf("query settlements: %w", err)
	}
	defer rows.Close()

	settlements := []market.Settlement{}
	for rows.Next() {
		var (
			s                              market.Settlement
			kind, payouts                  string
			gross, royalty, fee, sellerNet int64
		)
		if err := rows.Scan(&s.ID, &s.OperationID, &s.Item, &kind, &gross, &royalty,
			&fee, &sellerNet, &payouts, &s.At); err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		s.Kind = market.SettlementKind(kind)
		s.Gross = u64(gross)
		s.RoyaltyTotal = u64(royalty)
		s.PlatformFee = u64(fee)
		s.SellerNet = u64(sellerNet)
		if s.Payouts, err = unmarshalPayouts(payouts); err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlements: %w", err)
	}
	return settlements, nil
}

// AppendEffects journals effects as pending, in order, and returns them
// with their assigned seqs.
func (r *Records) AppendEffects(ctx context.Context, effects []market.Effect) ([]market.Effect, error) {
	out := make([]market.Effect, 0, len(effects))
	for _, e := range effects {
		res, err := r.q.ExecContext(ctx, `
			INSERT INTO effects (operation_id, kind, item, from_party, to_party, amount, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, e.OperationID, string(e.Kind), e.Item, e.From, e.To, i64(e.Amount), string(market.EffectPending))
		if err != nil {
			return nil, fmt.Errorf("write effect: %w", err)
		}
		if e.Seq, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("write effect: %w", err)
		}
		e.Status = market.EffectPending
		out = append(out, e)
	}
	return out, nil
}

// PendingEffects returns up to limit pending effects in journal order.
// A limit of zero or less returns all of them.
func (r *Records) PendingEffects(ctx context.Context, limit int) ([]market.Effect, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.queryEffects(ctx, `
		WHERE status = ?
		ORDER BY seq ASC
		LIMIT ?
	`, string(market.EffectPending), limit)
}

// OperationEffects returns the effects of one operation in journal order.
func (r *Records) OperationEffects(ctx context.Context, operationID string) ([]market.Effect, error) {
	return r.queryEffects(ctx, `
		WHERE operation_id = ?
		ORDER BY seq ASC
	`, operationID)
}

func (r *Records) queryEffects(ctx context.Context, where string, args ...any) ([]market.Effect, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT seq, operation_id, kind, item, from_party, to_party, amount, status
		FROM effects
	`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query effects: %w", err)
	}
	defer rows.Close()

	effects := []market.Effect{}
	for rows.Next() {
		var (
			e            market.Effect
			kind, status string
			amount       int64
		)
		if err := rows.Scan(&e.Seq, &e.OperationID, &kind, &e.Item, &e.From, &e.To, &amount, &status); err != nil {
			return nil, fmt.Errorf("scan effect: %w", err)
		}
		e.Kind = market.EffectKind(kind)
		e.Status = market.EffectStatus(status)
		e.Amount = u64(amount)
		effects = append(effects, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate effects: %w", err)
	}
	return effects, nil
}

// MarkEffectApplied flags an effect as delivered.
func (r *Records) MarkEffectApplied(ctx context.Context, seq int64) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE effects SET status = ? WHERE seq = ? AND status = ?
	`, string(market.EffectApplied), seq, string(market.EffectPending))
	if err != nil {
		return fmt.Errorf("mark effect %d: %w", seq, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark effect %d: %w", seq, err)
	}
	if n != 1 {
		return fmt.Errorf("mark effect %d: not pending", seq)
	}
	return nil
}

// CountPendingEffects returns the number of undelivered effects.
func (r *Records) CountPendingEffects(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM effects WHERE status = ?
	`, string(market.EffectPending)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count effects: %w", err)
	}
	return n, nil
}
