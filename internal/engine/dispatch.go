package engine

import (
	"context"
	"fmt"

	"github.com/roach88/bourse/internal/market"
)

// Resume applies pending journal effects in order and returns how many
// were delivered. It stops at the first failure, leaving that effect and
// every later one pending.
func (e *Engine) Resume(ctx context.Context) (int, error) {
	applied, err := e.drain(ctx)
	return len(applied), err
}

// PendingEffects returns undelivered effects in journal order.
func (e *Engine) PendingEffects(ctx context.Context) ([]market.Effect, error) {
	return e.store.Records().PendingEffects(ctx, 0)
}

func (e *Engine) drain(ctx context.Context) (map[int64]bool, error) {
	e.delivering.Lock()
	defer e.delivering.Unlock()

	applied := make(map[int64]bool)
	rec := e.store.Records()

	pending, err := rec.PendingEffects(ctx, 0)
	if err != nil {
		return applied, fmt.Errorf("drain effects: %w", err)
	}
	defer func() { pendingEffects.Set(float64(len(pending) - len(applied))) }()

	for _, eff := range pending {
		if err := e.apply(ctx, eff); err != nil {
			effectFailures.WithLabelValues(string(eff.Kind)).Inc()
			e.logger.Warn("effect left pending",
				"seq", eff.Seq,
				"kind", eff.Kind,
				"operation_id", eff.OperationID,
				"error", err)
			return applied, fmt.Errorf("apply effect %d: %w", eff.Seq, err)
		}
		// A crash between apply and mark re-delivers this effect on Resume.
		if err := rec.MarkEffectApplied(ctx, eff.Seq); err != nil {
			return applied, err
		}
		applied[eff.Seq] = true
	}
	return applied, nil
}

func (e *Engine) apply(ctx context.Context, eff market.Effect) error {
	switch eff.Kind {
	case market.EffectLock:
		return e.custody.Lock(ctx, eff.Item, eff.From)
	case market.EffectRelease:
		return e.custody.Release(ctx, eff.Item, eff.To)
	case market.EffectPayout:
		return e.rail.Transfer(ctx, eff.From, eff.To, eff.Amount)
	default:
		return fmt.Errorf("unknown effect kind %q", eff.Kind)
	}
}
