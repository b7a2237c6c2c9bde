package engine

import (
	"context"
	"fmt"

	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/store"
)

// Receipt describes a committed operation.
type Receipt struct {
	OperationID string             `json:"operation_id"`
	Seq         int64              `json:"seq"`
	Op          string             `json:"op"`
	Item        string             `json:"item,omitempty"`
	At          int64              `json:"at"`
	Settlement  *market.Settlement `json:"settlement,omitempty"`
	Effects     []market.Effect    `json:"effects"`
	// Pending counts this operation's effects not yet delivered.
	Pending int `json:"pending"`
}

// call identifies one operation for the audit log.
type call struct {
	op     string
	item   string
	caller string
	args   map[string]any
}

// txn is the view of an operation inside its transaction.
type txn struct {
	ctx        context.Context
	rec        *store.Records
	now        int64
	opID       string
	vault      string
	effects    []market.Effect
	settlement *market.Settlement
}

// execute runs fn in one transaction and then delivers its effects.
func (e *Engine) execute(ctx context.Context, c call, fn func(*txn) error) (*Receipt, error) {
	args, err := market.MarshalCanonical(c.args)
	if err != nil {
		return nil, fmt.Errorf("%s: encode args: %w", c.op, err)
	}

	t := &txn{
		ctx:   ctx,
		now:   e.clock.Now(),
		opID:  e.ids.Generate(),
		vault: e.vault,
	}
	receipt := &Receipt{OperationID: t.opID, Op: c.op, Item: c.item, At: t.now}

	err = e.store.Update(ctx, func(rec *store.Records) error {
		t.rec = rec
		if err := fn(t); err != nil {
			return err
		}

		seq, err := rec.AppendOperation(ctx, market.Operation{
			ID:     t.opID,
			Op:     c.op,
			Item:   c.item,
			Caller: c.caller,
			Args:   string(args),
			At:     t.now,
		})
		if err != nil {
			return err
		}
		receipt.Seq = seq

		if t.settlement != nil {
			if err := rec.AppendSettlement(ctx, *t.settlement); err != nil {
				return err
			}
			receipt.Settlement = t.settlement
		}

		receipt.Effects, err = rec.AppendEffects(ctx, t.effects)
		return err
	})
	if err != nil {
		return nil, e.fail(c, err)
	}

	operationsTotal.WithLabelValues(c.op, "ok").Inc()
	if s := receipt.Settlement; s != nil {
		settledGross.WithLabelValues(string(s.Kind)).Add(float64(s.Gross))
	}
	e.logger.Debug("operation committed",
		"op", c.op,
		"item", c.item,
		"caller", c.caller,
		"operation_id", t.opID,
		"effects", len(receipt.Effects))

	applied, _ := e.drain(ctx)
	for i := range receipt.Effects {
		if applied[receipt.Effects[i].Seq] {
			receipt.Effects[i].Status = market.EffectApplied
		} else {
			receipt.Pending++
		}
	}
	return receipt, nil
}

// fail records a rejected or failed operation and wraps its error.
func (e *Engine) fail(c call, err error) error {
	outcome := "error"
	if me, ok := market.AsError(err); ok {
		outcome = string(me.Kind)
		e.logger.Info("operation rejected", "op", c.op, "item", c.item, "caller", c.caller, "code", me.Code)
	} else {
		e.logger.Error("operation failed", "op", c.op, "item", c.item, "caller", c.caller, "error", err)
	}
	operationsTotal.WithLabelValues(c.op, outcome).Inc()
	return fmt.Errorf("%s: %w", c.op, err)
}

// lock journals moving item from owner into custody.
func (t *txn) lock(item, owner string) {
	t.effects = append(t.effects, market.Effect{
		OperationID: t.opID, Kind: market.EffectLock, Item: item, From: owner, To: t.vault,
	})
}

// release journals moving item out of custody to newOwner.
func (t *txn) release(item, newOwner string) {
	t.effects = append(t.effects, market.Effect{
		OperationID: t.opID, Kind: market.EffectRelease, Item: item, From: t.vault, To: newOwner,
	})
}

// pay journals a vault payout. Zero amounts are not journaled.
func (t *txn) pay(to string, amount uint64) {
	if amount == 0 {
		return
	}
	t.effects = append(t.effects, market.Effect{
		OperationID: t.opID, Kind: market.EffectPayout, From: t.vault, To: to, Amount: amount,
	})
}

func (t *txn) registry() (market.Registry, error) {
	reg, ok, err := t.rec.Registry(t.ctx)
	if err != nil {
		return market.Registry{}, err
	}
	if !ok {
		return market.Registry{}, market.State(market.CodeNotInitialized, "registry not initialized")
	}
	return reg, nil
}

func (t *txn) user(owner string) (market.UserAccount, error) {
	u, ok, err := t.rec.User(t.ctx, owner)
	if err != nil {
		return market.UserAccount{}, err
	}
	if !ok {
		return market.UserAccount{}, market.State(market.CodeAccountNotFound, "no account for %q", owner)
	}
	return u, nil
}

// activeListing returns the listing of item, failing unless it is active.
func (t *txn) activeListing(item string) (market.Listing, error) {
	l, ok, err := t.rec.Listing(t.ctx, item)
	if err != nil {
		return market.Listing{}, err
	}
	if !ok || !l.Active {
		return market.Listing{}, market.State(market.CodeNotListed, "item %q is not listed", item)
	}
	return l, nil
}

func (t *txn) auction(item string) (market.Auction, error) {
	a, ok, err := t.rec.Auction(t.ctx, item)
	if err != nil {
		return market.Auction{}, err
	}
	if !ok {
		return market.Auction{}, market.State(market.CodeAuctionNotFound, "no auction for %q", item)
	}
	return a, nil
}

// cancelReservedAuction closes a reserved auction whose item just sold
// through its listing.
func (t *txn) cancelReservedAuction(item string) error {
	a, ok, err := t.rec.Auction(t.ctx, item)
	if err != nil || !ok || a.Status != market.AuctionReserved {
		return err
	}
	a.Status = market.AuctionCancelled
	return t.rec.PutAuction(t.ctx, a)
}

// addVolume increments both parties' traded volume, saturating at the max.
func (t *txn) addVolume(amount uint64, owners ...string) error {
	for _, owner := range owners {
		u, err := t.user(owner)
		if err != nil {
			return err
		}
		u.TradedVolume = saturatingAdd(u.TradedVolume, amount)
		if err := t.rec.PutUser(t.ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func saturatingAdd(a, b uint64) uint64 {
	if a+b < a {
		return ^uint64(0)
	}
	return a + b
}
