package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/settlement"
)

// royaltyInfo reads and validates an item's royalty policy.
func (e *Engine) royaltyInfo(ctx context.Context, item string) (market.RoyaltyInfo, error) {
	info, err := e.metadata.RoyaltyInfo(ctx, item)
	if errors.Is(err, market.ErrMissingCreators) || errors.Is(err, market.ErrUnknownItem) {
		return market.RoyaltyInfo{}, market.Validation(market.CodeCreatorParse, "creators of %q: %v", item, err)
	}
	if err != nil {
		return market.RoyaltyInfo{}, fmt.Errorf("royalty info for %s: %w", item, err)
	}
	if err := settlement.ValidateRoyalty(info); err != nil {
		return market.RoyaltyInfo{}, err
	}
	return info, nil
}

// distribute splits gross among seller, treasuries and creators, journals
// every payout, and records the settlement. The caller-supplied payees
// must match the registry and metadata exactly or nothing is paid.
func (t *txn) distribute(kind market.SettlementKind, item, seller string, gross uint64, info market.RoyaltyInfo, payees []string) error {
	reg, err := t.registry()
	if err != nil {
		return err
	}
	treasuries := reg.ActiveTreasuries()

	plan, err := settlement.Compute(settlement.Input{
		Gross:      gross,
		Seller:     seller,
		FeeRate:    reg.FeeRate,
		Treasuries: treasuries,
		Royalty:    info,
	})
	if err != nil {
		return err
	}
	if err := settlement.CheckPayees(treasuries, info.Creators, payees); err != nil {
		return err
	}

	for _, p := range plan.Payouts {
		t.pay(p.Recipient, p.Amount)
	}

	s := market.Settlement{
		OperationID:  t.opID,
		Item:         item,
		Kind:         kind,
		Gross:        plan.Gross,
		RoyaltyTotal: plan.RoyaltyTotal,
		PlatformFee:  plan.PlatformFee,
		SellerNet:    plan.SellerNet,
		Payouts:      plan.Payouts,
		At:           t.now,
	}
	if s.ID, err = market.SettlementID(s); err != nil {
		return err
	}
	t.settlement = &s
	return nil
}
