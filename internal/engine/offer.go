package engine

import (
	"context"

	"github.com/roach88/bourse/internal/market"
)

// MakeOffer places a standing offer below the listed price, holding the
// offered amount out of the buyer's escrow.
//
// The offer must be at least half the listed price and strictly below it.
func (e *Engine) MakeOffer(ctx context.Context, item, buyer string, price uint64) (*Receipt, error) {
	c := call{op: "make_offer", item: item, caller: buyer, args: map[string]any{
		"item": item, "buyer": buyer, "price": price,
	}}
	return e.execute(ctx, c, func(t *txn) error {
		l, err := t.activeListing(item)
		if err != nil {
			return err
		}
		if l.Seller == buyer {
			return market.Validation(market.CodeSelfTrade, "%q cannot offer on its own listing", buyer)
		}
		if price >= l.Price || price < l.Price/2 {
			return market.Validation(market.CodeInvalidOfferPrice,
				"offer %d outside [%d, %d)", price, l.Price/2, l.Price)
		}
		prev, ok, err := t.rec.Offer(t.ctx, item, buyer)
		if err != nil {
			return err
		}
		if ok && prev.Active {
			return market.State(market.CodeOfferExists, "%q already has an active offer on %q", buyer, item)
		}

		u, err := t.user(buyer)
		if err != nil {
			return err
		}
		if err := debit(&u, price); err != nil {
			return err
		}
		if err := t.rec.PutUser(t.ctx, u); err != nil {
			return err
		}
		return t.rec.PutOffer(t.ctx, market.Offer{
			Item:         item,
			Buyer:        buyer,
			Price:        price,
			ListingEpoch: l.ListedAt,
			Active:       true,
		})
	})
}

// CancelOffer withdraws an active offer and returns its hold to escrow.
// Offers on an expired listing epoch can still be cancelled.
func (e *Engine) CancelOffer(ctx context.Context, item, buyer string) (*Receipt, error) {
	c := call{op: "cancel_offer", item: item, caller: buyer, args: map[string]any{"item": item, "buyer": buyer}}
	return e.execute(ctx, c, func(t *txn) error {
		o, err := activeOffer(t, item, buyer)
		if err != nil {
			return err
		}
		u, err := t.user(buyer)
		if err != nil {
			return err
		}
		if err := credit(&u, o.Price); err != nil {
			return err
		}
		if err := t.rec.PutUser(t.ctx, u); err != nil {
			return err
		}
		o.Active = false
		return t.rec.PutOffer(t.ctx, o)
	})
}

// AcceptOffer sells item to buyer at the offered price.
//
// The offer must have been made against the current listing epoch; an
// offer on an earlier listing of the same item is rejected as expired.
func (e *Engine) AcceptOffer(ctx context.Context, item, seller, buyer string, payees []string) (*Receipt, error) {
	c := call{op: "accept_offer", item: item, caller: seller, args: map[string]any{
		"item": item, "seller": seller, "buyer": buyer, "payees": payeeArgs(payees),
	}}
	info, err := e.royaltyInfo(ctx, item)
	if err != nil {
		return nil, e.fail(c, err)
	}

	return e.execute(ctx, c, func(t *txn) error {
		l, err := t.activeListing(item)
		if err != nil {
			return err
		}
		if l.Seller != seller {
			return market.Authorization(market.CodeSellerMismatch, "%q is not the seller of %q", seller, item)
		}
		o, err := activeOffer(t, item, buyer)
		if err != nil {
			return err
		}
		if o.ListingEpoch != l.ListedAt {
			return market.State(market.CodeOfferExpired,
				"offer was made on listing epoch %d, current epoch is %d", o.ListingEpoch, l.ListedAt)
		}
		if _, err := t.user(seller); err != nil {
			return err
		}

		// The hold returns to escrow and is debited again as payment, so the
		// buyer is charged exactly once.
		b, err := t.user(buyer)
		if err != nil {
			return err
		}
		if err := credit(&b, o.Price); err != nil {
			return err
		}
		if err := debit(&b, o.Price); err != nil {
			return err
		}

		if err := t.distribute(market.SettlementOffer, item, seller, o.Price, info, payees); err != nil {
			return err
		}

		o.Active = false
		if err := t.rec.PutOffer(t.ctx, o); err != nil {
			return err
		}
		l.Active = false
		if err := t.rec.PutListing(t.ctx, l); err != nil {
			return err
		}
		if err := t.cancelReservedAuction(item); err != nil {
			return err
		}
		if err := t.addVolume(o.Price, buyer, seller); err != nil {
			return err
		}
		t.release(item, buyer)
		return nil
	})
}

func activeOffer(t *txn, item, buyer string) (market.Offer, error) {
	o, ok, err := t.rec.Offer(t.ctx, item, buyer)
	if err != nil {
		return market.Offer{}, err
	}
	if !ok || !o.Active {
		return market.Offer{}, market.State(market.CodeOfferInactive, "%q has no active offer on %q", buyer, item)
	}
	return o, nil
}
