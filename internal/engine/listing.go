package engine

import (
	"context"

	"github.com/roach88/bourse/internal/market"
)

// custodyFacts is what the custody collaborator says about an item
// before an operation's transaction opens.
type custodyFacts struct {
	heldByOwner bool
	inVault     bool
}

func (e *Engine) custodyFacts(ctx context.Context, item, owner string) (custodyFacts, error) {
	var f custodyFacts
	var err error
	if f.heldByOwner, err = e.custody.AssertHeld(ctx, item, owner); err != nil {
		return f, err
	}
	if f.inVault, err = e.custody.AssertHeld(ctx, item, e.vault); err != nil {
		return f, err
	}
	return f, nil
}

// List offers item for sale at a fixed price.
//
// The item moves into custody unless a reserved auction by the same
// party already holds it there.
func (e *Engine) List(ctx context.Context, item, seller string, price uint64) (*Receipt, error) {
	c := call{op: "list", item: item, caller: seller, args: map[string]any{
		"item": item, "seller": seller, "price": price,
	}}
	if price == 0 {
		return nil, e.fail(c, market.Validation(market.CodeInvalidAmount, "price must be positive"))
	}
	info, err := e.royaltyInfo(ctx, item)
	if err != nil {
		return nil, e.fail(c, err)
	}
	facts, err := e.custodyFacts(ctx, item, seller)
	if err != nil {
		return nil, e.fail(c, err)
	}
	collection, _ := info.Collection()

	return e.execute(ctx, c, func(t *txn) error {
		if _, err := t.user(seller); err != nil {
			return err
		}
		prev, listed, err := t.rec.Listing(t.ctx, item)
		if err != nil {
			return err
		}
		if listed && prev.Active {
			return market.State(market.CodeAlreadyListed, "item %q is already listed", item)
		}

		a, hasAuction, err := t.rec.Auction(t.ctx, item)
		if err != nil {
			return err
		}
		switch {
		case hasAuction && a.Status == market.AuctionRunning:
			return market.State(market.CodeAuctionRunning, "item %q is under a running auction", item)
		case hasAuction && a.Status == market.AuctionReserved:
			if a.Creator != seller {
				return market.Authorization(market.CodeCreatorMismatch, "reserved auction of %q belongs to %q", item, a.Creator)
			}
			if !facts.inVault {
				return market.State(market.CodeItemNotInCustody, "item %q is not in custody", item)
			}
		default:
			if !facts.heldByOwner {
				return market.Authorization(market.CodeItemNotHeld, "%q does not hold %q", seller, item)
			}
			t.lock(item, seller)
		}

		// Each listing gets a fresh epoch so offers on a previous one expire.
		listedAt := t.now
		if listed && listedAt <= prev.ListedAt {
			listedAt = prev.ListedAt + 1
		}
		return t.rec.PutListing(t.ctx, market.Listing{
			Item:       item,
			Seller:     seller,
			Collection: collection,
			Price:      price,
			ListedAt:   listedAt,
			Active:     true,
		})
	})
}

// Delist withdraws an active listing. Custody returns to the seller
// unless a reserved auction still needs the item.
func (e *Engine) Delist(ctx context.Context, item, seller string) (*Receipt, error) {
	c := call{op: "delist", item: item, caller: seller, args: map[string]any{"item": item, "seller": seller}}
	return e.execute(ctx, c, func(t *txn) error {
		l, _, reserved, err := t.delistable(item, seller)
		if err != nil {
			return err
		}
		if !reserved {
			t.release(item, seller)
		}
		l.Active = false
		return t.rec.PutListing(t.ctx, l)
	})
}

// DelistTo withdraws an active listing and releases the item out of
// custody to receiver. A reserved auction on the item is cancelled.
func (e *Engine) DelistTo(ctx context.Context, item, seller, receiver string) (*Receipt, error) {
	c := call{op: "delist_to", item: item, caller: seller, args: map[string]any{
		"item": item, "seller": seller, "receiver": receiver,
	}}
	if receiver == "" {
		return nil, e.fail(c, market.Validation(market.CodeInvalidArgument, "receiver is empty"))
	}
	return e.execute(ctx, c, func(t *txn) error {
		l, a, reserved, err := t.delistable(item, seller)
		if err != nil {
			return err
		}
		if reserved {
			a.Status = market.AuctionCancelled
			if err := t.rec.PutAuction(t.ctx, a); err != nil {
				return err
			}
		}
		t.release(item, receiver)
		l.Active = false
		return t.rec.PutListing(t.ctx, l)
	})
}

// delistable loads the active listing of item for seller, and the item's
// auction when it is reserved. A reserved auction must belong to seller.
func (t *txn) delistable(item, seller string) (market.Listing, market.Auction, bool, error) {
	l, err := t.activeListing(item)
	if err != nil {
		return market.Listing{}, market.Auction{}, false, err
	}
	if l.Seller != seller {
		return market.Listing{}, market.Auction{}, false,
			market.Authorization(market.CodeSellerMismatch, "%q is not the seller of %q", seller, item)
	}
	a, ok, err := t.rec.Auction(t.ctx, item)
	if err != nil {
		return market.Listing{}, market.Auction{}, false, err
	}
	if !ok || a.Status != market.AuctionReserved {
		return l, market.Auction{}, false, nil
	}
	if a.Creator != seller {
		return market.Listing{}, market.Auction{}, false,
			market.Authorization(market.CodeCreatorMismatch, "reserved auction of %q belongs to %q", item, a.Creator)
	}
	return l, a, true, nil
}

// SetPrice changes the price of an active listing. The listing epoch is
// unchanged, so standing offers stay acceptable.
func (e *Engine) SetPrice(ctx context.Context, item, seller string, price uint64) (*Receipt, error) {
	c := call{op: "set_price", item: item, caller: seller, args: map[string]any{
		"item": item, "seller": seller, "price": price,
	}}
	if price == 0 {
		return nil, e.fail(c, market.Validation(market.CodeInvalidAmount, "price must be positive"))
	}
	return e.execute(ctx, c, func(t *txn) error {
		l, err := t.activeListing(item)
		if err != nil {
			return err
		}
		if l.Seller != seller {
			return market.Authorization(market.CodeSellerMismatch, "%q is not the seller of %q", seller, item)
		}
		l.Price = price
		return t.rec.PutListing(t.ctx, l)
	})
}

// Purchase buys a listed item at its listed price out of the buyer's
// escrow and distributes the proceeds.
func (e *Engine) Purchase(ctx context.Context, item, buyer string, payees []string) (*Receipt, error) {
	c := call{op: "purchase", item: item, caller: buyer, args: map[string]any{
		"item": item, "buyer": buyer, "payees": payeeArgs(payees),
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
		if l.Seller == buyer {
			return market.Validation(market.CodeSelfTrade, "%q cannot buy its own listing", buyer)
		}
		if _, err := t.user(l.Seller); err != nil {
			return err
		}
		b, err := t.user(buyer)
		if err != nil {
			return err
		}
		if err := debit(&b, l.Price); err != nil {
			return err
		}
		if err := t.distribute(market.SettlementPurchase, item, l.Seller, l.Price, info, payees); err != nil {
			return err
		}

		if err := t.rec.PutUser(t.ctx, b); err != nil {
			return err
		}
		l.Active = false
		if err := t.rec.PutListing(t.ctx, l); err != nil {
			return err
		}
		if err := t.cancelReservedAuction(item); err != nil {
			return err
		}
		if err := t.addVolume(l.Price, buyer, l.Seller); err != nil {
			return err
		}
		t.release(item, buyer)
		return nil
	})
}

// payeeArgs copies payees for the audit log; a nil slice encodes as [].
func payeeArgs(payees []string) []string {
	out := make([]string, len(payees))
	copy(out, payees)
	return out
}
