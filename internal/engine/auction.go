package engine

import (
	"context"

	"github.com/roach88/bourse/internal/market"
)

// AuctionParams describes a new auction.
type AuctionParams struct {
	Item         string `json:"item"`
	Creator      string `json:"creator"`
	StartPrice   uint64 `json:"start_price"`
	MinIncrement uint64 `json:"min_increment"`
	Duration     int64  `json:"duration"`
	// Reserved auctions wait for their first bid before the clock starts,
	// and may coexist with the creator's fixed-price listing.
	Reserved bool `json:"reserved"`
}

func (p AuctionParams) validate() error {
	switch {
	case p.MinIncrement == 0:
		return market.Validation(market.CodeInvalidAuction, "min increment must be positive")
	case p.StartPrice < p.MinIncrement:
		return market.Validation(market.CodeInvalidAuction, "start price %d below min increment %d", p.StartPrice, p.MinIncrement)
	case p.Duration <= 0:
		return market.Validation(market.CodeInvalidAuction, "duration must be positive")
	case p.Duration > market.MaxAuctionDuration:
		return market.Validation(market.CodeInvalidAuction, "duration %d above %d seconds", p.Duration, market.MaxAuctionDuration)
	}
	return nil
}

// CreateAuction opens an auction on an item.
func (e *Engine) CreateAuction(ctx context.Context, p AuctionParams) (*Receipt, error) {
	c := call{op: "create_auction", item: p.Item, caller: p.Creator, args: map[string]any{
		"item":          p.Item,
		"creator":       p.Creator,
		"start_price":   p.StartPrice,
		"min_increment": p.MinIncrement,
		"duration":      p.Duration,
		"reserved":      p.Reserved,
	}}
	if err := p.validate(); err != nil {
		return nil, e.fail(c, err)
	}
	facts, err := e.custodyFacts(ctx, p.Item, p.Creator)
	if err != nil {
		return nil, e.fail(c, err)
	}

	return e.execute(ctx, c, func(t *txn) error {
		if _, err := t.user(p.Creator); err != nil {
			return err
		}
		prev, ok, err := t.rec.Auction(t.ctx, p.Item)
		if err != nil {
			return err
		}
		if ok && prev.Status.Open() {
			return market.State(market.CodeAuctionActive, "item %q already has a %s auction", p.Item, prev.Status)
		}

		l, listed, err := t.rec.Listing(t.ctx, p.Item)
		if err != nil {
			return err
		}
		switch {
		case listed && l.Active && !p.Reserved:
			return market.State(market.CodeAlreadyListed, "item %q is listed; only a reserved auction may coexist", p.Item)
		case listed && l.Active:
			if l.Seller != p.Creator {
				return market.Authorization(market.CodeSellerMismatch, "item %q is listed by %q", p.Item, l.Seller)
			}
			// The listing already holds the item in custody.
		default:
			if !facts.heldByOwner {
				return market.Authorization(market.CodeItemNotHeld, "%q does not hold %q", p.Creator, p.Item)
			}
			t.lock(p.Item, p.Creator)
		}

		status := market.AuctionRunning
		if p.Reserved {
			status = market.AuctionReserved
		}
		return t.rec.PutAuction(t.ctx, market.Auction{
			Item:         p.Item,
			Creator:      p.Creator,
			StartPrice:   p.StartPrice,
			MinIncrement: p.MinIncrement,
			StartAt:      t.now,
			HighestBid:   p.StartPrice - p.MinIncrement,
			Duration:     p.Duration,
			Status:       status,
		})
	})
}

// PlaceBid raises the highest bid. The bid is held out of the bidder's
// escrow and the outbid bidder is refunded exactly their bid.
//
// expectedOutbidder must name the current highest bidder (empty if none);
// a mismatch means another bid landed first.
//
// The first bid on a reserved auction starts it: the clock begins now
// and any concurrent listing is withdrawn.
func (e *Engine) PlaceBid(ctx context.Context, item, bidder, expectedOutbidder string, price uint64) (*Receipt, error) {
	c := call{op: "place_bid", item: item, caller: bidder, args: map[string]any{
		"item": item, "bidder": bidder, "expected_outbidder": expectedOutbidder, "price": price,
	}}
	return e.execute(ctx, c, func(t *txn) error {
		a, err := t.auction(item)
		if err != nil {
			return err
		}
		if !a.Status.Open() {
			return market.State(market.CodeAuctionNotRunning, "auction of %q is %s", item, a.Status)
		}
		if a.Status == market.AuctionRunning && t.now >= a.EndAt() {
			return market.State(market.CodeAuctionEnded, "auction of %q ended at %d", item, a.EndAt())
		}
		if price < a.HighestBid || price-a.HighestBid < a.MinIncrement {
			return market.Validation(market.CodeInvalidBidPrice,
				"bid %d below highest %d plus increment %d", price, a.HighestBid, a.MinIncrement)
		}
		if expectedOutbidder != a.LastBidder {
			return market.Consistency(market.CodeOutbidderMismatch,
				"expected outbidder %q, highest bidder is %q", expectedOutbidder, a.LastBidder)
		}
		if bidder == a.LastBidder {
			return market.State(market.CodeDoubleBid, "%q already holds the highest bid", bidder)
		}
		if bidder == a.Creator {
			return market.Authorization(market.CodeBidFromCreator, "creator cannot bid on own auction")
		}

		u, err := t.user(bidder)
		if err != nil {
			return err
		}
		if err := debit(&u, price); err != nil {
			return err
		}
		if a.HasBid() {
			prev, err := t.user(a.LastBidder)
			if err != nil {
				return err
			}
			if err := credit(&prev, a.HighestBid); err != nil {
				return err
			}
			if err := t.rec.PutUser(t.ctx, prev); err != nil {
				return err
			}
		}
		if err := t.rec.PutUser(t.ctx, u); err != nil {
			return err
		}

		if a.Status == market.AuctionReserved {
			a.Status = market.AuctionRunning
			a.StartAt = t.now
			l, listed, err := t.rec.Listing(t.ctx, item)
			if err != nil {
				return err
			}
			if listed && l.Active {
				l.Active = false
				if err := t.rec.PutListing(t.ctx, l); err != nil {
					return err
				}
			}
		}
		a.LastBidder = bidder
		a.HighestBid = price
		a.LastBidAt = t.now
		return t.rec.PutAuction(t.ctx, a)
	})
}

// UpdateReserve changes the start price of a reserved auction that has
// no bids yet.
func (e *Engine) UpdateReserve(ctx context.Context, item, creator string, price uint64) (*Receipt, error) {
	c := call{op: "update_reserve", item: item, caller: creator, args: map[string]any{
		"item": item, "creator": creator, "price": price,
	}}
	return e.execute(ctx, c, func(t *txn) error {
		a, err := t.auction(item)
		if err != nil {
			return err
		}
		if a.Creator != creator {
			return market.Authorization(market.CodeCreatorMismatch, "%q is not the creator of the auction", creator)
		}
		if a.Status != market.AuctionReserved {
			return market.State(market.CodeNotReserved, "auction of %q is %s", item, a.Status)
		}
		if a.HasBid() {
			return market.State(market.CodeAuctionHasBid, "auction of %q already has a bid", item)
		}
		if price < a.MinIncrement {
			return market.Validation(market.CodeInvalidAuction, "start price %d below min increment %d", price, a.MinIncrement)
		}
		a.StartPrice = price
		a.HighestBid = price - a.MinIncrement
		return t.rec.PutAuction(t.ctx, a)
	})
}

// CancelAuction closes an auction that ended without bids. Custody
// returns to the creator unless a listing still holds the item.
func (e *Engine) CancelAuction(ctx context.Context, item, creator string) (*Receipt, error) {
	c := call{op: "cancel_auction", item: item, caller: creator, args: map[string]any{"item": item, "creator": creator}}
	return e.execute(ctx, c, func(t *txn) error {
		a, err := t.auction(item)
		if err != nil {
			return err
		}
		if !a.Status.Open() {
			return market.State(market.CodeAuctionNotRunning, "auction of %q is %s", item, a.Status)
		}
		if t.now < a.EndAt() {
			return market.State(market.CodeAuctionNotEnded, "auction of %q ends at %d", item, a.EndAt())
		}
		if a.HasBid() {
			return market.State(market.CodeAuctionHasBid, "auction of %q has a bid", item)
		}
		if a.Creator != creator {
			return market.Authorization(market.CodeCreatorMismatch, "%q is not the creator of the auction", creator)
		}

		l, listed, err := t.rec.Listing(t.ctx, item)
		if err != nil {
			return err
		}
		if !listed || !l.Active {
			t.release(item, creator)
		}
		a.Status = market.AuctionCancelled
		return t.rec.PutAuction(t.ctx, a)
	})
}

// ClaimAuction settles an ended auction: the highest bid is distributed
// with the creator as seller and the item goes to the winning bidder.
func (e *Engine) ClaimAuction(ctx context.Context, item, creator, bidder string, payees []string) (*Receipt, error) {
	c := call{op: "claim_auction", item: item, caller: bidder, args: map[string]any{
		"item": item, "creator": creator, "bidder": bidder, "payees": payeeArgs(payees),
	}}
	info, err := e.royaltyInfo(ctx, item)
	if err != nil {
		return nil, e.fail(c, err)
	}

	return e.execute(ctx, c, func(t *txn) error {
		a, err := t.auction(item)
		if err != nil {
			return err
		}
		if a.Status != market.AuctionRunning {
			return market.State(market.CodeAuctionNotRunning, "auction of %q is %s", item, a.Status)
		}
		if t.now < a.EndAt() {
			return market.State(market.CodeAuctionNotEnded, "auction of %q ends at %d", item, a.EndAt())
		}
		if a.Creator != creator {
			return market.Authorization(market.CodeCreatorMismatch, "%q is not the creator of the auction", creator)
		}
		if !a.HasBid() {
			return market.State(market.CodeNoBid, "auction of %q has no bid", item)
		}
		if a.LastBidder != bidder {
			return market.Authorization(market.CodeBidderMismatch, "%q is not the winning bidder", bidder)
		}

		if err := t.distribute(market.SettlementAuction, item, creator, a.HighestBid, info, payees); err != nil {
			return err
		}
		a.Status = market.AuctionClaimed
		if err := t.rec.PutAuction(t.ctx, a); err != nil {
			return err
		}
		if err := t.addVolume(a.HighestBid, bidder, creator); err != nil {
			return err
		}
		t.release(item, bidder)
		return nil
	})
}
