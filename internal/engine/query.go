package engine

import (
	"context"

	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/settlement"
)

// ItemView is everything the marketplace records about one item.
type ItemView struct {
	Item    string          `json:"item"`
	Listing *market.Listing `json:"listing,omitempty"`
	Auction *market.Auction `json:"auction,omitempty"`
	Offers  []market.Offer  `json:"offers"`
}

// Trace is the audit history of one item.
type Trace struct {
	Item        string              `json:"item"`
	Operations  []market.Operation  `json:"operations"`
	Settlements []market.Settlement `json:"settlements"`
}

// Registry returns the marketplace registry.
func (e *Engine) Registry(ctx context.Context) (market.Registry, error) {
	reg, ok, err := e.store.Records().Registry(ctx)
	if err != nil {
		return market.Registry{}, err
	}
	if !ok {
		return market.Registry{}, market.State(market.CodeNotInitialized, "registry not initialized")
	}
	return reg, nil
}

// User returns a user account.
func (e *Engine) User(ctx context.Context, owner string) (market.UserAccount, error) {
	u, ok, err := e.store.Records().User(ctx, owner)
	if err != nil {
		return market.UserAccount{}, err
	}
	if !ok {
		return market.UserAccount{}, market.State(market.CodeAccountNotFound, "no account for %q", owner)
	}
	return u, nil
}

// Item returns the listing, auction and active offers of an item.
func (e *Engine) Item(ctx context.Context, item string) (ItemView, error) {
	rec := e.store.Records()
	view := ItemView{Item: item}

	l, ok, err := rec.Listing(ctx, item)
	if err != nil {
		return ItemView{}, err
	}
	if ok {
		view.Listing = &l
	}
	a, ok, err := rec.Auction(ctx, item)
	if err != nil {
		return ItemView{}, err
	}
	if ok {
		view.Auction = &a
	}
	if view.Offers, err = rec.ActiveOffers(ctx, item); err != nil {
		return ItemView{}, err
	}
	return view, nil
}

// ActiveListings returns every active listing ordered by item.
func (e *Engine) ActiveListings(ctx context.Context) ([]market.Listing, error) {
	return e.store.Records().ActiveListings(ctx)
}

// Auctions returns auctions in the given status ordered by item.
func (e *Engine) Auctions(ctx context.Context, status market.AuctionStatus) ([]market.Auction, error) {
	return e.store.Records().AuctionsByStatus(ctx, status)
}

// ExpectedPayees returns the auxiliary payees a settlement of item
// requires right now: treasuries in slot order, then creators.
func (e *Engine) ExpectedPayees(ctx context.Context, item string) ([]string, error) {
	reg, err := e.Registry(ctx)
	if err != nil {
		return nil, err
	}
	info, err := e.royaltyInfo(ctx, item)
	if err != nil {
		return nil, err
	}
	return settlement.ExpectedPayees(reg.ActiveTreasuries(), info.Creators), nil
}

// Trace returns the operation log and settlements of an item.
func (e *Engine) Trace(ctx context.Context, item string) (Trace, error) {
	rec := e.store.Records()
	ops, err := rec.Operations(ctx, item)
	if err != nil {
		return Trace{}, err
	}
	settlements, err := rec.Settlements(ctx, item)
	if err != nil {
		return Trace{}, err
	}
	return Trace{Item: item, Operations: ops, Settlements: settlements}, nil
}
