package engine

import (
	"context"

	"github.com/roach88/bourse/internal/market"
)

// Custody holds items on behalf of the marketplace while they are listed
// or auctioned.
type Custody interface {
	// Lock moves item from owner into marketplace custody.
	Lock(ctx context.Context, item, owner string) error
	// Release moves item out of custody to newOwner.
	Release(ctx context.Context, item, newOwner string) error
	// AssertHeld reports whether owner currently holds item.
	AssertHeld(ctx context.Context, item, owner string) (bool, error)
}

// PaymentRail moves funds between accounts. A transfer the source cannot
// cover fails with an error wrapping market.ErrInsufficientFunds.
type PaymentRail interface {
	Transfer(ctx context.Context, from, to string, amount uint64) error
}

// MetadataRegistry supplies royalty policy per item. Adapters wrap
// market.ErrUnknownItem and market.ErrMissingCreators.
type MetadataRegistry interface {
	RoyaltyInfo(ctx context.Context, item string) (market.RoyaltyInfo, error)
}

// Collaborators bundles the external systems the engine drives.
type Collaborators struct {
	Custody  Custody
	Rail     PaymentRail
	Metadata MetadataRegistry
}
