package local

import (
	"context"

	"github.com/roach88/bourse/internal/store"
)

// Custody records item holders in the store's custody table.
type Custody struct {
	store *store.Store
	vault string
}

// NewCustody creates a Custody whose escrow account is vault.
func NewCustody(s *store.Store, vault string) *Custody {
	return &Custody{store: s, vault: vault}
}

// Mint records holder as the owner of item, replacing any previous holder.
func (c *Custody) Mint(ctx context.Context, item, holder string) error {
	return c.store.Update(ctx, func(r *store.Records) error {
		return r.SetCustodyHolder(ctx, item, holder)
	})
}

// Holder returns the party holding item.
func (c *Custody) Holder(ctx context.Context, item string) (string, bool, error) {
	return c.store.Records().CustodyHolder(ctx, item)
}

// Lock moves item from owner into the vault.
func (c *Custody) Lock(ctx context.Context, item, owner string) error {
	return c.store.Update(ctx, func(r *store.Records) error {
		return r.MoveCustody(ctx, item, owner, c.vault)
	})
}

// Release moves item from the vault to newOwner.
func (c *Custody) Release(ctx context.Context, item, newOwner string) error {
	return c.store.Update(ctx, func(r *store.Records) error {
		return r.MoveCustody(ctx, item, c.vault, newOwner)
	})
}

// AssertHeld reports whether owner holds item. Unknown items are held by
// nobody.
func (c *Custody) AssertHeld(ctx context.Context, item, owner string) (bool, error) {
	holder, ok, err := c.Holder(ctx, item)
	if err != nil {
		return false, err
	}
	return ok && holder == owner, nil
}
