package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/bourse/internal/market"
)

// Custody tracks which party holds each item.
type Custody struct {
	mu      sync.Mutex
	vault   string
	holders map[string]string
	fail    error
}

// NewCustody creates a Custody whose escrow account is vault.
func NewCustody(vault string) *Custody {
	return &Custody{vault: vault, holders: make(map[string]string)}
}

// Mint gives item to holder.
func (c *Custody) Mint(item, holder string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holders[item] = holder
}

// Holder returns the current holder of item.
func (c *Custody) Holder(item string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.holders[item]
	return h, ok
}

// FailWith makes every later Lock and Release return err. A nil err
// restores normal behavior.
func (c *Custody) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}

// Lock moves item from owner into the vault.
func (c *Custody) Lock(_ context.Context, item, owner string) error {
	return c.move(item, owner, c.vault)
}

// Release moves item from the vault to newOwner.
func (c *Custody) Release(_ context.Context, item, newOwner string) error {
	return c.move(item, c.vault, newOwner)
}

// AssertHeld reports whether owner holds item.
func (c *Custody) AssertHeld(_ context.Context, item, owner string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.holders[item] == owner, nil
}

func (c *Custody) move(item, from, to string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	if c.holders[item] != from {
		return fmt.Errorf("move %s from %s: %w", item, from, market.ErrNotHolder)
	}
	c.holders[item] = to
	return nil
}
