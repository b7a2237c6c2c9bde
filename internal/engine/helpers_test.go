package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/testutil"
)

const (
	admin    = "admin"
	seller   = "alice"
	buyer    = "bob"
	creator  = "carol"
	rival    = "dave"
	treasury = "treasury-a"
	item     = "item-1"
)

// payees is the auxiliary payee order for item under newMarket.
var payees = []string{treasury, creator}

// royalty is 2.5% to a single verified creator.
func royalty() market.RoyaltyInfo {
	return market.RoyaltyInfo{
		BasisPoints: 250,
		Creators:    []market.Creator{{Address: creator, Verified: true, Share: 100}},
	}
}

// newMarket returns a market with a 5% fee to one treasury, a seller
// holding item, and two funded buyers.
func newMarket(t *testing.T) *testutil.Market {
	t.Helper()
	m := testutil.NewMarket(t)
	m.Seed(t, admin, 500, market.Treasury{Recipient: treasury, Rate: 10_000})
	m.Account(t, seller, 0)
	m.Account(t, buyer, 2_000_000)
	m.Account(t, rival, 2_000_000)
	m.Item(item, seller, royalty())
	return m
}

// requireCode asserts err is a rejected operation with the given code.
func requireCode(t *testing.T, err error, code market.Code) *market.Error {
	t.Helper()
	require.Error(t, err)
	me, ok := market.AsError(err)
	require.True(t, ok, "expected a market error, got %v", err)
	assert.Equal(t, code, me.Code, "error: %v", err)
	return me
}
