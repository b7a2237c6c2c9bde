package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/testutil"
)

func TestList_LocksCustody(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)

	receipt, err := m.Engine.List(ctx, item, seller, 1_000_000)
	require.NoError(t, err)
	require.Len(t, receipt.Effects, 1)
	assert.Equal(t, market.EffectLock, receipt.Effects[0].Kind)
	assert.Equal(t, market.EffectApplied, receipt.Effects[0].Status)
	assert.Equal(t, m.Engine.Vault(), m.Holder(item))

	view, err := m.Engine.Item(ctx, item)
	require.NoError(t, err)
	require.NotNil(t, view.Listing)
	assert.Equal(t, market.Listing{
		Item:       item,
		Seller:     seller,
		Collection: creator,
		Price:      1_000_000,
		ListedAt:   testutil.DefaultStart,
		Active:     true,
	}, *view.Listing)
	assert.Nil(t, view.Auction)
	assert.Empty(t, view.Offers)
}

func TestList_Rejections(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)
	m.Item("item-orphan", "erin", royalty())
	m.Item("item-bare", seller, market.RoyaltyInfo{BasisPoints: 100})
	m.Item("item-greedy", seller, market.RoyaltyInfo{
		BasisPoints: 10_001,
		Creators:    []market.Creator{{Address: creator, Verified: true, Share: 100}},
	})

	_, err := m.Engine.List(ctx, item, seller, 0)
	requireCode(t, err, market.CodeInvalidAmount)

	_, err = m.Engine.List(ctx, item, buyer, 10)
	me := requireCode(t, err, market.CodeItemNotHeld)
	assert.Equal(t, market.KindAuthorization, me.Kind)

	_, err = m.Engine.List(ctx, "item-orphan", "erin", 10)
	requireCode(t, err, market.CodeAccountNotFound)

	_, err = m.Engine.List(ctx, "item-bare", seller, 10)
	requireCode(t, err, market.CodeCreatorParse)

	_, err = m.Engine.List(ctx, "item-unknown", seller, 10)
	requireCode(t, err, market.CodeCreatorParse)

	_, err = m.Engine.List(ctx, "item-greedy", seller, 10)
	requireCode(t, err, market.CodeInvalidRoyalty)

	_, err = m.Engine.List(ctx, item, seller, 10)
	require.NoError(t, err)
	_, err = m.Engine.List(ctx, item, seller, 10)
	requireCode(t, err, market.CodeAlreadyListed)
}

func TestDelist_ReturnsCustody(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)

	_, err := m.Engine.List(ctx, item, seller, 1_000_000)
	require.NoError(t, err)

	_, err = m.Engine.Delist(ctx, item, buyer)
	requireCode(t, err, market.CodeSellerMismatch)

	receipt, err := m.Engine.Delist(ctx, item, seller)
	require.NoError(t, err)
	require.Len(t, receipt.Effects, 1)
	assert.Equal(t, market.EffectRelease, receipt.Effects[0].Kind)
	assert.Equal(t, seller, m.Holder(item))

	listings, err := m.Engine.ActiveListings(ctx)
	require.NoError(t, err)
	assert.Empty(t, listings)

	_, err = m.Engine.Delist(ctx, item, seller)
	requireCode(t, err, market.CodeNotListed)
}

func TestDelistTo_ReleasesToReceiver(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)

	_, err := m.Engine.List(ctx, item, seller, 1_000_000)
	require.NoError(t, err)

	_, err = m.Engine.DelistTo(ctx, item, buyer, rival)
	requireCode(t, err, market.CodeSellerMismatch)
	_, err = m.Engine.DelistTo(ctx, item, seller, "")
	requireCode(t, err, market.CodeInvalidArgument)

	receipt, err := m.Engine.DelistTo(ctx, item, seller, rival)
	require.NoError(t, err)
	require.Len(t, receipt.Effects, 1)
	assert.Equal(t, market.EffectRelease, receipt.Effects[0].Kind)
	assert.Equal(t, rival, receipt.Effects[0].To)
	assert.Equal(t, rival, m.Holder(item))

	_, err = m.Engine.DelistTo(ctx, item, seller, rival)
	requireCode(t, err, market.CodeNotListed)
}

func TestRelist_NewEpoch(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)

	_, err := m.Engine.List(ctx, item, seller, 1_000_000)
	require.NoError(t, err)
	_, err = m.Engine.Delist(ctx, item, seller)
	require.NoError(t, err)
	_, err = m.Engine.List(ctx, item, seller, 900_000)
	require.NoError(t, err)

	view, err := m.Engine.Item(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, testutil.DefaultStart+1, view.Listing.ListedAt, "same-second relist still gets a fresh epoch")

	m.Clock.Advance(60)
	_, err = m.Engine.Delist(ctx, item, seller)
	require.NoError(t, err)
	_, err = m.Engine.List(ctx, item, seller, 900_000)
	require.NoError(t, err)

	view, err = m.Engine.Item(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, testutil.DefaultStart+60, view.Listing.ListedAt)
}

func TestSetPrice(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)

	_, err := m.Engine.SetPrice(ctx, item, seller, 10)
	requireCode(t, err, market.CodeNotListed)

	_, err = m.Engine.List(ctx, item, seller, 1_000_000)
	require.NoError(t, err)

	m.Clock.Advance(5)
	_, err = m.Engine.SetPrice(ctx, item, buyer, 10)
	requireCode(t, err, market.CodeSellerMismatch)
	_, err = m.Engine.SetPrice(ctx, item, seller, 0)
	requireCode(t, err, market.CodeInvalidAmount)

	_, err = m.Engine.SetPrice(ctx, item, seller, 700_000)
	require.NoError(t, err)

	view, err := m.Engine.Item(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, uint64(700_000), view.Listing.Price)
	assert.Equal(t, testutil.DefaultStart, view.Listing.ListedAt, "epoch unchanged")
}

func TestPurchase_ReferenceSettlement(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)

	_, err := m.Engine.List(ctx, item, seller, 1_000_000)
	require.NoError(t, err)

	receipt, err := m.Engine.Purchase(ctx, item, buyer, payees)
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.Pending)

	s := receipt.Settlement
	require.NotNil(t, s)
	assert.Equal(t, market.SettlementPurchase, s.Kind)
	assert.Equal(t, uint64(1_000_000), s.Gross)
	assert.Equal(t, uint64(25_000), s.RoyaltyTotal)
	assert.Equal(t, uint64(50_000), s.PlatformFee)
	assert.Equal(t, uint64(925_000), s.SellerNet)
	assert.Equal(t, []market.Payout{
		{Role: market.RoleSeller, Recipient: seller, Amount: 925_000},
		{Role: market.RoleTreasury, Recipient: treasury, Amount: 50_000},
		{Role: market.RoleCreator, Recipient: creator, Amount: 25_000},
	}, s.Payouts)
	assert.Len(t, s.ID, 64)
	assert.Equal(t, uint64(0), s.Dust())

	assert.Equal(t, uint64(925_000), m.Rail.Balance(seller))
	assert.Equal(t, uint64(50_000), m.Rail.Balance(treasury))
	assert.Equal(t, uint64(25_000), m.Rail.Balance(creator))
	assert.Equal(t, uint64(3_000_000), m.Rail.Balance(m.Engine.Vault()))
	assert.Equal(t, buyer, m.Holder(item))
	assert.Equal(t, uint64(1_000_000), m.Escrow(t, buyer))

	for _, owner := range []string{buyer, seller} {
		u, err := m.Engine.User(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000_000), u.TradedVolume, owner)
	}

	_, err = m.Engine.Purchase(ctx, item, rival, payees)
	requireCode(t, err, market.CodeNotListed)
	assert.Equal(t, uint64(2_000_000), m.Escrow(t, rival))
}

func TestPurchase_Rejections(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)
	m.Account(t, "erin", 10)

	_, err := m.Engine.List(ctx, item, seller, 1_000_000)
	require.NoError(t, err)

	tests := []struct {
		name   string
		buyer  string
		payees []string
		code   market.Code
		kind   market.Kind
	}{
		{"self trade", seller, payees, market.CodeSelfTrade, market.KindValidation},
		{"short escrow", "erin", payees, market.CodeInsufficientEscrow, market.KindInsufficientFunds},
		{"no account", "ghost", payees, market.CodeAccountNotFound, market.KindState},
		{"payees reordered", buyer, []string{creator, treasury}, market.CodePayeeMismatch, market.KindConsistency},
		{"payee missing", buyer, []string{treasury}, market.CodePayeeCountMismatch, market.KindConsistency},
		{"payees omitted", buyer, nil, market.CodePayeeCountMismatch, market.KindConsistency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Engine.Purchase(ctx, item, tt.buyer, tt.payees)
			me := requireCode(t, err, tt.code)
			assert.Equal(t, tt.kind, me.Kind)
		})
	}

	assert.Equal(t, m.Engine.Vault(), m.Holder(item))
	assert.Equal(t, uint64(0), m.Rail.Balance(seller))
	assert.Equal(t, uint64(0), m.Rail.Balance(treasury))
	assert.Equal(t, uint64(2_000_000), m.Escrow(t, buyer))
	assert.Equal(t, uint64(10), m.Escrow(t, "erin"))

	trace, err := m.Engine.Trace(ctx, item)
	require.NoError(t, err)
	require.Len(t, trace.Operations, 1, "rejections leave no audit record")
	assert.Equal(t, "list", trace.Operations[0].Op)
	assert.Empty(t, trace.Settlements)
}

func TestPurchase_NoTreasury(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMarket(t)
	m.Seed(t, admin, 500)
	m.Account(t, seller, 0)
	m.Account(t, buyer, 100)
	m.Item(item, seller, royalty())

	_, err := m.Engine.List(ctx, item, seller, 100)
	require.NoError(t, err)

	_, err = m.Engine.Purchase(ctx, item, buyer, []string{creator})
	requireCode(t, err, market.CodeNoTreasury)
}

func TestPurchase_FeeExceedsGross(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)
	m.Item("item-all-royalty", seller, market.RoyaltyInfo{
		BasisPoints: 10_000,
		Creators:    []market.Creator{{Address: creator, Verified: true, Share: 100}},
	})

	_, err := m.Engine.List(ctx, "item-all-royalty", seller, 1_000)
	require.NoError(t, err)

	_, err = m.Engine.Purchase(ctx, "item-all-royalty", buyer, payees)
	requireCode(t, err, market.CodeFeeExceedsGross)
}

func TestPurchase_UnverifiedCreatorsKeepDust(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMarket(t)
	m.Seed(t, admin, 333,
		market.Treasury{Recipient: "t-a", Rate: 3_333},
		market.Treasury{Recipient: "t-b", Rate: 3_333},
		market.Treasury{Recipient: "t-c", Rate: 3_334},
	)
	m.Account(t, seller, 0)
	m.Account(t, buyer, 1_000)
	m.Item(item, seller, market.RoyaltyInfo{
		BasisPoints: 777,
		Creators: []market.Creator{
			{Address: "c-1", Verified: true, Share: 33},
			{Address: "c-2", Verified: false, Share: 33},
			{Address: "c-3", Verified: true, Share: 34},
		},
	})

	_, err := m.Engine.List(ctx, item, seller, 997)
	require.NoError(t, err)
	receipt, err := m.Engine.Purchase(ctx, item, buyer, []string{"t-a", "t-b", "t-c", "c-1", "c-2", "c-3"})
	require.NoError(t, err)

	s := receipt.Settlement
	require.NotNil(t, s)
	assert.Equal(t, uint64(77), s.RoyaltyTotal)
	assert.Equal(t, uint64(33), s.PlatformFee)
	assert.Equal(t, uint64(887), s.SellerNet)
	assert.LessOrEqual(t, s.Paid(), s.Gross)
	assert.Equal(t, uint64(0), m.Rail.Balance("c-2"), "unverified creators are never paid")
	assert.Equal(t, s.Paid(), m.Rail.Balance(seller)+
		m.Rail.Balance("t-a")+m.Rail.Balance("t-b")+m.Rail.Balance("t-c")+
		m.Rail.Balance("c-1")+m.Rail.Balance("c-3"))
}

func TestList_CustodyFailureLeavesEffectPending(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)

	m.Custody.FailWith(assert.AnError)
	receipt, err := m.Engine.List(ctx, item, seller, 1_000_000)
	require.NoError(t, err, "the listing commits even when delivery fails")
	assert.Equal(t, 1, receipt.Pending)
	assert.Equal(t, market.EffectPending, receipt.Effects[0].Status)
	assert.Equal(t, seller, m.Holder(item))

	m.Custody.FailWith(nil)
	n, err := m.Engine.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, m.Engine.Vault(), m.Holder(item))
}
