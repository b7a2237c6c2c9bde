package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/memory"
	"github.com/roach88/bourse/internal/store"
)

// DefaultStart is the clock reading a new Market starts at.
const DefaultStart int64 = 1_000

// Market is an engine over a temp-dir store and in-memory collaborators.
//
// Operation ids are op-1, op-2, ... so receipts and traces are stable.
type Market struct {
	Engine   *engine.Engine
	Store    *store.Store
	Custody  *memory.Custody
	Rail     *memory.Rail
	Metadata *memory.Metadata
	Clock    *ManualClock
}

// NewMarket creates a Market. The store is closed when the test ends.
func NewMarket(t testing.TB, opts ...engine.Option) *Market {
	t.Helper()

	m, err := OpenMarket(filepath.Join(t.TempDir(), "test.db"), opts...)
	require.NoError(t, err, "open market")
	t.Cleanup(func() { m.Store.Close() })
	return m
}

// OpenMarket creates a Market over the store at path. Use ":memory:" for
// a throwaway store. The caller closes m.Store.
func OpenMarket(path string, opts ...engine.Option) (*Market, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}

	m := &Market{
		Store:    s,
		Custody:  memory.NewCustody(engine.DefaultVault),
		Rail:     memory.NewRail(),
		Metadata: memory.NewMetadata(),
		Clock:    NewManualClock(DefaultStart),
	}
	base := []engine.Option{
		engine.WithClock(m.Clock),
		engine.WithIDGenerator(engine.NewSequenceGenerator("op")),
	}
	m.Engine = engine.New(s, engine.Collaborators{
		Custody:  m.Custody,
		Rail:     m.Rail,
		Metadata: m.Metadata,
	}, append(base, opts...)...)
	return m, nil
}

// Seed initializes the registry with admin, sets the fee rate, and adds
// the treasuries in order.
func (m *Market) Seed(t testing.TB, admin string, feeRate uint64, treasuries ...market.Treasury) {
	t.Helper()
	ctx := context.Background()

	_, err := m.Engine.Initialize(ctx, admin)
	require.NoError(t, err, "initialize")
	_, err = m.Engine.SetFee(ctx, admin, feeRate)
	require.NoError(t, err, "set_fee")
	for _, tr := range treasuries {
		_, err = m.Engine.AddTreasury(ctx, admin, tr.Recipient, tr.Rate)
		require.NoError(t, err, "add_treasury %s", tr.Recipient)
	}
}

// Account creates owner's escrow account and deposits escrow into it.
func (m *Market) Account(t testing.TB, owner string, escrow uint64) {
	t.Helper()
	ctx := context.Background()

	_, err := m.Engine.InitUser(ctx, owner)
	require.NoError(t, err, "init_user %s", owner)
	if escrow == 0 {
		return
	}
	m.Rail.Fund(owner, escrow)
	_, err = m.Engine.Deposit(ctx, owner, escrow)
	require.NoError(t, err, "deposit %s", owner)
}

// Item mints item to holder and records its royalty policy.
func (m *Market) Item(item, holder string, info market.RoyaltyInfo) {
	m.Custody.Mint(item, holder)
	m.Metadata.Set(item, info)
}

// Escrow returns owner's escrow balance, failing the test if there is
// no account.
func (m *Market) Escrow(t testing.TB, owner string) uint64 {
	t.Helper()
	u, ok, err := m.Store.Records().User(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, ok, "no account for %s", owner)
	return u.EscrowBalance
}

// Holder returns who holds item in custody.
func (m *Market) Holder(item string) string {
	h, _ := m.Custody.Holder(item)
	return h
}
