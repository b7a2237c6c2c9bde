package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
)

func TestResume_DeliversPendingPayouts(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)
	listItem(t, m, 1_000_000)

	railDown := errors.New("rail down")
	m.Rail.FailTransfersTo(seller, railDown)

	receipt, err := m.Engine.Purchase(ctx, item, buyer, payees)
	require.NoError(t, err, "the sale commits; delivery is retried later")
	assert.Equal(t, 4, receipt.Pending)
	assert.Equal(t, uint64(1_000_000), m.Escrow(t, buyer))
	assert.Equal(t, m.Engine.Vault(), m.Holder(item))

	pending, err := m.Engine.PendingEffects(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 4)
	assert.Equal(t, market.EffectPayout, pending[0].Kind)
	assert.Equal(t, seller, pending[0].To)
	assert.Equal(t, market.EffectRelease, pending[3].Kind)

	// Later operations queue behind the stuck effect.
	receipt, err = m.Engine.Withdraw(ctx, rival, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.Pending)

	n, err := m.Engine.Resume(ctx)
	assert.ErrorIs(t, err, railDown)
	assert.Equal(t, 0, n)

	m.Rail.FailTransfersTo(seller, nil)
	n, err = m.Engine.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, uint64(925_000), m.Rail.Balance(seller))
	assert.Equal(t, uint64(50_000), m.Rail.Balance(treasury))
	assert.Equal(t, uint64(25_000), m.Rail.Balance(creator))
	assert.Equal(t, uint64(1), m.Rail.Balance(rival))
	assert.Equal(t, buyer, m.Holder(item))

	pending, err = m.Engine.PendingEffects(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestResume_NothingPending(t *testing.T) {
	m := newMarket(t)

	n, err := m.Engine.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestResume_PartialDelivery(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)
	listItem(t, m, 1_000_000)

	m.Rail.FailTransfersTo(creator, errors.New("creator wallet frozen"))
	receipt, err := m.Engine.Purchase(ctx, item, buyer, payees)
	require.NoError(t, err)
	assert.Equal(t, 2, receipt.Pending, "seller and treasury were paid before the creator payout failed")

	assert.Equal(t, market.EffectApplied, receipt.Effects[0].Status)
	assert.Equal(t, market.EffectApplied, receipt.Effects[1].Status)
	assert.Equal(t, market.EffectPending, receipt.Effects[2].Status)
	assert.Equal(t, market.EffectPending, receipt.Effects[3].Status)

	m.Rail.FailTransfersTo(creator, nil)
	n, err := m.Engine.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint64(925_000), m.Rail.Balance(seller), "applied effects are not delivered twice")
}

// slowRail widens the window between reading the journal and marking an
// effect applied.
type slowRail struct {
	engine.PaymentRail
}

func (r slowRail) Transfer(ctx context.Context, from, to string, amount uint64) error {
	time.Sleep(20 * time.Millisecond)
	return r.PaymentRail.Transfer(ctx, from, to, amount)
}

func TestResume_ConcurrentDrainsDeliverOnce(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)
	e := engine.New(m.Store, engine.Collaborators{
		Custody:  m.Custody,
		Rail:     slowRail{m.Rail},
		Metadata: m.Metadata,
	}, engine.WithClock(m.Clock))

	m.Rail.FailTransfersTo(buyer, errors.New("rail down"))
	receipt, err := e.Withdraw(ctx, buyer, 100)
	require.NoError(t, err)
	require.Equal(t, 1, receipt.Pending)
	m.Rail.FailTransfersTo(buyer, nil)
	before := m.Rail.Balance(buyer)

	const drains = 4
	var wg sync.WaitGroup
	counts := make([]int, drains)
	errs := make([]error, drains)
	for i := 0; i < drains; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			counts[i], errs[i] = e.Resume(ctx)
		}(i)
	}
	wg.Wait()

	total := 0
	for i := range counts {
		require.NoError(t, errs[i])
		total += counts[i]
	}
	assert.Equal(t, 1, total, "exactly one drain delivers the payout")
	assert.Equal(t, before+100, m.Rail.Balance(buyer), "the vault pays a 100 withdrawal once")

	pending, err := e.PendingEffects(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
