package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/market"
)

func TestInitUser(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)

	_, err := m.Engine.InitUser(ctx, buyer)
	requireCode(t, err, market.CodeAccountExists)

	_, err = m.Engine.InitUser(ctx, "")
	requireCode(t, err, market.CodeInvalidArgument)

	_, err = m.Engine.InitUser(ctx, "erin")
	require.NoError(t, err)

	u, err := m.Engine.User(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, market.UserAccount{Owner: "erin"}, u)
}

func TestDeposit_MovesRailFunds(t *testing.T) {
	m := newMarket(t)

	assert.Equal(t, uint64(2_000_000), m.Escrow(t, buyer))
	assert.Equal(t, uint64(0), m.Rail.Balance(buyer))
	assert.Equal(t, uint64(4_000_000), m.Rail.Balance(m.Engine.Vault()))
}

func TestDeposit_Rejections(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)
	m.Account(t, "erin", 0)
	m.Rail.Fund("ghost", 100)

	_, err := m.Engine.Deposit(ctx, "erin", 0)
	requireCode(t, err, market.CodeInvalidAmount)

	_, err = m.Engine.Deposit(ctx, "erin", 10)
	me := requireCode(t, err, market.CodeInsufficientRail)
	assert.Equal(t, market.KindInsufficientFunds, me.Kind)

	_, err = m.Engine.Deposit(ctx, "ghost", 100)
	requireCode(t, err, market.CodeAccountNotFound)
	assert.Equal(t, uint64(100), m.Rail.Balance("ghost"), "rail untouched without an account")

	assert.Equal(t, uint64(0), m.Escrow(t, "erin"))
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)

	receipt, err := m.Engine.Withdraw(ctx, buyer, 500_000)
	require.NoError(t, err)
	require.Len(t, receipt.Effects, 1)
	assert.Equal(t, market.EffectPayout, receipt.Effects[0].Kind)
	assert.Equal(t, market.EffectApplied, receipt.Effects[0].Status)
	assert.Equal(t, 0, receipt.Pending)

	assert.Equal(t, uint64(1_500_000), m.Escrow(t, buyer))
	assert.Equal(t, uint64(500_000), m.Rail.Balance(buyer))

	_, err = m.Engine.Withdraw(ctx, buyer, 1_500_001)
	me := requireCode(t, err, market.CodeInsufficientEscrow)
	assert.Equal(t, market.KindInsufficientFunds, me.Kind)
	assert.Equal(t, uint64(1_500_000), m.Escrow(t, buyer))

	_, err = m.Engine.Withdraw(ctx, buyer, 0)
	requireCode(t, err, market.CodeInvalidAmount)

	_, err = m.Engine.Withdraw(ctx, "ghost", 1)
	requireCode(t, err, market.CodeAccountNotFound)
}
