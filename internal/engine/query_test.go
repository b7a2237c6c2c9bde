package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/market"
)

func TestExpectedPayees(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)

	got, err := m.Engine.ExpectedPayees(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, payees, got)

	_, err = m.Engine.ExpectedPayees(ctx, "item-unknown")
	requireCode(t, err, market.CodeCreatorParse)
}

func TestTrace_RecordsOperationsAndSettlement(t *testing.T) {
	ctx := context.Background()
	m := newMarket(t)
	listItem(t, m, 1_000_000)
	m.Clock.Advance(10)

	receipt, err := m.Engine.Purchase(ctx, item, buyer, payees)
	require.NoError(t, err)

	trace, err := m.Engine.Trace(ctx, item)
	require.NoError(t, err)
	require.Len(t, trace.Operations, 2)

	list := trace.Operations[0]
	assert.Equal(t, "list", list.Op)
	assert.Equal(t, seller, list.Caller)
	assert.Equal(t, `{"item":"item-1","price":1000000,"seller":"alice"}`, list.Args)
	assert.Equal(t, int64(1_000), list.At)

	purchase := trace.Operations[1]
	assert.Equal(t, "purchase", purchase.Op)
	assert.Equal(t, receipt.OperationID, purchase.ID)
	assert.Equal(t, `{"buyer":"bob","item":"item-1","payees":["treasury-a","carol"]}`, purchase.Args)
	assert.Greater(t, purchase.Seq, list.Seq)

	require.Len(t, trace.Settlements, 1)
	s := trace.Settlements[0]
	assert.Equal(t, receipt.Settlement.ID, s.ID)
	assert.Equal(t, receipt.OperationID, s.OperationID)
	assert.Equal(t, int64(1_010), s.At)

	id, err := market.SettlementID(s)
	require.NoError(t, err)
	assert.Equal(t, s.ID, id, "settlement ids are content addressed")
}

func TestUser_NotFound(t *testing.T) {
	m := newMarket(t)
	_, err := m.Engine.User(context.Background(), "ghost")
	requireCode(t, err, market.CodeAccountNotFound)
}
