package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
)

const purchaseArgs = `{"item":"item-1","buyer":"bob","payees":["treasury-a","carol"]}`

// decodeData unmarshals the data of an "ok" JSON response into v.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "--format", "json", "init")
	var reg map[string]any
	decodeData(t, out, &reg)
	assert.Equal(t, "admin", reg["admin"])
	assert.EqualValues(t, 500, reg["fee_rate"])
	assert.Equal(t, []any{map[string]any{"recipient": "treasury-a", "rate": float64(10000)}}, reg["treasuries"])

	out, err := env.run(t, "init")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [ALREADY_INITIALIZED]")

	out = env.mustRun(t, "show", "registry")
	assert.Contains(t, out, "admin admin, fee rate 500/10000")
	assert.Contains(t, out, "treasury[0] treasury-a rate 10000")
}

func TestDatabaseFlagOverridesConfig(t *testing.T) {
	env := newTestEnv(t)
	other := filepath.Join(t.TempDir(), "other.db")

	env.mustRun(t, "--db", other, "init")

	_, err := os.Stat(other)
	require.NoError(t, err)
	_, err = os.Stat(env.db)
	assert.True(t, os.IsNotExist(err), "config database should be untouched")
}

func TestInvoke_Purchase(t *testing.T) {
	env := newTestEnv(t)
	env.seedSale(t)

	out := env.mustRun(t, "--format", "json", "invoke", "purchase", "--args", purchaseArgs)
	var receipt engine.Receipt
	decodeData(t, out, &receipt)

	assert.Equal(t, "purchase", receipt.Op)
	assert.Equal(t, "item-1", receipt.Item)
	assert.Zero(t, receipt.Pending)
	require.NotNil(t, receipt.Settlement)
	s := receipt.Settlement
	assert.Equal(t, market.SettlementPurchase, s.Kind)
	assert.Equal(t, uint64(1000000), s.Gross)
	assert.Equal(t, uint64(25000), s.RoyaltyTotal)
	assert.Equal(t, uint64(50000), s.PlatformFee)
	assert.Equal(t, uint64(925000), s.SellerNet)
	assert.Equal(t, []market.Payout{
		{Role: market.RoleSeller, Recipient: "alice", Amount: 925000},
		{Role: market.RoleTreasury, Recipient: "treasury-a", Amount: 50000},
		{Role: market.RoleCreator, Recipient: "carol", Amount: 25000},
	}, s.Payouts)

	out = env.mustRun(t, "--format", "json", "show", "user", "bob")
	var bob market.UserAccount
	decodeData(t, out, &bob)
	assert.Equal(t, uint64(1000000), bob.EscrowBalance)

	out = env.mustRun(t, "show", "listings")
	assert.Equal(t, "no active listings\n", out)
}

func TestInvoke_TextReceipt(t *testing.T) {
	env := newTestEnv(t)
	env.seedSale(t)

	out := env.mustRun(t, "invoke", "purchase", "--args", purchaseArgs)
	assert.Contains(t, out, "purchase committed as ")
	assert.Contains(t, out, "settlement purchase: gross 1000000, royalty 25000, platform fee 50000, seller net 925000")
	assert.Contains(t, out, "0 pending")
	assert.NotContains(t, out, "bourse resume")
}

func TestInvoke_Rejections(t *testing.T) {
	env := newTestEnv(t)
	env.seedSale(t)

	tests := []struct {
		name string
		op   string
		args string
		code string
	}{
		{"payee count", "purchase", `{"item":"item-1","buyer":"bob","payees":["carol"]}`, "PAYEE_COUNT_MISMATCH"},
		{"payee order", "purchase", `{"item":"item-1","buyer":"bob","payees":["carol","treasury-a"]}`, "PAYEE_MISMATCH"},
		{"self trade", "purchase", `{"item":"item-1","buyer":"alice","payees":["treasury-a","carol"]}`, "SELF_TRADE"},
		{"wrong seller", "delist", `{"item":"item-1","seller":"bob"}`, "SELLER_MISMATCH"},
		{"string amount", "deposit", `{"owner":"bob","amount":"lots"}`, "INVALID_ARGUMENT"},
		{"unknown op", "mint", `{}`, "UNKNOWN_OPERATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, "invoke", tt.op, "--args", tt.args)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}

	// Nothing above changed the listing.
	out := env.mustRun(t, "show", "listings")
	assert.Contains(t, out, "item-1 listed by alice at 1000000 (active")
}

func TestInvoke_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "invoke", "list", "--args", "{not json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid --args JSON")
}

func TestInvoke_MissingOperation(t *testing.T) {
	_, err := runCLI(t, "invoke")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestPayees(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "init")

	out := env.mustRun(t, "payees", "item-1")
	assert.Equal(t, "treasury-a\ncarol\n", out)

	out = env.mustRun(t, "--format", "json", "payees", "item-1")
	var payees []string
	decodeData(t, out, &payees)
	assert.Equal(t, []string{"treasury-a", "carol"}, payees)

	out, err := env.run(t, "payees", "item-unknown")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [")
}

func TestTrace(t *testing.T) {
	env := newTestEnv(t)
	env.seedSale(t)
	env.mustRun(t, "invoke", "purchase", "--args", purchaseArgs)

	out := env.mustRun(t, "--format", "json", "trace", "item-1")
	var result TraceResult
	decodeData(t, out, &result)
	assert.Equal(t, "item-1", result.Item)
	require.Len(t, result.Operations, 2)
	assert.Equal(t, "list", result.Operations[0].Op)
	assert.Equal(t, "purchase", result.Operations[1].Op)
	assert.Equal(t, TraceStats{Operations: 2, Settlements: 1, Gross: 1000000, Royalties: 25000, Fees: 50000}, result.Stats)

	out = env.mustRun(t, "--format", "json", "trace", "item-1", "--op", "list")
	decodeData(t, out, &result)
	assert.Equal(t, TraceStats{Operations: 1}, result.Stats)

	out = env.mustRun(t, "trace", "item-1")
	assert.Contains(t, out, "Trace for item-1")
	assert.Contains(t, out, "purchase by bob")
	assert.Contains(t, out, "treasury-a")
	assert.Contains(t, out, "2 operations, 1 settlements, gross 1000000")

	out = env.mustRun(t, "trace", "item-2")
	assert.Equal(t, "no operations recorded for item-2\n", out)
}

func TestBuildTraceResult_FilterKeepsMatchingSettlements(t *testing.T) {
	tr := engine.Trace{
		Item: "item-1",
		Operations: []market.Operation{
			{Seq: 1, ID: "op-1", Op: "list"},
			{Seq: 2, ID: "op-2", Op: "accept_offer"},
			{Seq: 3, ID: "op-3", Op: "purchase"},
		},
		Settlements: []market.Settlement{
			{OperationID: "op-2", Gross: 700, PlatformFee: 35},
			{OperationID: "op-3", Gross: 900, RoyaltyTotal: 9},
		},
	}

	r := buildTraceResult(tr, "purchase")
	require.Len(t, r.Operations, 1)
	require.Len(t, r.Settlements, 1)
	assert.Equal(t, "op-3", r.Settlements[0].OperationID)
	assert.Equal(t, TraceStats{Operations: 1, Settlements: 1, Gross: 900, Royalties: 9}, r.Stats)

	r = buildTraceResult(tr, "")
	assert.Equal(t, TraceStats{Operations: 3, Settlements: 2, Gross: 1600, Royalties: 9, Fees: 35}, r.Stats)
}

func TestShow(t *testing.T) {
	env := newTestEnv(t)
	env.seedSale(t)

	out := env.mustRun(t, "show", "item", "item-1")
	assert.True(t, strings.HasPrefix(out, "item-1\n"), out)
	assert.Contains(t, out, "listing: item-1 listed by alice at 1000000 (active")

	out = env.mustRun(t, "show", "item", "item-9")
	assert.Contains(t, out, "no marketplace records")

	out = env.mustRun(t, "show", "user", "bob")
	assert.Equal(t, "bob: escrow 2000000, traded volume 0\n", out)

	out, err := env.run(t, "show", "user", "nobody")
	require.Error(t, err)
	assert.Contains(t, out, "Error [ACCOUNT_NOT_FOUND]")

	out = env.mustRun(t, "show", "auctions")
	assert.Equal(t, "no running auctions\n", out)

	out = env.mustRun(t, "--format", "json", "show", "auctions", "--status", "claimed")
	var auctions []market.Auction
	decodeData(t, out, &auctions)
	assert.Empty(t, auctions)

	_, err = env.run(t, "show", "auctions", "--status", "bogus")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestShow_Auction(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "init")
	env.mustRun(t, "mint", "item-1", "alice")
	env.mustRun(t, "invoke", "init_user", "--args", `{"owner":"alice"}`)
	env.mustRun(t, "invoke", "create_auction", "--args",
		`{"item":"item-1","creator":"alice","start_price":1000,"min_increment":100,"duration":3600}`)

	out := env.mustRun(t, "show", "auctions")
	assert.Contains(t, out, "item-1 auction by alice, running, start 1000, increment 100, no bids")

	out = env.mustRun(t, "--format", "json", "show", "item", "item-1")
	var view engine.ItemView
	decodeData(t, out, &view)
	require.NotNil(t, view.Auction)
	assert.Equal(t, market.AuctionRunning, view.Auction.Status)
	assert.Equal(t, "alice", view.Auction.Creator)
}

func TestFundAndMint(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "fund", "bob", "500")
	assert.Equal(t, "bob rail balance 500\n", out)
	out = env.mustRun(t, "--format", "json", "fund", "bob", "250")
	var funded map[string]any
	decodeData(t, out, &funded)
	assert.Equal(t, map[string]any{"account": "bob", "balance": float64(750)}, funded)

	_, err := env.run(t, "fund", "bob", "12abc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out = env.mustRun(t, "mint", "item-1", "alice")
	assert.Equal(t, "item-1 held by alice\n", out)
}

func TestResume_NothingPending(t *testing.T) {
	env := newTestEnv(t)
	env.seedSale(t)

	out := env.mustRun(t, "resume")
	assert.Equal(t, "applied 0 effects, 0 pending\n", out)

	out = env.mustRun(t, "--format", "json", "resume", "--dry-run")
	var result ResumeResult
	decodeData(t, out, &result)
	assert.Equal(t, ResumeResult{Applied: 0, Pending: []market.Effect{}}, result)
}

func TestResumeText(t *testing.T) {
	f := &OutputFormatter{Decimals: 2}
	text := f.resumeText(ResumeResult{
		Applied: 1,
		Pending: []market.Effect{
			{Seq: 4, Kind: market.EffectPayout, From: "vault", To: "carol", Amount: 2500},
			{Seq: 5, Kind: market.EffectRelease, Item: "item-1", To: "bob"},
			{Seq: 6, Kind: market.EffectLock, Item: "item-2", From: "alice"},
		},
	})
	assert.Equal(t, "applied 1 effects, 3 pending\n"+
		"  [4] payout 25.00 from vault to carol\n"+
		"  [5] release item-1 to bob\n"+
		"  [6] lock item-2 from alice", text)
}
