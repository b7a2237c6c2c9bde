package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/market"
)

// Snapshot renders a scenario trace for golden comparison. Settlement
// ids and operation ids are left out so a golden file only changes when
// the money or the outcomes do.
func Snapshot(name string, trace []TraceEvent) ([]byte, error) {
	events := make([]any, len(trace))
	for i, ev := range trace {
		events[i] = eventMap(ev)
	}
	canonical, err := market.MarshalCanonical(map[string]any{
		"scenario": name,
		"trace":    events,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, canonical, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func eventMap(ev TraceEvent) map[string]any {
	m := map[string]any{
		"step":    ev.Step,
		"op":      ev.Op,
		"outcome": ev.Outcome,
	}
	if len(ev.Args) > 0 {
		m["args"] = map[string]any(ev.Args)
	}
	if ev.At != 0 {
		m["at"] = ev.At
	}
	if ev.Pending != 0 {
		m["pending"] = ev.Pending
	}
	if ev.Op == "resume" {
		m["applied"] = ev.Applied
	}
	if s := ev.Settlement; s != nil {
		payouts := make([]any, len(s.Payouts))
		for i, p := range s.Payouts {
			payouts[i] = map[string]any{
				"role":      string(p.Role),
				"recipient": p.Recipient,
				"amount":    p.Amount,
			}
		}
		m["settlement"] = map[string]any{
			"kind":          string(s.Kind),
			"gross":         s.Gross,
			"royalty_total": s.RoyaltyTotal,
			"platform_fee":  s.PlatformFee,
			"seller_net":    s.SellerNet,
			"payouts":       payouts,
		}
	}
	return m
}

// RunWithGolden executes a scenario, requires it to pass, and compares
// its trace against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "scenario %s failed: %v", scenario.Name, result.Errors)

	AssertGolden(t, scenario.Name, result)
	return result
}

// AssertGolden compares a result's trace against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	data, err := Snapshot(name, result.Trace)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
