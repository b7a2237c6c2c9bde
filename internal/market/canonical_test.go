package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int64", int64(-100), "-100"},
		{"max uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"bool", true, "true"},
		{"empty array", []any{}, "[]"},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"empty object", map[string]any{}, "{}"},
		{"html not escaped", "<a&b>", `"<a&b>"`},
		{"control escaped", "a\nb\x01", `"a\nb\u0001"`},
		{"line separator kept", "a\u2028b", "\"a\u2028b\""},
		{"quote and backslash", `"\`, `"\"\\"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": int64(1),
		"alpha": map[string]any{"b": int64(1), "a": int64(2)},
		"beta":  int64(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Order(t *testing.T) {
	// U+1F600 encodes to surrogate 0xD83D, which sorts before U+FF5E in UTF-16
	// but after it in UTF-8.
	obj := map[string]any{"～": int64(1), "\U0001F600": int64(2)}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"～\":1}", string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed := "e\u0301"
	result, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	for _, v := range []any{nil, 1.5, float32(2), struct{}{}, map[string]any{"x": nil}} {
		_, err := MarshalCanonical(v)
		assert.Error(t, err, "%T", v)
	}
}

func TestSettlementIDDeterminism(t *testing.T) {
	s := Settlement{
		OperationID: "op-1",
		Item:        "item-1",
		Kind:        SettlementOffer,
		Gross:       1000000,
		Payouts:     []Payout{{Role: RoleSeller, Recipient: "alice", Amount: 925000}},
		At:          10,
	}
	id1, err := SettlementID(s)
	require.NoError(t, err)
	id2, err := SettlementID(s)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)

	s.Payouts[0].Amount = 925001
	id3, err := SettlementID(s)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}
