package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/bourse/internal/market"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite INTEGER is signed 64-bit and go-sqlite3 rejects uint64 values
// with the high bit set, so amounts are stored two's-complement.
func i64(v uint64) int64 { return int64(v) }
func u64(v int64) uint64 { return uint64(v) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func marshalPayouts(payouts []market.Payout) (string, error) {
	if payouts == nil {
		payouts = []market.Payout{}
	}
	data, err := json.Marshal(payouts)
	if err != nil {
		return "", fmt.Errorf("marshal payouts: %w", err)
	}
	return string(data), nil
}

func unmarshalPayouts(data string) ([]market.Payout, error) {
	var payouts []market.Payout
	if err := json.Unmarshal([]byte(data), &payouts); err != nil {
		return nil, fmt.Errorf("unmarshal payouts: %w", err)
	}
	if payouts == nil {
		payouts = []market.Payout{}
	}
	return payouts, nil
}

// checkTag rejects rows written by a newer record layout.
func checkTag(table string, tag int) error {
	if tag != market.RecordTag {
		return fmt.Errorf("%s: unsupported record tag %d", table, tag)
	}
	return nil
}
