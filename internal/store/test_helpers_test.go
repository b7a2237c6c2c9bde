package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/bourse/internal/market"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// writeTestOperation appends an operation so effects and settlements can
// reference it.
func writeTestOperation(t *testing.T, s *Store, id, item string) {
	t.Helper()
	_, err := s.Records().AppendOperation(context.Background(), market.Operation{
		ID:     id,
		Op:     "test",
		Item:   item,
		Caller: "tester",
		Args:   "{}",
		At:     1,
	})
	if err != nil {
		t.Fatalf("AppendOperation() failed: %v", err)
	}
}
