package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/bourse/internal/market"
)

// Metadata maps items to their royalty policy.
type Metadata struct {
	mu    sync.RWMutex
	items map[string]market.RoyaltyInfo
}

// NewMetadata creates an empty Metadata.
func NewMetadata() *Metadata {
	return &Metadata{items: make(map[string]market.RoyaltyInfo)}
}

// Set records the royalty policy of item.
func (m *Metadata) Set(item string, info market.RoyaltyInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	creators := make([]market.Creator, len(info.Creators))
	copy(creators, info.Creators)
	info.Creators = creators
	m.items[item] = info
}

// RoyaltyInfo returns the royalty policy of item.
func (m *Metadata) RoyaltyInfo(_ context.Context, item string) (market.RoyaltyInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.items[item]
	if !ok {
		return market.RoyaltyInfo{}, fmt.Errorf("%s: %w", item, market.ErrUnknownItem)
	}
	if len(info.Creators) == 0 {
		return market.RoyaltyInfo{}, fmt.Errorf("%s: %w", item, market.ErrMissingCreators)
	}
	creators := make([]market.Creator, len(info.Creators))
	copy(creators, info.Creators)
	info.Creators = creators
	return info, nil
}
