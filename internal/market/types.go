package market

import (
	"fmt"
	"math"
)

// Treasury is one platform fee recipient and its share of the platform fee.
type Treasury struct {
	Recipient string `json:"recipient" yaml:"recipient"`
	Rate      uint64 `json:"rate" yaml:"rate"` // permyriad of the platform fee
}

// Registry is the marketplace-wide configuration. There is exactly one.
//
// Treasuries is a fixed-capacity ordered array; only the first
// TreasuryCount slots are meaningful. Payout order follows slot order.
type Registry struct {
	Admin         string                  `json:"admin"`
	FeeRate       uint64                  `json:"fee_rate"` // permyriad of gross
	Treasuries    [MaxTreasuries]Treasury `json:"-"`
	TreasuryCount int                     `json:"treasury_count"`
}

// ActiveTreasuries returns the configured treasuries in payout order.
func (r Registry) ActiveTreasuries() []Treasury {
	out := make([]Treasury, r.TreasuryCount)
	copy(out, r.Treasuries[:r.TreasuryCount])
	return out
}

// UserAccount holds a party's escrow balance and lifetime traded volume.
type UserAccount struct {
	Owner         string `json:"owner"`
	EscrowBalance uint64 `json:"escrow_balance"`
	TradedVolume  uint64 `json:"traded_volume"`
}

// Listing is the fixed-price sale slot of one item. The slot is reused
// across relistings; ListedAt identifies the current listing epoch.
type Listing struct {
	Item       string `json:"item"`
	Seller     string `json:"seller"`
	Collection string `json:"collection"`
	Price      uint64 `json:"price"`
	ListedAt   int64  `json:"listed_at"`
	Active     bool   `json:"active"`
}

// Offer is a buyer's standing bid below the listed price.
type Offer struct {
	Item         string `json:"item"`
	Buyer        string `json:"buyer"`
	Price        uint64 `json:"offer_price"`
	ListingEpoch int64  `json:"offer_listing_epoch"`
	Active       bool   `json:"active"`
}

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus int

// Status values are persisted; do not renumber.
const (
	AuctionCancelled AuctionStatus = 0
	AuctionRunning   AuctionStatus = 1
	AuctionClaimed   AuctionStatus = 2
	AuctionReserved  AuctionStatus = 3
)

// String returns the lowercase status name.
func (s AuctionStatus) String() string {
	switch s {
	case AuctionCancelled:
		return "cancelled"
	case AuctionRunning:
		return "running"
	case AuctionClaimed:
		return "claimed"
	case AuctionReserved:
		return "reserved"
	default:
		return "unknown"
	}
}

// ParseAuctionStatus parses a status name produced by String.
func ParseAuctionStatus(s string) (AuctionStatus, bool) {
	for _, st := range []AuctionStatus{AuctionCancelled, AuctionRunning, AuctionClaimed, AuctionReserved} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Open reports whether the auction still accepts bids or cancellation.
func (s AuctionStatus) Open() bool {
	return s == AuctionRunning || s == AuctionReserved
}

// Auction is the English or reserve auction of one item.
//
// HighestBid starts at StartPrice-MinIncrement so the first valid bid is
// StartPrice. LastBidder is empty until the first bid.
type Auction struct {
	Item         string        `json:"item"`
	Creator      string        `json:"creator"`
	StartPrice   uint64        `json:"start_price"`
	MinIncrement uint64        `json:"min_increment"`
	StartAt      int64         `json:"start_at"`
	LastBidAt    int64         `json:"last_bid_at"`
	LastBidder   string        `json:"last_bidder,omitempty"`
	HighestBid   uint64        `json:"highest_bid"`
	Duration     int64         `json:"duration"`
	Status       AuctionStatus `json:"status"`
}

// EndAt is the first instant at which the auction no longer accepts bids.
// It saturates at math.MaxInt64.
func (a Auction) EndAt() int64 {
	if a.StartAt > 0 && a.Duration > math.MaxInt64-a.StartAt {
		return math.MaxInt64
	}
	return a.StartAt + a.Duration
}

// HasBid reports whether anyone has bid.
func (a Auction) HasBid() bool {
	return a.LastBidder != ""
}

// Creator is one royalty recipient declared by an item's metadata.
type Creator struct {
	Address  string `json:"address" yaml:"address"`
	Verified bool   `json:"verified" yaml:"verified"`
	Share    uint64 `json:"share" yaml:"share"` // percent of the royalty
}

// RoyaltyInfo is the royalty policy of one item.
type RoyaltyInfo struct {
	BasisPoints uint64    `json:"basis_points" yaml:"basis_points"`
	Creators    []Creator `json:"creators" yaml:"creators"`
}

// Collection returns the first verified creator, which identifies the
// item's collection.
func (ri RoyaltyInfo) Collection() (string, bool) {
	for _, c := range ri.Creators {
		if c.Verified {
			return c.Address, true
		}
	}
	return "", false
}

// MarshalText encodes the status by name.
func (s AuctionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *AuctionStatus) UnmarshalText(text []byte) error {
	st, ok := ParseAuctionStatus(string(text))
	if !ok {
		return fmt.Errorf("unknown auction status %q", text)
	}
	*s = st
	return nil
}
