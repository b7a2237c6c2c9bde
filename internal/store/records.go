package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/bourse/internal/market"
)

// Records reads and writes marketplace records. Obtain one from
// Store.Records or inside Store.Update.
//
// Point reads return (zero, false, nil) when the record does not exist.
type Records struct {
	q querier
}

// Registry returns the marketplace registry.
func (r *Records) Registry(ctx context.Context) (market.Registry, bool, error) {
	var (
		reg market.Registry
		tag int
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT tag, admin, fee_rate FROM registry WHERE id = 1
	`).Scan(&tag, &reg.Admin, &reg.FeeRate)
	if errors.Is(err, sql.ErrNoRows) {
		return market.Registry{}, false, nil
	}
	if err != nil {
		return market.Registry{}, false, fmt.Errorf("read registry: %w", err)
	}
	if err := checkTag("registry", tag); err != nil {
		return market.Registry{}, false, err
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT slot, recipient, rate FROM treasuries ORDER BY slot ASC
	`)
	if err != nil {
		return market.Registry{}, false, fmt.Errorf("read treasuries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			slot int
			t    market.Treasury
		)
		if err := rows.Scan(&slot, &t.Recipient, &t.Rate); err != nil {
			return market.Registry{}, false, fmt.Errorf("scan treasury: %w", err)
		}
		if slot != reg.TreasuryCount {
			return market.Registry{}, false, fmt.Errorf("read treasuries: slot %d out of order", slot)
		}
		reg.Treasuries[slot] = t
		reg.TreasuryCount++
	}
	if err := rows.Err(); err != nil {
		return market.Registry{}, false, fmt.Errorf("iterate treasuries: %w", err)
	}
	return reg, true, nil
}

// PutRegistry replaces the registry and its treasury slots.
func (r *Records) PutRegistry(ctx context.Context, reg market.Registry) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO registry (id, tag, admin, fee_rate) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET tag = excluded.tag, admin = excluded.admin, fee_rate = excluded.fee_rate
	`, market.RecordTag, reg.Admin, reg.FeeRate)
	if err != nil {
		return fmt.Errorf("write registry: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, `DELETE FROM treasuries`); err != nil {
		return fmt.Errorf("write treasuries: %w", err)
	}
	for slot, t := range reg.ActiveTreasuries() {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO treasuries (slot, tag, recipient, rate) VALUES (?, ?, ?, ?)
		`, slot, market.RecordTag, t.Recipient, t.Rate)
		if err != nil {
			return fmt.Errorf("write treasury %d: %w", slot, err)
		}
	}
	return nil
}

// User returns a user account.
func (r *Records) User(ctx context.Context, owner string) (market.UserAccount, bool, error) {
	var (
		u              market.UserAccount
		tag            int
		escrow, volume int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT tag, owner, escrow_balance, traded_volume FROM users WHERE owner = ?
	`, owner).Scan(&tag, &u.Owner, &escrow, &volume)
	if errors.Is(err, sql.ErrNoRows) {
		return market.UserAccount{}, false, nil
	}
	if err != nil {
		return market.UserAccount{}, false, fmt.Errorf("read user: %w", err)
	}
	if err := checkTag("users", tag); err != nil {
		return market.UserAccount{}, false, err
	}
	u.EscrowBalance = u64(escrow)
	u.TradedVolume = u64(volume)
	return u, true, nil
}

// PutUser inserts or replaces a user account.
func (r *Records) PutUser(ctx context.Context, u market.UserAccount) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (owner, tag, escrow_balance, traded_volume) VALUES (?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			tag = excluded.tag,
			escrow_balance = excluded.escrow_balance,
			traded_volume = excluded.traded_volume
	`, u.Owner, market.RecordTag, i64(u.EscrowBalance), i64(u.TradedVolume))
	if err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	return nil
}

const listingColumns = `tag, item, seller, collection, price, listed_at, active`

func scanListing(row interface{ Scan(...any) error }) (market.Listing, error) {
	var (
		l      market.Listing
		tag    int
		price  int64
		active int
	)
	if err := row.Scan(&tag, &l.Item, &l.Seller, &l.Collection, &price, &l.ListedAt, &active); err != nil {
		return market.Listing{}, err
	}
	if err := checkTag("listings", tag); err != nil {
		return market.Listing{}, err
	}
	l.Price = u64(price)
	l.Active = active != 0
	return l, nil
}

// Listing returns the listing slot of an item.
func (r *Records) Listing(ctx context.Context, item string) (market.Listing, bool, error) {
	l, err := scanListing(r.q.QueryRowContext(ctx, `
		SELECT `+listingColumns+` FROM listings WHERE item = ?
	`, item))
	if errors.Is(err, sql.ErrNoRows) {
		return market.Listing{}, false, nil
	}
	if err != nil {
		return market.Listing{}, false, fmt.Errorf("read listing: %w", err)
	}
	return l, true, nil
}

// PutListing inserts or replaces a listing slot.
func (r *Records) PutListing(ctx context.Context, l market.Listing) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO listings (`+listingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item) DO UPDATE SET
			tag = excluded.tag,
			seller = excluded.seller,
			collection = excluded.collection,
			price = excluded.price,
			listed_at = excluded.listed_at,
			active = excluded.active
	`, market.RecordTag, l.Item, l.Seller, l.Collection, i64(l.Price), l.ListedAt, boolInt(l.Active))
	if err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}

// ActiveListings returns every active listing ordered by item.
// Returns an empty slice (not nil) if there are none.
func (r *Records) ActiveListings(ctx context.Context) ([]market.Listing, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+listingColumns+` FROM listings
		WHERE active = 1
		ORDER BY item COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	listings := []market.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

const offerColumns = `tag, item, buyer, offer_price, listing_epoch, active`

func scanOffer(row interface{ Scan(...any) error }) (market.Offer, error) {
	var (
		o      market.Offer
		tag    int
		price  int64
		active int
	)
	if err := row.Scan(&tag, &o.Item, &o.Buyer, &price, &o.ListingEpoch, &active); err != nil {
		return market.Offer{}, err
	}
	if err := checkTag("offers", tag); err != nil {
		return market.Offer{}, err
	}
	o.Price = u64(price)
	o.Active = active != 0
	return o, nil
}

// Offer returns the offer of buyer on item.
func (r *Records) Offer(ctx context.Context, item, buyer string) (market.Offer, bool, error) {
	o, err := scanOffer(r.q.QueryRowContext(ctx, `
		SELECT `+offerColumns+` FROM offers WHERE item = ? AND buyer = ?
	`, item, buyer))
	if errors.Is(err, sql.ErrNoRows) {
		return market.Offer{}, false, nil
	}
	if err != nil {
		return market.Offer{}, false, fmt.Errorf("read offer: %w", err)
	}
	return o, true, nil
}

// PutOffer inserts or replaces an offer.
func (r *Records) PutOffer(ctx context.Context, o market.Offer) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO offers (`+offerColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(item, buyer) DO UPDATE SET
			tag = excluded.tag,
			offer_price = excluded.offer_price,
			listing_epoch = excluded.listing_epoch,
			active = excluded.active
	`, market.RecordTag, o.Item, o.Buyer, i64(o.Price), o.ListingEpoch, boolInt(o.Active))
	if err != nil {
		return fmt.Errorf("write offer: %w", err)
	}
	return nil
}

// ActiveOffers returns the active offers on an item ordered by buyer.
// Returns an empty slice (not nil) if there are none.
func (r *Records) ActiveOffers(ctx context.Context, item string) ([]market.Offer, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE item = ? AND active = 1
		ORDER BY buyer COLLATE BINARY ASC
	`, item)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	offers := []market.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offers: %w", err)
	}
	return offers, nil
}

const auctionColumns = `tag, item, creator, start_price, min_increment, start_at, last_bid_at, last_bidder, highest_bid, duration, status`

func scanAuction(row interface{ Scan(...any) error }) (market.Auction, error) {
	var (
		a                    market.Auction
		tag                  int
		start, incr, highest int64
		status               int
	)
	if err := row.Scan(&tag, &a.Item, &a.Creator, &start, &incr, &a.StartAt, &a.LastBidAt,
		&a.LastBidder, &highest, &a.Duration, &status); err != nil {
		return market.Auction{}, err
	}
	if err := checkTag("auctions", tag); err != nil {
		return market.Auction{}, err
	}
	a.StartPrice = u64(start)
	a.MinIncrement = u64(incr)
	a.HighestBid = u64(highest)
	a.Status = market.AuctionStatus(status)
	return a, nil
}

// Auction returns the auction record of an item.
func (r *Records) Auction(ctx context.Context, item string) (market.Auction, bool, error) {
	a, err := scanAuction(r.q.QueryRowContext(ctx, `
		SELECT `+auctionColumns+` FROM auctions WHERE item = ?
	`, item))
	if errors.Is(err, sql.ErrNoRows) {
		return market.Auction{}, false, nil
	}
	if err != nil {
		return market.Auction{}, false, fmt.Errorf("read auction: %w", err)
	}
	return a, true, nil
}

// PutAuction inserts or replaces an auction record.
func (r *Records) PutAuction(ctx context.Context, a market.Auction) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO auctions (`+auctionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item) DO UPDATE SET
			tag = excluded.tag,
			creator = excluded.creator,
			start_price = excluded.start_price,
			min_increment = excluded.min_increment,
			start_at = excluded.start_at,
			last_bid_at = excluded.last_bid_at,
			last_bidder = excluded.last_bidder,
			highest_bid = excluded.highest_bid,
			duration = excluded.duration,
			status = excluded.status
	`, market.RecordTag, a.Item, a.Creator, i64(a.StartPrice), i64(a.MinIncrement), a.StartAt,
		a.LastBidAt, a.LastBidder, i64(a.HighestBid), a.Duration, int(a.Status))
	if err != nil {
		return fmt.Errorf("write auction: %w", err)
	}
	return nil
}

// AuctionsByStatus returns auctions in the given status ordered by item.
// Returns an empty slice (not nil) if there are none.
func (r *Records) AuctionsByStatus(ctx context.Context, status market.AuctionStatus) ([]market.Auction, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+auctionColumns+` FROM auctions
		WHERE status = ?
		ORDER BY item COLLATE BINARY ASC
	`, int(status))
	if err != nil {
		return nil, fmt.Errorf("query auctions: %w", err)
	}
	defer rows.Close()

	auctions := []market.Auction{}
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction: %w", err)
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auctions: %w", err)
	}
	return auctions, nil
}
