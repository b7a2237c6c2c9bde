// Package engine implements the bourse settlement engine: the registry,
// escrow accounts, listings, offers, auctions, and the fee and royalty
// distribution that closes every sale.
//
// ARCHITECTURE:
//
// Every public operation is one call to execute:
//  1. Facts owned by collaborators (custody, metadata) are read first.
//  2. The clock is read once.
//  3. One store transaction validates every precondition, mutates the
//     records, appends the audit row and any settlement, and journals the
//     external effects (custody moves and payouts) as pending.
//  4. After commit, pending effects are applied in journal order.
//
// A rejected call returns a *market.Error and leaves every record and
// collaborator untouched. A committed call whose effects cannot all be
// delivered leaves them pending; Resume re-drives the journal and no
// effect is ever applied out of order.
//
// The engine adds no locking of its own. The store's single connection
// serializes transactions; optimistic checks (expected outbidder, listing
// epoch, auction status) reject callers acting on stale state.
package engine
