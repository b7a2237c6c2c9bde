// Package store provides SQLite-backed durable storage for marketplace
// records, the operation audit log, and the effect journal.
//
// # Tables
//
//   - registry, treasuries: the single marketplace configuration
//   - users, listings, offers, auctions: mutable records, never deleted
//   - operations: one row per committed engine call
//   - settlements: one row per distributed sale
//   - effects: custody moves and payouts awaiting their collaborator
//   - custody, rail_accounts: store-backed collaborators (internal/local)
//
// # Atomicity
//
// Every engine operation writes its record changes, its operation row,
// any settlement and its effects through a single Update call. Either the
// whole set commits or none of it does.
//
// # Ordering
//
// List queries are deterministic: ORDER BY the natural key with
// COLLATE BINARY, or by seq for logs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
