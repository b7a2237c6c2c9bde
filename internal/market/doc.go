// Package market defines the record types shared by every layer of bourse:
// the registry, user accounts, listings, offers, auctions, and the audit
// records written alongside them.
//
// This package contains types and pure rules only. All other internal
// packages import market; market imports nothing internal.
//
// Key constraints:
//   - Amounts and rates are uint64, timestamps and durations int64 seconds
//   - No float types anywhere
//   - All JSON tags use snake_case
//   - Every persisted record carries a leading version tag
package market
