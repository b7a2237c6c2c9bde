// Package harness runs marketplace scenarios written in YAML.
//
// A scenario seeds a fresh market, drives operations through the engine
// by name, and checks the outcome of each step and the final balances,
// custody and records.
//
// # Scenario Format
//
//	name: purchase_reference
//	description: "What this scenario validates"
//	registry:
//	  admin: admin
//	  fee_rate: 500
//	  treasuries:
//	    - { recipient: treasury-a, rate: 10000 }
//	accounts:
//	  - { owner: alice }
//	  - { owner: bob, escrow: 2000000 }
//	items:
//	  - item: item-1
//	    holder: alice
//	    royalty:
//	      basis_points: 250
//	      creators:
//	        - { address: carol, verified: true, share: 100 }
//	steps:
//	  - op: list
//	    args: { item: item-1, seller: alice, price: 1000000 }
//	  - advance: 60
//	  - op: purchase
//	    args: { item: item-1, buyer: bob, payees: [treasury-a, carol] }
//	    expect:
//	      settlement: { seller_net: 925000 }
//	  - op: purchase
//	    args: { item: item-1, buyer: bob, payees: [treasury-a, carol] }
//	    expect: { code: NOT_LISTED }
//	assertions:
//	  - { type: escrow, owner: bob, amount: 1000000 }
//	  - { type: holder, item: item-1, holder: bob }
//
// A step without expect must succeed. Besides op, a step may advance
// the clock, fail or heal rail transfers into an account, or resume the
// effect journal.
//
// # Assertion Types
//
//   - escrow: owner's escrow balance equals amount
//   - rail_balance: account's rail balance equals amount
//   - holder: item is held by holder
//   - listing: item's listing is active (or not)
//   - auction: item's auction is in status
//   - pending_effects: count effects are still pending
//   - settlements: item has count settlements
//
// # Deterministic Testing
//
// Every scenario runs against an in-memory store with a manual clock
// starting at 1000 and operation ids op-1, op-2, ... so traces are
// reproducible and can be compared against golden files.
package harness
