// Package local implements the custody and payment rail collaborators on
// top of the marketplace store, for single-node deployments and the CLI.
//
// Each call runs in its own store transaction. The engine only calls
// them outside its own transactions, so the single store connection is
// never requested twice.
package local
