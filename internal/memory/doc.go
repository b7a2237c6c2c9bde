// Package memory provides in-process collaborators for the engine:
// custody, a payment rail, and a metadata registry backed by maps.
//
// They are used by tests, scenario runs, and `bourse test`. Each type
// can be told to fail so callers can exercise pending effects.
package memory
