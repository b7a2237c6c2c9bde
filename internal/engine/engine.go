package engine

import (
	"log/slog"
	"sync"

	"github.com/roach88/bourse/internal/store"
)

// DefaultVault is the account that holds escrowed funds and custodied items.
const DefaultVault = "vault"

// Engine executes marketplace operations against a store and its
// external collaborators.
//
// Thread-safety: all methods are safe for concurrent use; the store
// serializes their transactions and one Engine delivers journal effects
// one drain at a time. Engines in separate processes must not drain the
// same store concurrently.
type Engine struct {
	store    *store.Store
	custody  Custody
	rail     PaymentRail
	metadata MetadataRegistry
	clock    Clock
	ids      IDGenerator
	vault    string
	logger   *slog.Logger

	// delivering is held for a whole journal drain so no effect is
	// applied twice.
	delivering sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock. The engine wraps it so readings never decrease.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator sets the operation id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithVault sets the account that holds escrow funds and custody.
func WithVault(vault string) Option {
	return func(e *Engine) {
		e.vault = vault
	}
}

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine.
//
// Defaults: SystemClock, UUIDv7Generator, DefaultVault, slog.Default().
func New(s *store.Store, c Collaborators, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		custody:  c.Custody,
		rail:     c.Rail,
		metadata: c.Metadata,
		clock:    SystemClock{},
		ids:      UUIDv7Generator{},
		vault:    DefaultVault,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.clock = NewMonotonicClock(e.clock)
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Vault returns the escrow and custody account.
func (e *Engine) Vault() string {
	return e.vault
}
