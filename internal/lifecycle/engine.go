// Package lifecycle runs the item and claim state machine: reporting
// items, filing claims, adjudicating them, and the track-record and
// moderation side effects. Every mutation runs in one SQLite transaction
// and is retried when a concurrent writer got there first.
package lifecycle

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/erazemk/najdeno/internal/blob"
)

// DefaultMaxRetries bounds how often a transaction is retried after
// losing a race.
const DefaultMaxRetries = 5

// Engine executes lifecycle operations against a database and a blob store.
type Engine struct {
	db         *sql.DB
	blobs      blob.Storage
	log        *slog.Logger
	maxRetries uint64
	retryDelay time.Duration
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for audit lines. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMaxRetries sets how often a conflicting transaction is retried.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxRetries = uint64(n)
		}
	}
}

// WithRetryDelay sets the initial backoff between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.retryDelay = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an Engine. blobs may be nil if photo uploads are disabled.
func New(db *sql.DB, blobs blob.Storage, opts ...Option) *Engine {
	e := &Engine{
		db:         db,
		blobs:      blobs,
		log:        slog.Default(),
		maxRetries: DefaultMaxRetries,
		retryDelay: 5 * time.Millisecond,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
