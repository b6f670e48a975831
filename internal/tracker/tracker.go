// Package tracker implements the service registry, the report ledger and
// the status aggregator on top of a store.Store.
package tracker

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
	"github.com/MrSnakeDoc/statusboard/internal/metrics"
	"github.com/MrSnakeDoc/statusboard/internal/store"
)

// Tracker is safe for concurrent use; all shared state lives in the store.
type Tracker struct {
	store   store.Store
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithMetrics records counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// New creates a tracker over s.
func New(s store.Store, log logger.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store: s,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// timestamp is the current time in UTC at microsecond precision, the
// finest resolution every engine stores.
func (t *Tracker) timestamp() time.Time {
	return t.now().UTC().Truncate(time.Microsecond)
}

// classify passes domain errors through and wraps everything else as a
// storage failure.
func classify(op string, err error) error {
	var vErr *domain.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrStorage),
		errors.As(err, &vErr):
		return err
	default:
		return &domain.StorageError{Op: op, Err: err}
	}
}
