package sessionbus

import (
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a session-lifecycle transition.
type EventType string

const (
	// TokenSet is published when a new token has been persisted.
	TokenSet EventType = "token_set"
	// TokenRemoved is published when the token was explicitly removed.
	TokenRemoved EventType = "token_removed"
	// TokenExpired is published when an expired token was evicted on read.
	TokenExpired EventType = "token_expired"
)

// Event is a session-lifecycle notification. Events are transient: they are
// delivered synchronously to subscribers registered at publish time and are
// never queued or redelivered.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
}

// Callback receives published events.
type Callback func(Event)

type subscription struct {
	fn Callback
}

// Bus fans session events out to any number of subscribers that come and go
// independently of the publisher. Delivery is synchronous and FIFO over the
// subscribers registered at publish time. A panicking subscriber is isolated
// and logged; it never prevents the remaining subscribers from running.
type Bus struct {
	mu     sync.Mutex
	subs   []*subscription
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger configures structured logging for the bus.
// By default the bus logs nowhere.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp events. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a session event bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe registers a callback and returns a function that removes exactly
// this registration. The same callback can be registered multiple times; each
// registration is tracked separately. Calling the returned function more than
// once is a no-op after the first call.
func (b *Bus) Subscribe(fn Callback) func() {
	if fn == nil {
		return func() {}
	}

	sub := &subscription{fn: fn}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs = slices.DeleteFunc(b.subs, func(s *subscription) bool {
				return s == sub
			})
		})
	}
}

// Publish delivers a freshly-stamped event to all currently-registered
// subscribers in subscription order. Fire-and-forget: there is no delivery
// guarantee for subscribers added after Publish starts.
func (b *Bus) Publish(t EventType) {
	event := Event{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: b.now(),
	}

	b.mu.Lock()
	snapshot := slices.Clone(b.subs)
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.notify(sub, event)
	}
}

// notify invokes a single subscriber, converting panics into log entries so
// one broken consumer cannot break fan-out for the rest.
func (b *Bus) notify(sub *subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("session event subscriber panicked",
				slog.String("event_type", string(event.Type)),
				slog.Any("panic", r))
		}
	}()
	sub.fn(event)
}
