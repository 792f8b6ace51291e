package session

import (
	"errors"
	"time"

	"github.com/tenantkit/tenantkit/core/sessionbus"
	"github.com/tenantkit/tenantkit/core/token"
)

// DefaultTokenName is the fixed storage key for the persisted session token.
const DefaultTokenName = "session_token"

// Manager is the single facade other subsystems talk to for "what is my
// session". It composes the token codec, the persistent store, and the event
// bus, and enforces the fail-closed invariant end-to-end: an expired token is
// never returned as valid, and validity is recomputed on every read rather
// than cached.
//
// Reads degrade gracefully (any ambiguity collapses to ErrNoSession) while
// writes refuse bad input loudly. A caller asking "am I logged in" should
// never crash; a caller establishing a session should know immediately if it
// handed over garbage.
type Manager struct {
	codec     *token.Codec
	store     Store
	bus       *sessionbus.Bus
	tokenName string
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithTokenName overrides the storage key for the persisted token.
func WithTokenName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.tokenName = name
		}
	}
}

// WithClock overrides the wall clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a session manager over the given collaborators.
// All three are required; the codec's clock should match any clock injected
// here so expiry decisions agree.
func NewManager(codec *token.Codec, store Store, bus *sessionbus.Bus, opts ...Option) *Manager {
	m := &Manager{
		codec:     codec,
		store:     store,
		bus:       bus,
		tokenName: DefaultTokenName,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// SetToken validates and persists a new session token, then publishes
// token_set. It refuses tokens that fail decoding (ErrInvalidToken) or are
// already expired at the moment of storage (ErrExpiredToken); storage
// rejections propagate as ErrStorageFailure.
func (m *Manager) SetToken(raw string) error {
	if _, err := m.codec.Decode(raw); err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	if m.codec.IsExpired(raw) {
		return ErrExpiredToken
	}

	if err := m.store.Set(m.tokenName, raw); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	m.bus.Publish(sessionbus.TokenSet)
	return nil
}

// Token returns the current valid token, or ErrNoSession. A stored token
// found expired is evicted from storage on the spot and token_expired is
// published; this lazy eviction on read is how stale tokens are purged
// without a background timer.
func (m *Manager) Token() (string, error) {
	raw, err := m.store.Get(m.tokenName)
	if err != nil {
		return "", ErrNoSession
	}

	if m.codec.IsExpired(raw) {
		_ = m.store.Delete(m.tokenName)
		m.bus.Publish(sessionbus.TokenExpired)
		return "", ErrNoSession
	}

	return raw, nil
}

// RemoveToken unconditionally deletes the persisted token and publishes
// token_removed. Idempotent: removing a token that does not exist succeeds.
func (m *Manager) RemoveToken() error {
	if err := m.store.Delete(m.tokenName); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	m.bus.Publish(sessionbus.TokenRemoved)
	return nil
}

// IsAuthenticated reports whether a valid session exists. It delegates to
// Token so the expiry logic lives in exactly one place.
func (m *Manager) IsAuthenticated() bool {
	_, err := m.Token()
	return err == nil
}

// Metadata returns the inspectable record of the current valid token, or
// ErrNoSession under the same fail-closed policy as Token.
func (m *Manager) Metadata() (token.Metadata, error) {
	raw, err := m.Token()
	if err != nil {
		return token.Metadata{}, err
	}

	md, err := m.codec.Metadata(raw)
	if err != nil {
		return token.Metadata{}, ErrNoSession
	}
	return md, nil
}

// TimeUntilExpiration returns how long the current token remains valid,
// floored at zero. Returns ErrNoSession when there is no valid token.
func (m *Manager) TimeUntilExpiration() (time.Duration, error) {
	md, err := m.Metadata()
	if err != nil {
		return 0, err
	}

	remaining := md.ExpiresAt.Sub(m.now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
