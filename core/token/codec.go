package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the fields this client inspects on a session token.
// The token is never verified locally; the server remains the authority.
type Claims struct {
	// Subject is the stable user identifier (sub claim).
	Subject string

	// IssuedAt is when the backend minted the token (iat claim).
	IssuedAt time.Time

	// ExpiresAt is when the token stops being valid (exp claim).
	ExpiresAt time.Time
}

// Metadata is the inspectable record derived from a raw token, including
// the raw token itself so callers can carry both around together.
type Metadata struct {
	Token     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec decodes and inspects session tokens without signature verification.
// All decode failures are collapsed into ErrMalformedToken so callers can
// treat any unparsable token as "not a session" (fail-closed).
type Codec struct {
	parser *jwt.Parser
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the wall clock used for expiry checks.
// Intended for tests; defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec creates a token codec.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		parser: jwt.NewParser(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Decode parses the raw token into Claims. It never panics and never
// distinguishes between failure modes: wrong segment count, invalid base64,
// and unparsable payloads all return ErrMalformedToken.
func (c *Codec) Decode(raw string) (Claims, error) {
	registered := jwt.RegisteredClaims{}
	if _, _, err := c.parser.ParseUnverified(raw, &registered); err != nil {
		return Claims{}, errors.Join(ErrMalformedToken, err)
	}

	claims := Claims{Subject: registered.Subject}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}

	return claims, nil
}

// IsExpired reports whether the token is past its expiry. A token that
// fails to decode or carries no exp claim counts as expired. The comparison
// is second-granular and inclusive: a token expiring exactly now is already
// expired, there is no grace window.
func (c *Codec) IsExpired(raw string) bool {
	claims, err := c.Decode(raw)
	if err != nil {
		return true
	}
	if claims.ExpiresAt.IsZero() {
		return true
	}
	return claims.ExpiresAt.Unix() <= c.now().Unix()
}

// Metadata decodes the token and returns its inspectable record.
// Returns ErrMissingExpiry when the token has no exp claim, since downstream
// expiry arithmetic would be meaningless without one.
func (c *Codec) Metadata(raw string) (Metadata, error) {
	claims, err := c.Decode(raw)
	if err != nil {
		return Metadata{}, err
	}
	if claims.ExpiresAt.IsZero() {
		return Metadata{}, ErrMissingExpiry
	}

	return Metadata{
		Token:     raw,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
