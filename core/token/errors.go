package token

import "errors"

var (
	// ErrMalformedToken is returned when a token cannot be decoded into its
	// expected structure. Covers wrong segment counts and unparsable payloads.
	ErrMalformedToken = errors.New("token is malformed")

	// ErrMissingExpiry is returned when a token decodes but carries no exp claim.
	// Tokens without an expiry cannot be reasoned about and are treated as dead.
	ErrMissingExpiry = errors.New("token has no expiry claim")
)
