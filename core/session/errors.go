package session

import "errors"

var (
	// ErrInvalidToken is returned when SetToken is handed a token that fails
	// structural decoding. Such a token is never persisted.
	ErrInvalidToken = errors.New("token is structurally invalid")

	// ErrExpiredToken is returned when SetToken is handed a token that is
	// already past its expiry. Dead-on-arrival tokens are never persisted.
	ErrExpiredToken = errors.New("token is already expired")

	// ErrStorageFailure is returned when the persistence medium rejected a
	// write or delete. It always wraps the underlying storage error.
	ErrStorageFailure = errors.New("token storage failed")

	// ErrNoSession is returned by read operations when there is no valid
	// session: nothing stored, or whatever was stored failed the validity
	// check and has been evicted.
	ErrNoSession = errors.New("no valid session")
)
