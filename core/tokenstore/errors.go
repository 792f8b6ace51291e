package tokenstore

import "errors"

// Error variables define specific failure scenarios in token storage.
// Storage failures are surfaced loudly: a silently dropped write would leave
// the user looking logged in with no persisted credential behind it.
var (
	// ErrInvalidBaseURL indicates the store was constructed without a usable
	// current-location URL (missing scheme or host).
	ErrInvalidBaseURL = errors.New("invalid base URL for token store")

	// ErrInvalidProductionDomain indicates the configured production domain is
	// not a registrable domain and could never scope a shared cookie.
	ErrInvalidProductionDomain = errors.New("production domain is not a registrable domain")

	// ErrTokenNotFound indicates no entry exists under the requested name.
	ErrTokenNotFound = errors.New("token not found in store")

	// ErrWriteFailed indicates the storage medium rejected or dropped a write.
	ErrWriteFailed = errors.New("token store rejected the write")

	// ErrEmptyName indicates an operation was attempted with an empty entry name.
	ErrEmptyName = errors.New("token entry name cannot be empty")
)
