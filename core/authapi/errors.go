package authapi

import "errors"

var (
	// ErrInvalidBaseURL indicates the client was constructed with an
	// unusable API base URL.
	ErrInvalidBaseURL = errors.New("invalid auth API base URL")

	// ErrLoginFailed indicates the login endpoint rejected the credentials
	// or returned an unexpected status.
	ErrLoginFailed = errors.New("login failed")

	// ErrRefreshFailed indicates the refresh endpoint could not mint a new
	// session token. The refresh credential is server-managed; this client
	// cannot recover on its own.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrLogoutFailed indicates the best-effort server-side invalidation
	// failed. Local session teardown must proceed regardless.
	ErrLogoutFailed = errors.New("server-side logout failed")

	// ErrInvalidResponse indicates the endpoint answered with a body this
	// client could not decode.
	ErrInvalidResponse = errors.New("unexpected auth API response")
)
