// Package authapi is the typed client for the backend session endpoints:
// login (POST /sessions), token refresh (PATCH /refresh-token), and
// best-effort logout (POST /auth/logout).
//
// The client intentionally sits under the request pipeline rather than
// behind it, so refresh calls can never recurse into refresh cycles. Its
// Refresh method satisfies transport.Refresher.
package authapi
