// Package tokenstore provides durable, cross-subdomain-visible storage for
// the current session token.
//
// A multi-tenant dashboard addresses its backend through per-tenant
// subdomains (tenantA.example.com, tenantB.example.com). The session token
// must survive hopping between tenants, so the store scopes its single entry
// to a storage domain derived from the current host and the configured
// main/production domain pair:
//
//   - development: the bare main host ("localhost"), no leading dot;
//   - production: "." + production domain (wildcard-subdomain scope);
//   - anything else: the literal current host, no sharing possible.
//
// The derivation is memoized for the lifetime of the store since the current
// host never changes within a session.
//
// Basic usage:
//
//	store, err := tokenstore.New("https://tenanta.example.com",
//	    tokenstore.WithProductionDomain("example.com"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if err := store.Set("session_token", raw); err != nil {
//	    // storage rejected the write; the user is NOT persistently logged in
//	}
//
//	raw, err := store.Get("session_token")
//	if errors.Is(err, tokenstore.ErrTokenNotFound) {
//	    // no session
//	}
//
// Share the store's jar with the HTTP client so the persisted entry (and any
// server-managed httpOnly credentials) ride along on outbound requests:
//
//	client := &http.Client{Jar: store.Jar()}
//
// Storage failures are never swallowed: Set verifies the write by reading it
// back and reports ErrWriteFailed when the medium dropped it. The entry's
// storage TTL (default 7 days) is a maximum bound independent of the token's
// own embedded expiry, which remains the binding validity constraint.
package tokenstore
