// Package token decodes session tokens for client-side inspection.
//
// Tokens are JWTs issued by the backend, but this package deliberately skips
// signature verification: the client only needs the subject, issued-at, and
// expiry embedded in the payload, and the server remains the sole authority
// on authenticity. Every decode failure collapses to ErrMalformedToken so a
// garbage token is indistinguishable from no token at all.
//
// Basic usage:
//
//	codec := token.NewCodec()
//
//	if codec.IsExpired(raw) {
//	    // treat as unauthenticated
//	}
//
//	md, err := codec.Metadata(raw)
//	if err != nil {
//	    // malformed or missing expiry
//	}
//	fmt.Println(md.Subject, md.ExpiresAt)
//
// Expiry checks are inclusive at second granularity: a token whose exp claim
// equals the current second is already expired.
package token
