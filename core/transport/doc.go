// Package transport wraps outbound API calls with uniform authentication and
// transient-failure handling, so call sites never reimplement retry or
// refresh logic.
//
// Per request the pipeline attaches the session's bearer token, performs a
// transparent token refresh on the first authorization failure with exactly
// one replay, retries transport-level failures with bounded exponential
// backoff, and tears the session down (with a redirect to the login surface)
// when refresh is impossible.
//
// The two retry mechanisms are deliberately orthogonal: the refreshAttempted
// guard bounds the auth path per request, and the network retry counter
// bounds the connectivity path, so a flaky connection can never be confused
// with an auth failure and trigger a spurious logout.
//
// Basic usage:
//
//	pipeline := transport.New(sess, authClient,
//	    transport.WithHTTPClient(&http.Client{Jar: store.Jar()}),
//	    transport.WithLoginURL("https://app.example.com/auth/login"),
//	    transport.WithNavigator(openLogin),
//	    transport.WithCurrentPath(router.CurrentPath),
//	)
//
//	resp, err := pipeline.Do(req)
//	switch {
//	case errors.Is(err, transport.ErrAuthRejected):
//	    // session already torn down, user on their way to login
//	case err != nil:
//	    var netErr *transport.NetworkError
//	    if errors.As(err, &netErr) {
//	        showToast(netErr.Message)
//	    }
//	}
//
// Error classification is a typed discrimination (*NetworkError for
// transport failures, *ServerError for 5xx, ErrAuthRejected for terminal
// authorization failures), never a runtime probe of error shapes.
//
// Refresh attempts of concurrent requests are intentionally independent: two
// requests that both see a stale token may both call the refresh endpoint.
// The per-request guard is the correctness property; cross-request dedup is a
// possible strengthening, not a requirement.
package transport
