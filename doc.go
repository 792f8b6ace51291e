// Package tenantkit is the client-side session and transport toolkit for
// multi-tenant SaaS dashboards addressed through per-tenant subdomains.
//
// The toolkit solves one problem well: cross-subdomain session-token
// lifecycle management. A token established while on tenantA.example.com
// stays visible on tenantB.example.com, survives expiry through a transparent
// refresh protocol layered under automatic retries, and broadcasts its
// lifecycle transitions to decoupled consumers.
//
// The pieces compose bottom-up and can be used individually:
//
//   - core/token: decode and inspect session tokens (no local verification)
//   - core/tokenstore: cross-subdomain persistent storage for one token
//   - core/sessionbus: in-process fan-out of session-lifecycle events
//   - core/session: the facade enforcing fail-closed validity end-to-end
//   - core/transport: the request pipeline (bearer attachment, single
//     refresh-and-replay on 401, bounded network backoff)
//   - core/authapi: typed client for the backend session endpoints
//
// Or assembled in one call:
//
//	var cfg tenantkit.Config
//	config.MustLoad(&cfg)
//
//	client, err := tenantkit.New(cfg,
//	    tenantkit.WithLogger(log),
//	    tenantkit.WithNavigator(openURL),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.Login(ctx, email, password); err != nil {
//	    // credentials rejected, or token dead on arrival
//	}
//
//	resp, err := client.Do(req) // bearer attached, refresh and retries applied
package tenantkit
