// Package session manages the client-side session-token lifecycle.
//
// The Manager is the only component other subsystems should consult about
// the current session. It decodes tokens through core/token, persists them
// through a Store (normally core/tokenstore), and broadcasts lifecycle
// transitions through core/sessionbus.
//
// Conceptually the session moves through two resting states:
//
//	Absent --SetToken--> Present&Valid --expiry detected on read--> Absent
//	Present&Valid --RemoveToken--> Absent
//
// There is no Present&Invalid resting state: a read that discovers an
// expired token evicts it and reports Absent atomically.
//
// Basic usage:
//
//	mgr := session.NewManager(codec, store, bus)
//
//	if err := mgr.SetToken(raw); err != nil {
//	    // invalid, expired, or storage failure; nothing was persisted-and-hidden
//	}
//
//	if tok, err := mgr.Token(); err == nil {
//	    req.Header.Set("Authorization", "Bearer "+tok)
//	}
package session
