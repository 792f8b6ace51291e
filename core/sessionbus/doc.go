// Package sessionbus provides in-process fan-out of session-lifecycle events.
//
// UI-level collaborators subscribe to learn about token transitions (set,
// removed, expired) without the session core depending on them. Subscribers
// must call the returned unsubscribe function on teardown to avoid leaks.
package sessionbus
