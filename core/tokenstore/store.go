package tokenstore

import (
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultTTLDays bounds how long a persisted token entry survives in
	// storage. This is a maximum horizon independent of the token's own
	// embedded expiry; in normal operation the embedded expiry is the
	// binding constraint.
	DefaultTTLDays = 7
)

// Store persists exactly one session token in a cookie jar, scoped so the
// entry is visible across all subdomains of the configured parent domain.
// A token written while addressing tenantA.example.com is readable while
// addressing tenantB.example.com, because both derive the same storage domain.
type Store struct {
	jar      http.CookieJar
	base     *url.URL
	mainHost string
	prodHost string

	ttl      time.Duration
	secure   bool
	sameSite http.SameSite

	domainOnce sync.Once
	domain     string
	storage    *url.URL
}

// Option configures a Store.
type Option func(*Store)

// WithJar shares an existing cookie jar with the store. Pass the same jar to
// the HTTP client so credentials travel with outbound requests.
func WithJar(jar http.CookieJar) Option {
	return func(s *Store) {
		if jar != nil {
			s.jar = jar
		}
	}
}

// WithMainDomain sets the development main domain, optionally with a port
// (e.g. "localhost:3000"). The port is stripped before host matching.
func WithMainDomain(domain string) Option {
	return func(s *Store) {
		s.mainHost = stripPort(domain)
	}
}

// WithProductionDomain sets the production parent domain (e.g. "example.com").
// When the current host is under it, entries are scoped to ".<domain>" so all
// tenant subdomains share them.
func WithProductionDomain(domain string) Option {
	return func(s *Store) {
		s.prodHost = strings.TrimPrefix(domain, ".")
	}
}

// WithTTLDays sets the storage expiration horizon in days.
func WithTTLDays(days int) Option {
	return func(s *Store) {
		if days > 0 {
			s.ttl = time.Duration(days) * 24 * time.Hour
		}
	}
}

// WithSecure overrides the Secure attribute. By default it follows the base
// URL scheme: true for https, false otherwise.
func WithSecure(secure bool) Option {
	return func(s *Store) {
		s.secure = secure
	}
}

// WithSameSite sets the SameSite policy. Default is Lax.
func WithSameSite(sameSite http.SameSite) Option {
	return func(s *Store) {
		s.sameSite = sameSite
	}
}

// New creates a token store bound to the given current-location URL.
// The URL plays the role the address bar plays in a browser: its host drives
// storage-domain derivation and its scheme drives the Secure default.
func New(currentURL string, opts ...Option) (*Store, error) {
	base, err := url.Parse(currentURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if base.Scheme == "" || base.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, currentURL)
	}

	s := &Store{
		base:     base,
		ttl:      DefaultTTLDays * 24 * time.Hour,
		secure:   base.Scheme == "https",
		sameSite: http.SameSiteLaxMode,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.prodHost != "" {
		// A bare public suffix like "com" would make the shared cookie a
		// supercookie; refuse the configuration outright.
		if _, err := publicsuffix.EffectiveTLDPlusOne(s.prodHost); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProductionDomain, s.prodHost)
		}
	}

	if s.jar == nil {
		// The jar is private to this client, so the permissive non-PSL mode
		// is safe here. It also accepts development domains like "localhost"
		// that the public suffix list would reject as a public suffix.
		jar, err := cookiejar.New(&cookiejar.Options{})
		if err != nil {
			return nil, err
		}
		s.jar = jar
	}

	return s, nil
}

// Jar exposes the underlying cookie jar so the HTTP client can share it.
func (s *Store) Jar() http.CookieJar {
	return s.jar
}

// Domain returns the derived storage domain. The derivation is memoized:
// the current host does not change within a session, so it is computed once
// per store lifetime.
//
// Derivation order:
//  1. current host contains the bare main domain -> the bare main host
//     (development: no leading dot, shared via domain-cookie semantics);
//  2. current host contains the production domain -> "." + production domain
//     (wildcard-subdomain scope);
//  3. otherwise the literal current host (no cross-subdomain sharing).
func (s *Store) Domain() string {
	s.derive()
	return s.domain
}

func (s *Store) derive() {
	s.domainOnce.Do(func() {
		host := s.base.Hostname()
		switch {
		case s.mainHost != "" && strings.Contains(host, s.mainHost):
			s.domain = s.mainHost
		case s.prodHost != "" && strings.Contains(host, s.prodHost):
			s.domain = "." + s.prodHost
		default:
			s.domain = host
		}
		s.storage = &url.URL{
			Scheme: s.base.Scheme,
			Host:   strings.TrimPrefix(s.domain, "."),
			Path:   "/",
		}
	})
}

// storageURL is the canonical address all jar reads and writes go through.
// The stdlib jar partitions entries by host, so two stores bound to sibling
// hosts ("tenanta.localhost", "tenantb.localhost") would otherwise write into
// disjoint partitions and never see each other's entries. Addressing the jar
// by the derived storage domain itself gives every host that derives the same
// domain the same partition, which is the sharing rule.
func (s *Store) storageURL() *url.URL {
	s.derive()
	return s.storage
}

// Set persists a value under the given name, overwriting any previous entry.
// The write is verified by reading the entry back; a dropped write surfaces
// as ErrWriteFailed instead of a phantom logged-in state.
func (s *Store) Set(name, value string) error {
	if name == "" {
		return ErrEmptyName
	}

	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.Domain(),
		Expires:  time.Now().Add(s.ttl),
		Secure:   s.secure,
		SameSite: s.sameSite,
	}

	s.jar.SetCookies(s.storageURL(), []*http.Cookie{cookie})

	stored, err := s.Get(name)
	if err != nil || stored != value {
		return fmt.Errorf("%w: entry %q did not persist", ErrWriteFailed, name)
	}
	return nil
}

// Get returns the value stored under name. Matching is exact on the cookie
// name, so a target name that is a prefix of another entry's name never
// collides with it.
func (s *Store) Get(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}

	for _, cookie := range s.jar.Cookies(s.storageURL()) {
		if cookie.Name == name {
			return cookie.Value, nil
		}
	}
	return "", ErrTokenNotFound
}

// Delete removes the entry under name by rewriting it with an already-past
// expiration under the same derived domain, so the jar actually evicts it
// instead of keeping an orphaned duplicate under a different scope.
// Deleting a missing entry is not an error.
func (s *Store) Delete(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	cookie := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   s.Domain(),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   s.secure,
		SameSite: s.sameSite,
	}

	s.jar.SetCookies(s.storageURL(), []*http.Cookie{cookie})
	return nil
}

// stripPort removes a trailing :port from a configured domain string.
func stripPort(domain string) string {
	if strings.Contains(domain, ":") {
		if host, _, err := net.SplitHostPort(domain); err == nil {
			return host
		}
	}
	return domain
}
