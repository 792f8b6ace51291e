package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tenantkit/tenantkit/core/i18n"
	"github.com/tenantkit/tenantkit/core/logger"
	"github.com/tenantkit/tenantkit/core/session"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "

	// DefaultMaxNetworkRetries bounds replays after transport-level failures.
	DefaultMaxNetworkRetries = 3
	// DefaultAuthPathPrefix marks the auth surface; no login redirect is
	// issued while the current route is already under it.
	DefaultAuthPathPrefix = "/auth"

	msgNetworkError = "errors.network"
	msgServerError  = "errors.server"
)

// Refresher mints a new session token from the server-managed refresh
// credential. It must not require an Authorization header; the credential
// rides on the shared cookie jar.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// RefresherFunc adapts a function to the Refresher interface.
type RefresherFunc func(ctx context.Context) (string, error)

// Refresh implements Refresher.
func (f RefresherFunc) Refresh(ctx context.Context) (string, error) {
	return f(ctx)
}

// retryState tracks the per-request retry budget. Never shared across
// requests: each Do call owns one.
type retryState struct {
	refreshAttempted  bool
	networkRetryCount int
}

// Pipeline wraps outbound API calls so authentication and transient-failure
// handling apply uniformly. Per request it:
//
//  1. attaches the bearer token when the session has one;
//  2. on a first 401, refreshes the token once and replays exactly once;
//     a second 401 is terminal: session teardown, redirect to the login
//     surface (unless already on it), ErrAuthRejected;
//  3. retries transport-level failures with bounded exponential backoff
//     (1s, 2s, 4s by default), independent of the auth path;
//  4. converts 5xx into *ServerError without status-based retries.
type Pipeline struct {
	client    *http.Client
	sess      *session.Manager
	refresher Refresher

	loginURL       string
	authPathPrefix string
	currentPath    func() string
	navigate       func(url string)

	maxNetworkRetries int
	newBackOff        func() backoff.BackOff
	sleep             func(ctx context.Context, d time.Duration) error

	translator *i18n.Translator
	log        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHTTPClient sets the underlying HTTP client. Give it the token store's
// jar so credentials travel with every request.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		if client != nil {
			p.client = client
		}
	}
}

// WithLoginURL sets the login surface URL used on terminal auth failure.
func WithLoginURL(url string) Option {
	return func(p *Pipeline) {
		p.loginURL = url
	}
}

// WithAuthPathPrefix overrides the auth surface path prefix used for
// redirect loop avoidance.
func WithAuthPathPrefix(prefix string) Option {
	return func(p *Pipeline) {
		if prefix != "" {
			p.authPathPrefix = prefix
		}
	}
}

// WithNavigator sets the callback invoked to move the user to the login
// surface on terminal auth failure. Without one, teardown still happens but
// no navigation is attempted.
func WithNavigator(navigate func(url string)) Option {
	return func(p *Pipeline) {
		p.navigate = navigate
	}
}

// WithCurrentPath supplies the current route so redirects can be suppressed
// while already on the auth surface.
func WithCurrentPath(currentPath func() string) Option {
	return func(p *Pipeline) {
		p.currentPath = currentPath
	}
}

// WithMaxNetworkRetries bounds transport-level retries.
func WithMaxNetworkRetries(n int) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.maxNetworkRetries = n
		}
	}
}

// WithBackOffFactory overrides how the per-request backoff schedule is built.
func WithBackOffFactory(factory func() backoff.BackOff) Option {
	return func(p *Pipeline) {
		if factory != nil {
			p.newBackOff = factory
		}
	}
}

// WithSleeper overrides the wait primitive between network retries.
// Intended for tests; the default honors context cancellation.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pipeline) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// WithTranslator sets the translator for user-facing failure messages.
func WithTranslator(t *i18n.Translator) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.translator = t
		}
	}
}

// WithLogger configures structured logging for the pipeline.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a request pipeline over the given session manager. The
// refresher may be nil, in which case any 401 is immediately terminal.
func New(sess *session.Manager, refresher Refresher, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:            &http.Client{},
		sess:              sess,
		refresher:         refresher,
		authPathPrefix:    DefaultAuthPathPrefix,
		maxNetworkRetries: DefaultMaxNetworkRetries,
		newBackOff:        defaultBackOffFactory,
		sleep:             sleepContext,
		translator:        defaultTranslator(),
		log:               slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Do dispatches the request through the pipeline. The request body, when
// present, must be replayable via GetBody (http.NewRequest sets this up for
// the common body types).
func (p *Pipeline) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		return nil, ErrBodyNotReplayable
	}

	state := &retryState{}
	bo := p.newBackOff()

	for {
		attempt, err := p.prepare(req)
		if err != nil {
			return nil, err
		}

		resp, err := p.client.Do(attempt)
		if err != nil {
			if retryErr := p.retryNetworkFailure(req.Context(), state, bo, err); retryErr != nil {
				return nil, retryErr
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			drainAndClose(resp)
			if err := p.refreshOnce(req.Context(), state); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode >= http.StatusInternalServerError:
			drainAndClose(resp)
			p.log.Error("server fault",
				logger.Method(req.Method),
				logger.Path(req.URL.Path),
				logger.StatusCode(resp.StatusCode))
			return nil, &ServerError{
				StatusCode: resp.StatusCode,
				Message:    p.translator.T(msgServerError),
			}

		default:
			return resp, nil
		}
	}
}

// prepare clones the original request for one dispatch attempt and attaches
// the bearer token when a valid session exists.
func (p *Pipeline) prepare(req *http.Request) (*http.Request, error) {
	attempt := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		attempt.Body = body
	}

	if raw, err := p.sess.Token(); err == nil {
		attempt.Header.Set(authorizationHeader, bearerPrefix+raw)
	}

	return attempt, nil
}

// retryNetworkFailure consumes one unit of the network retry budget and waits
// out the backoff. A non-nil return means the failure is final. Context
// cancellation is never retried; it surfaces as the context's own error.
func (p *Pipeline) retryNetworkFailure(ctx context.Context, state *retryState, bo backoff.BackOff, cause error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if state.networkRetryCount >= p.maxNetworkRetries {
		return &NetworkError{Err: cause, Message: p.translator.T(msgNetworkError)}
	}
	state.networkRetryCount++

	wait := bo.NextBackOff()
	if wait == backoff.Stop {
		return &NetworkError{Err: cause, Message: p.translator.T(msgNetworkError)}
	}

	p.log.Warn("transport failure, retrying",
		logger.Error(cause),
		logger.Attempt(state.networkRetryCount),
		logger.Duration(wait))

	return p.sleep(ctx, wait)
}

// refreshOnce performs the single-flight-per-request refresh cycle. The
// refreshAttempted guard is the critical loop breaker: without it, a backend
// that rejects even freshly-refreshed tokens would trigger unbounded refresh
// attempts. A nil return means the caller should replay the request.
func (p *Pipeline) refreshOnce(ctx context.Context, state *retryState) error {
	if state.refreshAttempted || p.refresher == nil {
		return p.terminalAuthFailure(ErrAuthRejected)
	}
	state.refreshAttempted = true

	raw, err := p.refresher.Refresh(ctx)
	if err != nil {
		return p.terminalAuthFailure(fmt.Errorf("%w: refresh failed: %w", ErrAuthRejected, err))
	}

	if err := p.sess.SetToken(raw); err != nil {
		return p.terminalAuthFailure(fmt.Errorf("%w: storing refreshed token: %w", ErrAuthRejected, err))
	}

	p.log.Info("session token refreshed")
	return nil
}

// terminalAuthFailure tears the session down and moves the user to the login
// surface, unless the current route is already under the auth path prefix.
func (p *Pipeline) terminalAuthFailure(cause error) error {
	if err := p.sess.RemoveToken(); err != nil {
		p.log.Error("session teardown failed", logger.Error(err))
	}

	if p.navigate != nil && p.loginURL != "" {
		path := ""
		if p.currentPath != nil {
			path = p.currentPath()
		}
		if !strings.HasPrefix(path, p.authPathPrefix) {
			p.navigate(p.loginURL)
		}
	}

	return cause
}

// defaultBackOffFactory yields the 1s, 2s, 4s schedule: exponential with no
// jitter so waits are exact and testable.
func defaultBackOffFactory() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// sleepContext waits out the backoff delay, returning early on cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// defaultTranslator carries the built-in English failure messages.
func defaultTranslator() *i18n.Translator {
	loc, err := i18n.New(i18n.WithTranslations(i18n.DefaultLang, map[string]string{
		msgNetworkError: "We're having trouble reaching the server. Check your connection and try again.",
		msgServerError:  "Something went wrong on our side. Please try again later.",
	}))
	if err != nil {
		panic(err)
	}
	return loc.Translator(i18n.DefaultLang)
}

// drainAndClose releases the response so the underlying connection can be
// reused before a replay.
func drainAndClose(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
