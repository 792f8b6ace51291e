package tenantkit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tenantkit/tenantkit/core/authapi"
	"github.com/tenantkit/tenantkit/core/logger"
	"github.com/tenantkit/tenantkit/core/session"
	"github.com/tenantkit/tenantkit/core/sessionbus"
	"github.com/tenantkit/tenantkit/core/token"
	"github.com/tenantkit/tenantkit/core/tokenstore"
	"github.com/tenantkit/tenantkit/core/transport"
)

// Client assembles the session core for one browsing context: codec, store,
// event bus, session manager, auth API client, and request pipeline, all
// sharing one cookie jar. Construct one per application start and pass it by
// reference; there is no hidden module-level state.
type Client struct {
	Session  *session.Manager
	Bus      *sessionbus.Bus
	Auth     *authapi.Client
	Pipeline *transport.Pipeline
	Store    *tokenstore.Store

	log *slog.Logger
}

// Option configures the Client assembly.
type Option func(*assembly)

type assembly struct {
	log         *slog.Logger
	navigate    func(url string)
	currentPath func() string
}

// WithLogger sets the logger shared by all assembled components.
func WithLogger(log *slog.Logger) Option {
	return func(a *assembly) {
		if log != nil {
			a.log = log
		}
	}
}

// WithNavigator sets the callback that moves the user to the login surface
// on terminal auth failure.
func WithNavigator(navigate func(url string)) Option {
	return func(a *assembly) {
		a.navigate = navigate
	}
}

// WithCurrentPath supplies the current route for redirect loop avoidance.
func WithCurrentPath(currentPath func() string) Option {
	return func(a *assembly) {
		a.currentPath = currentPath
	}
}

// New assembles a client from configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	a := &assembly{
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}

	store, err := tokenstore.New(cfg.AppURL,
		tokenstore.WithMainDomain(cfg.MainDomain),
		tokenstore.WithProductionDomain(cfg.ProductionDomain),
	)
	if err != nil {
		return nil, err
	}

	codec := token.NewCodec()
	bus := sessionbus.New(sessionbus.WithLogger(a.log))
	sess := session.NewManager(codec, store, bus)

	// One jar for everything: the persisted token, the server-managed
	// refresh credential, and tenant identification cookies all travel
	// together on every outbound request.
	httpClient := &http.Client{Jar: store.Jar()}

	auth, err := authapi.New(cfg.APIBaseURL,
		authapi.WithHTTPClient(httpClient),
		authapi.WithLogger(a.log),
	)
	if err != nil {
		return nil, err
	}

	loginURL, err := cfg.loginURL()
	if err != nil {
		return nil, err
	}

	pipeline := transport.New(sess, auth,
		transport.WithHTTPClient(httpClient),
		transport.WithLoginURL(loginURL),
		transport.WithAuthPathPrefix(cfg.AuthPathPrefix),
		transport.WithNavigator(a.navigate),
		transport.WithCurrentPath(a.currentPath),
		transport.WithLogger(a.log),
	)

	return &Client{
		Session:  sess,
		Bus:      bus,
		Auth:     auth,
		Pipeline: pipeline,
		Store:    store,
		log:      a.log,
	}, nil
}

// Do dispatches a request through the pipeline.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.Pipeline.Do(req)
}

// Login authenticates against the backend and establishes the local session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	raw, err := c.Auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return c.Session.SetToken(raw)
}

// Logout tears the local session down and asks the backend to invalidate it.
// The server-side call is best-effort: its failure is logged, not returned,
// so the local teardown never blocks on the network.
func (c *Client) Logout(ctx context.Context) error {
	teardownErr := c.Session.RemoveToken()

	if err := c.Auth.Logout(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Warn("server-side logout failed", logger.Error(err))
	}

	return teardownErr
}

// Config provides environment-based configuration for the client assembly.
type Config struct {
	// AppURL is the current location of the dashboard, the equivalent of the
	// address bar: scheme and host drive storage-domain derivation.
	AppURL string `env:"APP_URL,required"`

	// APIBaseURL is the REST backend root.
	APIBaseURL string `env:"API_BASE_URL,required"`

	// MainDomain is the development main domain, optionally with a port.
	MainDomain string `env:"MAIN_DOMAIN" envDefault:"localhost:3000"`

	// ProductionDomain is the parent domain shared by tenant subdomains.
	ProductionDomain string `env:"PRODUCTION_DOMAIN" envDefault:""`

	// LoginPath is the path of the login surface on the app host.
	LoginPath string `env:"LOGIN_PATH" envDefault:"/auth/login"`

	// AuthPathPrefix marks routes belonging to the auth surface.
	AuthPathPrefix string `env:"AUTH_PATH_PREFIX" envDefault:"/auth"`
}

// loginURL computes the login surface URL from the configured app location,
// never from a hardcoded host.
func (c Config) loginURL() (string, error) {
	base, err := url.Parse(c.AppURL)
	if err != nil {
		return "", err
	}
	return base.JoinPath(c.LoginPath).String(), nil
}
