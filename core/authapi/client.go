package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tenantkit/tenantkit/core/logger"
)

const (
	loginPath   = "/sessions"
	refreshPath = "/refresh-token"
	logoutPath  = "/auth/logout"
)

// Client talks to the backend session endpoints. It deliberately bypasses
// the request pipeline: login and refresh must not themselves trigger
// refresh cycles, and the refresh credential is a server-managed httpOnly
// cookie that rides on the shared jar, never an Authorization header.
//
// Client implements transport.Refresher.
type Client struct {
	base   *url.URL
	client *http.Client
	log    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Give it the token store's
// jar so the refresh credential travels with requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger configures structured logging for the client.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates an auth API client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		base:   base,
		client: &http.Client{},
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token via POST /sessions.
// The returned token has not been persisted; hand it to the session manager.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(loginPath), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("login rejected", logger.StatusCode(resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrLoginFailed, resp.StatusCode)
	}

	return decodeToken(resp.Body)
}

// Refresh mints a new session token via PATCH /refresh-token. No request
// body and no Authorization header: the server identifies the session by its
// own refresh credential on the jar.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.endpoint(refreshPath), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("refresh rejected", logger.StatusCode(resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}

	return decodeToken(resp.Body)
}

// Logout asks the backend to invalidate the session via POST /auth/logout.
// Best-effort: callers must tear the local session down whether or not this
// returns an error.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(logoutPath), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLogoutFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLogoutFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrLogoutFailed, resp.StatusCode)
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	return c.base.JoinPath(path).String()
}

func decodeToken(body io.Reader) (string, error) {
	var session sessionResponse
	if err := json.NewDecoder(body).Decode(&session); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if session.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidResponse)
	}
	return session.Token, nil
}
