package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkit/tenantkit/core/i18n"
	"github.com/tenantkit/tenantkit/core/session"
	"github.com/tenantkit/tenantkit/core/sessionbus"
	"github.com/tenantkit/tenantkit/core/token"
	"github.com/tenantkit/tenantkit/core/transport"
)

var testNow = time.Unix(1700000000, 0)

func fixedClock() time.Time { return testNow }

func sessionToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(testNow),
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return raw
}

// memStore is an in-memory session.Store, keeping jar mechanics out of
// pipeline tests.
type memStore struct {
	m map[string]string
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string]string)}
}

func (s *memStore) Set(name, value string) error {
	s.m[name] = value
	return nil
}

func (s *memStore) Get(name string) (string, error) {
	value, ok := s.m[name]
	if !ok {
		return "", errors.New("not found")
	}
	return value, nil
}

func (s *memStore) Delete(name string) error {
	delete(s.m, name)
	return nil
}

func newSessionManager(t *testing.T) *session.Manager {
	t.Helper()
	codec := token.NewCodec(token.WithClock(fixedClock))
	bus := sessionbus.New(sessionbus.WithClock(fixedClock))
	return session.NewManager(codec, newMemStore(), bus, session.WithClock(fixedClock))
}

// refresherStub counts calls and returns a scripted result.
type refresherStub struct {
	calls int32
	raw   string
	err   error
}

func (r *refresherStub) Refresh(context.Context) (string, error) {
	atomic.AddInt32(&r.calls, 1)
	if r.err != nil {
		return "", r.err
	}
	return r.raw, nil
}

// failNTimes is a RoundTripper that fails the first n attempts and then
// returns 200 responses.
type failNTimes struct {
	n     int
	seen  int
	cause error
}

func (f *failNTimes) RoundTrip(*http.Request) (*http.Response, error) {
	f.seen++
	if f.seen <= f.n {
		return nil, f.cause
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("ok")),
		Header:     http.Header{},
	}, nil
}

func TestPipeline_BearerAttachment(t *testing.T) {
	t.Parallel()

	t.Run("attaches the session token", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		sess := newSessionManager(t)
		raw := sessionToken(t, "user-1", testNow.Add(time.Hour))
		require.NoError(t, sess.SetToken(raw))

		p := transport.New(sess, nil)

		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := p.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "Bearer "+raw, gotAuth)
	})

	t.Run("sends no header without a session", func(t *testing.T) {
		t.Parallel()

		headerSeen := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headerSeen = r.Header.Get("Authorization") != ""
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		p := transport.New(newSessionManager(t), nil)

		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := p.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.False(t, headerSeen)
	})
}

func TestPipeline_RefreshAndReplay(t *testing.T) {
	t.Parallel()

	t.Run("refreshes once on 401 and replays with the new token", func(t *testing.T) {
		t.Parallel()

		newRaw := sessionToken(t, "user-1", testNow.Add(time.Hour))

		var hits int32
		var replayAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&hits, 1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			replayAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		sess := newSessionManager(t)
		refresher := &refresherStub{raw: newRaw}
		p := transport.New(sess, refresher)

		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := p.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
		assert.Equal(t, "Bearer "+newRaw, replayAuth)
		assert.True(t, sess.IsAuthenticated())
	})

	t.Run("replays the request body", func(t *testing.T) {
		t.Parallel()

		newRaw := sessionToken(t, "user-1", testNow.Add(time.Hour))

		var hits int32
		var replayBody string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&hits, 1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			body, _ := io.ReadAll(r.Body)
			replayBody = string(body)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		p := transport.New(newSessionManager(t), &refresherStub{raw: newRaw})

		req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(`{"name":"tenant"}`))
		require.NoError(t, err)

		resp, err := p.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, `{"name":"tenant"}`, replayBody)
	})

	t.Run("rejects bodies that cannot be replayed", func(t *testing.T) {
		t.Parallel()

		p := transport.New(newSessionManager(t), nil)

		req, err := http.NewRequest(http.MethodPost, "http://example.com", strings.NewReader("body"))
		require.NoError(t, err)
		req.GetBody = nil

		_, err = p.Do(req)
		assert.ErrorIs(t, err, transport.ErrBodyNotReplayable)
	})
}

func TestPipeline_TerminalAuthFailure(t *testing.T) {
	t.Parallel()

	newTerminalServer := func(t *testing.T) *httptest.Server {
		t.Helper()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		t.Cleanup(server.Close)
		return server
	}

	t.Run("second 401 never triggers a second refresh", func(t *testing.T) {
		t.Parallel()

		server := newTerminalServer(t)

		sess := newSessionManager(t)
		require.NoError(t, sess.SetToken(sessionToken(t, "user-1", testNow.Add(time.Hour))))

		refresher := &refresherStub{raw: sessionToken(t, "user-1", testNow.Add(2*time.Hour))}

		var navigatedTo string
		p := transport.New(sess, refresher,
			transport.WithLoginURL("https://app.example.com/auth/login"),
			transport.WithNavigator(func(url string) { navigatedTo = url }),
			transport.WithCurrentPath(func() string { return "/dashboard/members" }),
		)

		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		_, err = p.Do(req)
		assert.ErrorIs(t, err, transport.ErrAuthRejected)
		assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
		assert.False(t, sess.IsAuthenticated())
		assert.Equal(t, "https://app.example.com/auth/login", navigatedTo)
	})

	t.Run("no redirect while already on the auth surface", func(t *testing.T) {
		t.Parallel()

		server := newTerminalServer(t)

		sess := newSessionManager(t)
		refresher := &refresherStub{raw: sessionToken(t, "user-1", testNow.Add(time.Hour))}

		navigated := false
		p := transport.New(sess, refresher,
			transport.WithLoginURL("https://app.example.com/auth/login"),
			transport.WithNavigator(func(string) { navigated = true }),
			transport.WithCurrentPath(func() string { return "/auth/login" }),
		)

		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		_, err = p.Do(req)
		assert.ErrorIs(t, err, transport.ErrAuthRejected)
		assert.False(t, navigated)
	})

	t.Run("refresh failure takes the terminal path", func(t *testing.T) {
		t.Parallel()

		server := newTerminalServer(t)

		sess := newSessionManager(t)
		require.NoError(t, sess.SetToken(sessionToken(t, "user-1", testNow.Add(time.Hour))))

		refresher := &refresherStub{err: errors.New("refresh endpoint down")}

		var navigatedTo string
		p := transport.New(sess, refresher,
			transport.WithLoginURL("https://app.example.com/auth/login"),
			transport.WithNavigator(func(url string) { navigatedTo = url }),
		)

		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		_, err = p.Do(req)
		assert.ErrorIs(t, err, transport.ErrAuthRejected)
		assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
		assert.False(t, sess.IsAuthenticated())
		assert.Equal(t, "https://app.example.com/auth/login", navigatedTo)
	})

	t.Run("nil refresher makes any 401 terminal", func(t *testing.T) {
		t.Parallel()

		server := newTerminalServer(t)

		sess := newSessionManager(t)
		p := transport.New(sess, nil)

		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		_, err = p.Do(req)
		assert.ErrorIs(t, err, transport.ErrAuthRejected)
	})
}

func TestPipeline_ServerFault(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := transport.New(newSessionManager(t), nil)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	_, err = p.Do(req)

	var serverErr *transport.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusServiceUnavailable, serverErr.StatusCode)
	assert.NotEmpty(t, serverErr.Message)

	// 5xx is never retried on status alone.
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestPipeline_NetworkBackoff(t *testing.T) {
	t.Parallel()

	t.Run("retries three times with 1s, 2s, 4s waits then fails", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection refused")
		rt := &failNTimes{n: 10, cause: cause}

		var waits []time.Duration
		p := transport.New(newSessionManager(t), nil,
			transport.WithHTTPClient(&http.Client{Transport: rt}),
			transport.WithSleeper(func(_ context.Context, d time.Duration) error {
				waits = append(waits, d)
				return nil
			}),
		)

		req, err := http.NewRequest(http.MethodGet, "http://api.example.com/members", nil)
		require.NoError(t, err)

		_, err = p.Do(req)

		var netErr *transport.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.NotEmpty(t, netErr.Message)

		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, waits)
		assert.Equal(t, 4, rt.seen) // initial attempt + 3 retries, nothing more
	})

	t.Run("recovers when connectivity returns", func(t *testing.T) {
		t.Parallel()

		rt := &failNTimes{n: 2, cause: errors.New("timeout")}

		var waits []time.Duration
		p := transport.New(newSessionManager(t), nil,
			transport.WithHTTPClient(&http.Client{Transport: rt}),
			transport.WithSleeper(func(_ context.Context, d time.Duration) error {
				waits = append(waits, d)
				return nil
			}),
		)

		req, err := http.NewRequest(http.MethodGet, "http://api.example.com/members", nil)
		require.NoError(t, err)

		resp, err := p.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)
	})

	t.Run("context cancellation is not retried", func(t *testing.T) {
		t.Parallel()

		rt := &failNTimes{n: 10, cause: errors.New("dial failed")}
		p := transport.New(newSessionManager(t), nil,
			transport.WithHTTPClient(&http.Client{Transport: rt}),
		)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://api.example.com/members", nil)
		require.NoError(t, err)

		_, err = p.Do(req)
		assert.ErrorIs(t, err, context.Canceled)
		assert.LessOrEqual(t, rt.seen, 1)
	})
}

func TestPipeline_LocalizedMessages(t *testing.T) {
	t.Parallel()

	loc, err := i18n.New(
		i18n.WithTranslations("en", map[string]string{
			"errors.network": "Connection problem.",
		}),
		i18n.WithTranslations("de", map[string]string{
			"errors.network": "Verbindungsproblem.",
		}),
	)
	require.NoError(t, err)

	rt := &failNTimes{n: 10, cause: errors.New("unreachable")}
	p := transport.New(newSessionManager(t), nil,
		transport.WithHTTPClient(&http.Client{Transport: rt}),
		transport.WithSleeper(func(context.Context, time.Duration) error { return nil }),
		transport.WithTranslator(loc.Translator("de-AT")),
	)

	req, err := http.NewRequest(http.MethodGet, "http://api.example.com/members", nil)
	require.NoError(t, err)

	_, err = p.Do(req)

	var netErr *transport.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "Verbindungsproblem.", netErr.Message)
}
