package schoolsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codingbro/school/pkg/tokenstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeEnvelope writes a success envelope around data.
func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":      true,
		"status_code":  status,
		"pagination":   nil,
		"errors":       []string{},
		"data":         data,
		"service_data": nil,
	})
}

// writeAPIError writes a failure envelope with one error message.
func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":      false,
		"status_code":  status,
		"pagination":   nil,
		"errors":       []string{message},
		"data":         nil,
		"service_data": nil,
	})
}

func newTestSession(t *testing.T, server *httptest.Server, pair tokenstore.TokenPair) (*Session, tokenstore.Store) {
	t.Helper()

	store := tokenstore.NewMemory()
	if !pair.IsZero() {
		require.NoError(t, store.Set(context.Background(), pair))
	}

	client := NewSDKClient(server.URL, testLogger())
	return NewSession(client, store), store
}

func TestSessionAttachesBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		writeEnvelope(w, http.StatusOK, UserProfile{ID: "u1", Role: "STUDENT"})
	}))
	defer server.Close()

	session, _ := newTestSession(t, server, tokenstore.TokenPair{Access: "access-1", Refresh: "refresh-1"})

	profile, err := session.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", profile.ID)
	require.Equal(t, "Bearer access-1", gotAuth)
	require.NotEmpty(t, gotRequestID, "every request carries a request id")
}

// Scenario: a request fails with 401, the refresh endpoint rotates the pair,
// and the original request is retried exactly once with the new token.
func TestSessionRefreshesOnceAndRetries(t *testing.T) {
	t.Parallel()

	var refreshCalls, apiCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token/refresh/":
			refreshCalls.Add(1)

			var body struct {
				Refresh string `json:"refresh"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "refresh-old", body.Refresh)

			writeEnvelope(w, http.StatusOK, TokenResponse{Access: "access-new", Refresh: "refresh-new"})
		case "/users/me/":
			apiCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer access-new" {
				writeAPIError(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeEnvelope(w, http.StatusOK, UserProfile{ID: "u1"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	session, store := newTestSession(t, server, tokenstore.TokenPair{Access: "access-old", Refresh: "refresh-old"})

	profile, err := session.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", profile.ID)

	require.EqualValues(t, 1, refreshCalls.Load())
	require.EqualValues(t, 2, apiCalls.Load(), "original attempt plus exactly one retry")

	pair, ok := store.Get(context.Background())
	require.True(t, ok)
	require.Equal(t, tokenstore.TokenPair{Access: "access-new", Refresh: "refresh-new"}, pair)
}

// Scenario: N concurrent requests all hit 401 — exactly one refresh call is
// made and every request retries with the same refreshed token.
func TestSessionSingleFlightRefresh(t *testing.T) {
	t.Parallel()

	const concurrency = 8

	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token/refresh/":
			refreshCalls.Add(1)
			// Hold the refresh open long enough for every other request to
			// fail authorization and join the queue.
			time.Sleep(100 * time.Millisecond)
			writeEnvelope(w, http.StatusOK, TokenResponse{Access: "access-new", Refresh: "refresh-new"})
		case "/events/":
			if r.Header.Get("Authorization") != "Bearer access-new" {
				writeAPIError(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeEnvelope(w, http.StatusOK, []Event{{ID: "e1", Name: "GopherCon"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	session, _ := newTestSession(t, server, tokenstore.TokenPair{Access: "access-old", Refresh: "refresh-old"})

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			events, _, err := session.Events(context.Background(), ListParams{})
			if err == nil && len(events) != 1 {
				err = fmt.Errorf("unexpected events count %d", len(events))
			}
			errs[i] = err
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	require.EqualValues(t, 1, refreshCalls.Load(), "refresh must be single-flight")
}

// Scenario: the refresh endpoint itself rejects the refresh token — the
// store is cleared, the logout side effect fires exactly once, and callers
// get the distinguishable auth-expired error.
func TestSessionExpiresWhenRefreshRejected(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token/refresh/":
			time.Sleep(50 * time.Millisecond)
			writeAPIError(w, http.StatusUnauthorized, "refresh token invalid")
		default:
			writeAPIError(w, http.StatusUnauthorized, "token expired")
		}
	}))
	defer server.Close()

	session, store := newTestSession(t, server, tokenstore.TokenPair{Access: "access-old", Refresh: "refresh-bad"})

	var expiredCalls atomic.Int32
	session.OnExpired = func() { expiredCalls.Add(1) }

	const concurrency = 4
	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = session.Me(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.Error(t, err, "request %d", i)
		require.True(t, IsAuthExpired(err), "request %d must fail with auth-expired, got %v", i, err)
	}

	require.EqualValues(t, 1, expiredCalls.Load(), "logout side effect fires once")

	_, ok := store.Get(context.Background())
	require.False(t, ok, "tokens are cleared on expiry")
}

func TestSessionExpiresWithoutRefreshToken(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token/refresh/" {
			refreshCalls.Add(1)
		}
		writeAPIError(w, http.StatusUnauthorized, "token expired")
	}))
	defer server.Close()

	// Access token only, no refresh token at all.
	session, store := newTestSession(t, server, tokenstore.TokenPair{Access: "access-old"})

	var expired bool
	session.OnExpired = func() { expired = true }

	_, err := session.Me(context.Background())
	require.True(t, IsAuthExpired(err))
	require.ErrorIs(t, err, ErrNoRefreshToken)
	require.True(t, expired)
	require.Zero(t, refreshCalls.Load(), "no refresh call without a refresh token")

	_, ok := store.Get(context.Background())
	require.False(t, ok)
}

// A request that still fails after its single retry passes the second
// failure through untouched; it never re-enters the refresh path.
func TestSessionRetriesAtMostOnce(t *testing.T) {
	t.Parallel()

	var refreshCalls, apiCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token/refresh/":
			refreshCalls.Add(1)
			writeEnvelope(w, http.StatusOK, TokenResponse{Access: "access-new", Refresh: "refresh-new"})
		default:
			// The backend rejects even the refreshed token.
			apiCalls.Add(1)
			writeAPIError(w, http.StatusForbidden, "forbidden")
		}
	}))
	defer server.Close()

	session, _ := newTestSession(t, server, tokenstore.TokenPair{Access: "access-old", Refresh: "refresh-old"})

	_, err := session.Me(context.Background())
	require.Error(t, err)
	require.False(t, IsAuthExpired(err), "a post-retry failure is an ordinary API error")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	require.EqualValues(t, 1, refreshCalls.Load())
	require.EqualValues(t, 2, apiCalls.Load())
}

// Non-authorization failures are never intercepted.
func TestSessionPassesThroughOtherErrors(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token/refresh/" {
			refreshCalls.Add(1)
			return
		}
		writeAPIError(w, http.StatusNotFound, "no such course")
	}))
	defer server.Close()

	session, store := newTestSession(t, server, tokenstore.TokenPair{Access: "access-1", Refresh: "refresh-1"})

	_, err := session.Course(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "no such course", apiErr.Message)

	require.Zero(t, refreshCalls.Load())

	pair, ok := store.Get(context.Background())
	require.True(t, ok, "session untouched by ordinary errors")
	require.Equal(t, "access-1", pair.Access)
}

func TestSessionLogout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil)
	}))
	defer server.Close()

	session, store := newTestSession(t, server, tokenstore.TokenPair{Access: "a", Refresh: "r"})

	require.NoError(t, session.Logout(context.Background()))
	_, ok := store.Get(context.Background())
	require.False(t, ok)
}
