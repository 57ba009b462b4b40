package schoolsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/codingbro/school/pkg/tokenstore"
)

// Session wraps every authenticated API call so token handling is invisible
// to callers: it attaches the stored bearer token, intercepts authorization
// failures, refreshes the pair once, and replays the failed request.
//
// Refreshing is single-flight. The first request to see a 401/403 owns the
// refresh; requests that fail while it is in flight join a waiter queue and
// observe the same outcome. At most one refresh call is ever in flight per
// Session, and no request retries more than once.
type Session struct {
	// OnExpired is invoked exactly once per irrecoverable auth failure
	// (refresh rejected, or no refresh token). The host application hangs
	// its logout/redirect side effect here. May be nil.
	OnExpired func()

	client *SDKClient
	store  tokenstore.Store

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome
}

// refreshOutcome is what a queued request receives when the in-flight
// refresh settles. Each waiter channel is resolved exactly once.
type refreshOutcome struct {
	access string
	err    error
}

// NewSession creates a Session over the given client and token store. The
// store is the single source of truth for the pair; Session never caches
// tokens elsewhere.
func NewSession(client *SDKClient, store tokenstore.Store) *Session {
	return &Session{
		client: client,
		store:  store,
	}
}

// Store exposes the underlying token store (route guards build an identity
// resolver over it).
func (s *Session) Store() tokenstore.Store { return s.store }

// Logout clears the stored token pair. It does not call the backend; access
// simply lapses when the tokens expire server-side.
func (s *Session) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// doAuthRequest performs an authenticated request with the refresh-and-retry
// lifecycle described on Session.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	send := func(token string) (*http.Response, error) {
		req, err := s.client.newRequest(ctx, method, path, query, payload)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := s.client.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}
		return resp, nil
	}

	var access string
	if pair, ok := s.store.Get(ctx); ok {
		access = pair.Access
	}

	resp, err := send(access)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	// Authorization failure: settle on one refresh outcome, then retry the
	// original request at most once. A second 401 on the retry passes
	// through untouched, which is what breaks the loop on a persistently
	// failing backend.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	token, err := s.refreshedToken(ctx)
	if err != nil {
		return nil, err
	}

	return send(token)
}

// refreshedToken returns a fresh access token, starting a refresh if none is
// in flight and otherwise joining the queue for the in-flight one.
func (s *Session) refreshedToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.refreshing {
		waiter := make(chan refreshOutcome, 1)
		s.waiters = append(s.waiters, waiter)
		s.mu.Unlock()

		select {
		case outcome := <-waiter:
			return outcome.access, outcome.err
		case <-ctx.Done():
			// The waiter gives up, but the refresh itself runs on: its
			// outcome still settles the queue and the store.
			return "", ctx.Err()
		}
	}
	s.refreshing = true
	s.mu.Unlock()

	access, err := s.refresh(ctx)

	s.mu.Lock()
	s.refreshing = false
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	// Drain the queue: every waiter observes this refresh's outcome, so
	// queued failures collapse into one user-visible result.
	for _, waiter := range waiters {
		waiter <- refreshOutcome{access: access, err: err}
	}

	return access, err
}

// refresh performs the actual refresh exchange. Only the single-flight owner
// runs it, so the expiry side effect fires at most once per failure.
func (s *Session) refresh(ctx context.Context) (string, error) {
	log := s.client.Logger

	pair, ok := s.store.Get(ctx)
	if !ok || pair.Refresh == "" {
		log.Info("authorization failed with no refresh token; ending session")
		s.expire(ctx)
		return "", &AuthExpiredError{Reason: ErrNoRefreshToken}
	}

	tokens, err := s.client.RefreshToken(ctx, pair.Refresh)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// An aborted refresh says nothing about the tokens; keep them.
			return "", fmt.Errorf("token refresh aborted: %w", err)
		}
		log.Info("token refresh rejected; ending session", "err", err)
		s.expire(ctx)
		return "", &AuthExpiredError{Reason: err}
	}

	rotated := tokenstore.TokenPair{Access: tokens.Access, Refresh: tokens.Refresh}
	if rotated.Refresh == "" {
		// Backend kept the old refresh token.
		rotated.Refresh = pair.Refresh
	}
	if err := s.store.Set(ctx, rotated); err != nil {
		return "", fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	log.Debug("access token refreshed")
	return rotated.Access, nil
}

// expire clears the stored pair and fires the logout side effect.
func (s *Session) expire(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.client.Logger.Warn("failed to clear tokens on expiry", "err", err)
	}
	if s.OnExpired != nil {
		s.OnExpired()
	}
}
