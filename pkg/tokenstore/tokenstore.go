// Package tokenstore persists the access/refresh token pair between runs.
//
// The store is the single owner of the persisted pair: login, refresh and
// logout are the only writers, and every outgoing API call reads the current
// access token from it. Three implementations are provided: in-memory (tests
// and throwaway sessions), an encrypted file, and SQLite.
package tokenstore

import "context"

// TokenPair is the persisted credential pair. The access token is a compact
// JWT with embedded expiry and role claims; the refresh token is opaque.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// IsZero reports whether both tokens are absent.
func (p TokenPair) IsZero() bool {
	return p.Access == "" && p.Refresh == ""
}

// Store holds the persisted token pair.
//
// Get must not fail from a caller's perspective: unreadable or corrupt state
// reads as "no tokens" (ok == false). Set persists both tokens atomically,
// so a concurrent or subsequent Get observes either the old pair or the new
// one, never a mix.
type Store interface {
	Get(ctx context.Context) (TokenPair, bool)
	Set(ctx context.Context, pair TokenPair) error
	Clear(ctx context.Context) error
}
