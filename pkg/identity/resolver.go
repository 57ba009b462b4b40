package identity

import (
	"context"
	"time"

	"github.com/codingbro/school/pkg/tokenstore"
)

// State is the derived session state consumed by route guards. It is
// recomputed from the stored tokens on demand and never persisted, so it
// cannot go stale relative to the token pair.
type State struct {
	IsAuthenticated bool
	Role            Role
	IsManager       bool
}

// Resolver derives session state from a token store.
type Resolver struct {
	store tokenstore.Store
}

func NewResolver(store tokenstore.Store) *Resolver {
	return &Resolver{store: store}
}

// State computes the current session state at the given instant.
// IsAuthenticated is true iff a non-empty access token exists; the role is
// derived from its claims.
func (r *Resolver) State(ctx context.Context, now time.Time) State {
	pair, ok := r.store.Get(ctx)
	if !ok || pair.Access == "" {
		return State{}
	}

	role := DeriveRole(DecodeClaims(pair.Access))
	return State{
		IsAuthenticated: true,
		Role:            role,
		IsManager:       role == RoleManager,
	}
}

// Claims decodes the stored access token, or nil when no token is stored or
// it cannot be decoded.
func (r *Resolver) Claims(ctx context.Context) *Claims {
	pair, ok := r.store.Get(ctx)
	if !ok || pair.Access == "" {
		return nil
	}
	return DecodeClaims(pair.Access)
}

// IsAuthenticated reports whether a non-empty access token is stored.
func (r *Resolver) IsAuthenticated(ctx context.Context) bool {
	pair, ok := r.store.Get(ctx)
	return ok && pair.Access != ""
}

// IsManager reports whether the stored token carries the manager role.
func (r *Resolver) IsManager(ctx context.Context) bool {
	return DeriveRole(r.Claims(ctx)) == RoleManager
}
