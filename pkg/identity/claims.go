// Package identity answers "who is the current user" from the locally
// stored access token, without a network round trip.
//
// The access token is decoded, not verified: signature checks are the
// backend's job, and every API call is re-authenticated server-side anyway.
// Decoding exists only to derive UI-facing state (logged in, manager role,
// expiry) cheaply on every page of the client.
package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the application role claim carried in the access token.
type Role string

const (
	RoleManager Role = "MANAGER"
	RoleStudent Role = "STUDENT"

	// RoleUnknown is returned for missing claims and for role values not in
	// the static set above. Unrecognized roles never grant capability.
	RoleUnknown Role = ""
)

// Claims are the decoded access-token claims the client cares about.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the application-specific role claim ("MANAGER", "STUDENT").
	Role string `json:"role,omitempty"`
}

// DecodeClaims parses the payload segment of a compact JWT without verifying
// its signature. Any malformed input (wrong segment count, bad base64, bad
// JSON) yields nil; callers treat nil as "unauthenticated", never as an
// error to surface.
func DecodeClaims(token string) *Claims {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	return &claims
}

// ExpiredAt reports whether the token is expired at the given instant. A
// token whose exp equals now exactly is already expired, and a token without
// an exp claim is treated as expired.
func (c *Claims) ExpiredAt(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return true
	}
	return !now.Before(c.ExpiresAt.Time)
}

// DeriveRole maps the role claim onto the known role set. Unknown values
// and nil claims map to RoleUnknown.
func DeriveRole(c *Claims) Role {
	if c == nil {
		return RoleUnknown
	}
	switch Role(c.Role) {
	case RoleManager:
		return RoleManager
	case RoleStudent:
		return RoleStudent
	default:
		return RoleUnknown
	}
}
