// ABOUTME: Best-effort decoding of JWT session tokens for display
// ABOUTME: Signatures are not checked; the backend remains the authority

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the display-only fields of a JWT session token
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// TokenClaims decodes the token payload without verifying it. Opaque tokens
// return ok=false.
func TokenClaims(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}

	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, false
	}

	c := Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, true
}
