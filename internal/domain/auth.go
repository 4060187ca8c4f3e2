package domain

import "time"

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
// Authentication itself lives in the external identity layer; this port is
// the seam through which the actor ID reaches every mutating operation.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
