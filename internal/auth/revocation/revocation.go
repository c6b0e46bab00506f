// Package revocation tracks logged-out access tokens by jti until their
// natural expiry, so a revoked token cannot be replayed for the rest of
// its lifetime.
package revocation

import (
	"context"
	"time"
)

// TokenRevocationList is the interface the auth middleware and the logout
// path share.
type TokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
