package domain

import "context"

// SessionCache resolves bearer tokens to cached identities. The relational
// store remains the source of truth; the cache is a read-through layer with
// sliding expiration on both the token and the identity snapshot.
type SessionCache interface {
	// Resolve maps a raw bearer token to an identity. An unknown or expired
	// token, or an unreachable cache, yields ErrNotAuthenticated. This is a
	// security boundary and fails closed.
	Resolve(ctx context.Context, token string) (*Identity, error)

	// Establish stores token -> userID and caches the identity snapshot.
	Establish(ctx context.Context, token string, identity Identity) error

	// Drop removes the token mapping and the cached identity.
	Drop(ctx context.Context, token string, userID int64) error

	// Invalidate evicts only the identity snapshot, forcing a store reload
	// on the next resolve.
	Invalidate(ctx context.Context, userID int64) error
}
