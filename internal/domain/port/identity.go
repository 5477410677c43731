package port

import "context"

// IdentityVerifier validates a bearer credential and resolves the owning user.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}
