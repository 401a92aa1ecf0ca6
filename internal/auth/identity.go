package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
)

// Identity is the resolved caller of an authenticated request. Role comes
// from the session snapshot, UserID from the backing account row.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   enums.Role
	Token  string
}

type identityKey struct{}

// WithIdentity binds the identity to the request context.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom extracts the identity bound by the session middleware.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}
