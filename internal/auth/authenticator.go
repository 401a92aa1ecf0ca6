// Package auth owns session credentials: issuing them at signup and login,
// validating them per request, and recording the audit trail.
package auth

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nearbuyhq/nearbuy-backend/internal/store"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db/models"
	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
)

// Authenticator validates opaque session tokens against the session table.
// Expired rows are deleted lazily on first access past expiry; there is no
// background sweeper.
type Authenticator struct {
	sessions *store.Store[models.Session]
	users    *store.Store[models.User]
	logg     *logger.Logger
	now      func() time.Time
}

// NewAuthenticator builds the per-request session validator.
func NewAuthenticator(db *gorm.DB, logg *logger.Logger) *Authenticator {
	return &Authenticator{
		sessions: store.New[models.Session](db),
		users:    store.New[models.User](db),
		logg:     logg,
		now:      time.Now,
	}
}

// Authenticate resolves a bearer token into an identity, enforcing expiry
// and the caller's role allow-list. A role mismatch leaves the session
// intact; the credential stays valid for endpoints that do accept the role.
func (a *Authenticator) Authenticate(ctx context.Context, token string, allowed ...enums.Role) (*Identity, error) {
	if token == "" {
		return nil, errors.New(errors.CodeUnauthorized, "token not provided")
	}

	session, err := a.sessions.GetOne(ctx, store.Filters{"token": token})
	if err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() == errors.CodeNotFound {
			return nil, errors.New(errors.CodeUnauthorized, "session invalid")
		}
		return nil, err
	}

	if session.Expired(a.now().UTC()) {
		if _, err := a.sessions.DeleteByIdentifier(ctx, store.Filters{"token": token}); err != nil {
			a.logg.Error(ctx, "expired session cleanup failed", err)
		}
		return nil, errors.New(errors.CodeUnauthorized, "session expired")
	}

	if len(allowed) > 0 && !roleAllowed(session.Role, allowed) {
		return nil, errors.New(errors.CodeForbidden, "forbidden")
	}

	user, err := a.users.GetOne(ctx, store.Filters{"email": session.Email})
	if err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() == errors.CodeNotFound {
			return nil, errors.New(errors.CodeUnauthorized, "session invalid")
		}
		return nil, err
	}

	return &Identity{
		UserID: user.ID,
		Email:  session.Email,
		Role:   session.Role,
		Token:  token,
	}, nil
}

func roleAllowed(role enums.Role, allowed []enums.Role) bool {
	for _, candidate := range allowed {
		if role.Equals(candidate) {
			return true
		}
	}
	return false
}
