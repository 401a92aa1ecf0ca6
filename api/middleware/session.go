package middleware

import (
	"net/http"

	"github.com/nearbuyhq/nearbuy-backend/api/responses"
	"github.com/nearbuyhq/nearbuy-backend/api/validators"
	"github.com/nearbuyhq/nearbuy-backend/internal/auth"
	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
)

// RequireRoles authenticates the session credential and enforces the role
// allow-list before the handler runs. The resolved identity is bound to the
// request context for the rest of the call.
func RequireRoles(authn *auth.Authenticator, cookieName string, logg *logger.Logger, allowed ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := validators.SessionToken(r, cookieName)
			identity, err := authn.Authenticate(ctx, token, allowed...)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = auth.WithIdentity(ctx, identity)
			if logg != nil {
				ctx = logg.WithUserEmail(ctx, identity.Email)
				ctx = logg.WithActorRole(ctx, identity.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
