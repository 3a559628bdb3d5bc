package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/identity"
	"github.com/ctrlfund/ctrlfund/pkg/logger"
)

// TokenValidator is the slice of the identity service the middleware needs.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*identity.Claims, error)
	GetByID(id string) (*identity.Identity, error)
}

// AuthMiddleware validates the bearer token and loads the caller's
// identity into the request context. Handlers past this point can
// assume a current user.
func AuthMiddleware(validator TokenValidator, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				lg.Warn("token validation failed", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ident, err := validator.GetByID(claims.UserID)
			if err != nil {
				lg.Warn("token subject has no identity", "user_id", claims.UserID)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := identity.ContextWithUser(r.Context(), ident)
			ctx = internal.ContextWithUserID(ctx, ident.ID)
			ctx = logger.With(ctx, "userID", ident.ID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
