package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ctrlfund/ctrlfund/internal/identity"
)

// RequireCapability gates a route on the caller's resolved permission
// set. The set is derived from the identity loaded by AuthMiddleware,
// never read from storage.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := identity.UserFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !ident.Permissions().Has(capability) {
				slog.Warn("access denied: missing capability",
					"user_id", ident.ID,
					"capability", capability)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
