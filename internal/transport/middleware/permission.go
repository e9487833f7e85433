package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/clinic-access/internal"
	"github.com/frahmantamala/clinic-access/internal/permission"
)

// RequirePermissions allows the request through when the session's
// effective set holds at least one of the named permissions.
func RequirePermissions(permissions ...permission.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := permission.PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				http.Error(w, internal.ErrIdentityRequired.Message, internal.ErrIdentityRequired.StatusCode)
				return
			}

			if !principal.Permissions.HasAny(permissions...) {
				slog.Warn("access denied: missing required permissions",
					"user_id", principal.UserID,
					"position", principal.Position,
					"required_permissions", permissions)
				http.Error(w, internal.ErrUnauthorizedAccess.Message, internal.ErrUnauthorizedAccess.StatusCode)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
