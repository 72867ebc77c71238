package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

func roleFromRequest(r *http.Request) (user.Role, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	role, ok := claims["role"].(string)
	return user.Role(role), ok
}

// RequirePermission rejects callers whose role lacks the permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := roleFromRequest(r)
			if !ok || !user.HasPermission(role, permission) {
				slog.DebugContext(r.Context(), "Permission denied", "permission", permission, "role", role, "path", r.URL.Path)
				response.HandleError(w, r, fmt.Errorf("%w: %s", user.ErrInsufficientPermissions, permission))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
