package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
)

// RequirePermission checks if the principal's role holds a permission
func RequirePermission(gate *user.Gate, permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := PrincipalFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if err := gate.Authorize(principal, permission); err != nil {
				slog.WarnContext(r.Context(), "Route access denied",
					"user_id", principal.UserID,
					"role", principal.Role,
					"permission", permission,
					"path", r.URL.Path,
				)
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
