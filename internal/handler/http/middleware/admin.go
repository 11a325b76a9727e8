package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-console/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
	"github.com/cmlabs-hris/attendance-console/internal/handler/http/response"
)

// AdminOnly must run after AuthRequired.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		if !identity.IsAdmin() {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
