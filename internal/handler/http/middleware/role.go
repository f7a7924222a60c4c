package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/worktime-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/jwt"
)

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := jwt.IdentityFromContext(r.Context())
		if err != nil {
			response.HandleError(w, response.ErrManagerAccessRequired)
			return
		}

		if id.Role != jwt.RoleManager && id.Role != jwt.RoleOwner {
			response.HandleError(w, response.ErrManagerAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
