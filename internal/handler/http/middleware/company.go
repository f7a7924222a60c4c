package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/cmlabs-hris/worktime-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/jwt"
)

// RequireCompany rejects users that have not joined a company yet (role
// pending, no company_id claim).
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := jwt.IdentityFromContext(r.Context())
		if err != nil {
			response.HandleError(w, response.ErrInvalidToken)
			return
		}

		if id.CompanyID == "" || id.Role == jwt.RolePending {
			response.HandleError(w, worktime.ErrCompanyIDRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
