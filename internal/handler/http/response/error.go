package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/employee"
	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var missingCeiling *worktime.MissingCeilingError
	if errors.As(err, &missingCeiling) {
		MissingCeiling(w, missingCeiling)
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, ErrManagerAccessRequired):
		Forbidden(w, "Manager or owner access required")
	case errors.Is(err, worktime.ErrCompanyIDRequired):
		Forbidden(w, "Company membership required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Worktime domain errors
	case errors.Is(err, worktime.ErrForbiddenEmployee):
		Forbidden(w, "Not allowed to read reports of this employee")
	case errors.Is(err, worktime.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

var (
	ErrInvalidToken          = errors.New("invalid token")
	ErrManagerAccessRequired = errors.New("manager or owner access required")
)
