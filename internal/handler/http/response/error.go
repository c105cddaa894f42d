package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worktime-go/internal/domain/auth"
	"github.com/cmlabs-hris/worktime-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrEmployeeClaimMissing):
		Forbidden(w, "Token is not bound to an employee")

	// User domain errors
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, user.ErrInvalidRole):
		Forbidden(w, "Token carries no valid role")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrEventNotFound):
		NotFound(w, "Clock event not found")
	case errors.Is(err, attendance.ErrEmployeeRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
