package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attempt"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-console/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-console/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-console/internal/workflow"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Backend answered with a failure: keep its status and wording
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		Upstream(w, apiErr.StatusCode, apiErr.UserMessage())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrMissingClaims):
		Unauthorized(w, "Token is missing required claims")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Attendance workflow errors
	case errors.Is(err, workflow.ErrBusy):
		Conflict(w, "Another attendance action is in progress")
	case errors.Is(err, workflow.ErrNoPendingAttempt):
		Conflict(w, "No attendance action is waiting for this step")
	case errors.Is(err, attendance.ErrActionNotAllowed):
		Conflict(w, "This action is not available for today's attendance")
	case errors.Is(err, attendance.ErrInvalidAction):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrCheckOutWithoutCheckIn):
		slog.Error("Attendance backend returned an inconsistent record", "error", err)
		BadGateway(w, "Attendance service returned an inconsistent record")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveRequestNotPending):
		Conflict(w, "Only pending leave requests can be changed")

	// Admin errors
	case errors.Is(err, user.ErrUserIDRequired),
		errors.Is(err, notification.ErrNotificationIDRequired),
		errors.Is(err, attempt.ErrUserIDRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	case apiclient.IsTransport(err):
		slog.Error("Attendance backend unreachable", "error", err)
		BadGateway(w, "Attendance service is unreachable")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
