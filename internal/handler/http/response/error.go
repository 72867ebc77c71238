package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
)

// HandleError maps domain errors to HTTP responses with messages in the request locale
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, i18n.T(ctx, "common.validation_failed"), validationErrs.ToMap())
		return
	}

	var breakLimit *correction.BreakLimitError

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, i18n.T(ctx, "attendance.not_found"))
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, i18n.T(ctx, "attendance.already_checked_in"))
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, i18n.T(ctx, "attendance.not_checked_in"))
	case errors.Is(err, attendance.ErrAlreadyOnBreak):
		Conflict(w, i18n.T(ctx, "attendance.already_on_break"))
	case errors.Is(err, attendance.ErrNotOnBreak):
		Conflict(w, i18n.T(ctx, "attendance.not_on_break"))
	case errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, i18n.T(ctx, "attendance.unauthorized"))

	// Correction domain errors
	case errors.Is(err, correction.ErrCorrectionNotFound):
		NotFound(w, i18n.T(ctx, "correction.not_found"))
	case errors.Is(err, correction.ErrAlreadyPending):
		Conflict(w, i18n.T(ctx, "correction.already_pending"))
	case errors.Is(err, correction.ErrInvalidTransition):
		Conflict(w, i18n.T(ctx, "correction.invalid_transition"))
	case errors.Is(err, correction.ErrRecordNotCorrectable):
		Conflict(w, i18n.T(ctx, "correction.record_not_correctable"))
	case errors.Is(err, correction.ErrReasonRequired):
		ValidationError(w, i18n.T(ctx, "common.validation_failed"), map[string]string{
			"comment": i18n.T(ctx, "correction.reason_required"),
		})
	case errors.As(err, &breakLimit):
		ValidationError(w, i18n.T(ctx, "common.validation_failed"), map[string]string{
			"break_minutes": i18n.T(ctx, "correction.break_limit_exceeded", map[string]any{"Limit": breakLimit.Limit}),
		})
	case errors.Is(err, correction.ErrBreakLimitExceeded):
		BadRequest(w, i18n.T(ctx, "correction.break_limit_exceeded", map[string]any{"Limit": "-"}), nil)
	case errors.Is(err, correction.ErrNoChanges):
		BadRequest(w, i18n.T(ctx, "correction.no_changes"), nil)
	case errors.Is(err, correction.ErrInvalidApprover):
		BadRequest(w, i18n.T(ctx, "correction.invalid_approver"), nil)
	case errors.Is(err, correction.ErrNotAssignedApprover):
		Forbidden(w, i18n.T(ctx, "correction.not_assigned_approver"))

	// Engine errors
	case errors.Is(err, worktime.ErrInvalidInterval):
		ValidationError(w, i18n.T(ctx, "common.validation_failed"), map[string]string{
			"clock_out": i18n.T(ctx, "worktime.invalid_interval"),
		})

	// User and auth errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, i18n.T(ctx, "user.not_found"))
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrCompanyIDRequired):
		Forbidden(w, i18n.T(ctx, "user.insufficient_permissions"))
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, i18n.T(ctx, "common.unauthorized"))

	// Default
	default:
		slog.ErrorContext(ctx, "unhandled error", "error", err, "path", r.URL.Path)
		InternalServerError(w, i18n.T(ctx, "common.internal_error"))
	}
}
