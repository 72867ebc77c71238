package correction

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// CORRECTION REQUEST DTOs
// ========================================

// CreateCorrectionRequest proposes new values for one attendance record.
// Clock values accept "HH:MM" on the record's date or a full RFC3339 timestamp.
type CreateCorrectionRequest struct {
	AttendanceID string  `json:"attendance_id"`
	ApproverID   string  `json:"approver_id"`
	Kind         string  `json:"kind"`
	ClockIn      *string `json:"clock_in,omitempty"`
	ClockOut     *string `json:"clock_out,omitempty"`
	BreakMinutes *int    `json:"break_minutes,omitempty"`
	Reason       string  `json:"reason"`
}

func (r *CreateCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	} else if !validator.IsValidUUID(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id must be a valid UUID",
		})
	}

	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "approver_id",
			Message: "approver_id is required",
		})
	} else if !validator.IsValidUUID(r.ApproverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "approver_id",
			Message: "approver_id must be a valid UUID",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	switch r.Kind {
	case KindTimeCorrection:
		if r.ClockIn == nil && r.ClockOut == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_in",
				Message: "at least one of clock_in or clock_out is required",
			})
		}
		if r.ClockIn != nil && !isValidClockValue(*r.ClockIn) {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_in",
				Message: "clock_in must be HH:MM or an RFC3339 timestamp",
			})
		}
		if r.ClockOut != nil && !isValidClockValue(*r.ClockOut) {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_out",
				Message: "clock_out must be HH:MM or an RFC3339 timestamp",
			})
		}
		if r.BreakMinutes != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "break_minutes",
				Message: "break_minutes is not allowed for time_correction",
			})
		}
	case KindBreakCorrection:
		if r.BreakMinutes == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "break_minutes",
				Message: "break_minutes is required",
			})
		} else if *r.BreakMinutes < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "break_minutes",
				Message: "break_minutes must not be negative",
			})
		}
		if r.ClockIn != nil || r.ClockOut != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "kind",
				Message: "clock_in and clock_out are not allowed for break_correction",
			})
		}
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of: " + strings.Join(ValidKinds, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func isValidClockValue(s string) bool {
	if _, ok := validator.IsValidTime(s); ok {
		return true
	}
	_, ok := validator.IsValidDateTime(s)
	return ok
}

// ApproveCorrectionRequest for approving a correction
type ApproveCorrectionRequest struct {
	ID      string  `json:"-"`
	Comment *string `json:"comment,omitempty"` // Optional approval comment
}

// RejectCorrectionRequest for rejecting a correction
type RejectCorrectionRequest struct {
	ID      string `json:"-"`
	Comment string `json:"comment"` // Required rejection comment
}

func (r *RejectCorrectionRequest) Validate() error {
	if validator.IsEmpty(r.Comment) {
		return ErrReasonRequired
	}
	return nil
}

type SnapshotResponse struct {
	ClockIn      *string `json:"clock_in,omitempty"`
	ClockOut     *string `json:"clock_out,omitempty"`
	BreakMinutes int     `json:"break_minutes"`
}

type CorrectionResponse struct {
	ID              string           `json:"id"`
	AttendanceID    string           `json:"attendance_id"`
	AttendanceDate  *string          `json:"attendance_date,omitempty"`
	EmployeeID      string           `json:"employee_id"`
	EmployeeName    *string          `json:"employee_name,omitempty"`
	RequestedBy     string           `json:"requested_by"`
	ApproverID      string           `json:"approver_id"`
	Kind            string           `json:"kind"`
	Status          string           `json:"status"`
	Before          SnapshotResponse `json:"before"`
	After           SnapshotResponse `json:"after"`
	Reason          string           `json:"reason"`
	DecisionComment *string          `json:"decision_comment,omitempty"`
	DecidedBy       *string          `json:"decided_by,omitempty"`
	DecidedAt       *string          `json:"decided_at,omitempty"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

type CanProposeResponse struct {
	AttendanceID     string  `json:"attendance_id"`
	CanPropose       bool    `json:"can_propose"`
	PendingRequestID *string `json:"pending_request_id,omitempty"`
}

type CorrectionFilter struct {
	EmployeeID   *string `json:"employee_id,omitempty"`
	AttendanceID *string `json:"attendance_id,omitempty"`
	ApproverID   *string `json:"approver_id,omitempty"`
	Status       *string `json:"status,omitempty"`
	Kind         *string `json:"kind,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortOrder string `json:"sort_order"` // by created_at; asc, desc
}

func (f *CorrectionFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	ids := []struct {
		name  string
		value *string
	}{
		{"employee_id", f.EmployeeID},
		{"attendance_id", f.AttendanceID},
		{"approver_id", f.ApproverID},
	}
	for _, id := range ids {
		if id.value != nil && *id.value != "" && !validator.IsValidUUID(*id.value) {
			errs = append(errs, validator.ValidationError{
				Field:   id.name,
				Message: id.name + " must be a valid UUID",
			})
		}
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, ValidStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(ValidStatuses, ", "),
		})
	}
	if f.Kind != nil && !validator.IsInSlice(*f.Kind, ValidKinds) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of: " + strings.Join(ValidKinds, ", "),
		})
	}

	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_order",
			Message: "sort_order must be one of: asc, desc",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListCorrectionResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Corrections []CorrectionResponse `json:"corrections"`
}

// ApproverResponse lists a user who may be assigned to decide a correction
type ApproverResponse struct {
	UserID       string  `json:"user_id"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	EmployeeName *string `json:"employee_name,omitempty"`
}
