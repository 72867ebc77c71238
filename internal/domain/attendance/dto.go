package attendance

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type BreakResponse struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

type AttendanceResponse struct {
	ID                string          `json:"id"`
	EmployeeID        string          `json:"employee_id"`
	EmployeeName      string          `json:"employee_name"`
	Date              string          `json:"date"`
	ClockInTime       *string         `json:"clock_in_time,omitempty"`
	ClockOutTime      *string         `json:"clock_out_time,omitempty"`
	Breaks            []BreakResponse `json:"breaks"`
	BreakMinutes      int             `json:"break_minutes"`
	ActualWorkMinutes *int            `json:"actual_work_minutes,omitempty"`
	OvertimeMinutes   *int            `json:"overtime_minutes,omitempty"`
	NightShiftMinutes *int            `json:"night_shift_minutes,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         string          `json:"created_at"`
	UpdatedAt         string          `json:"updated_at"`
}

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID   *string `json:"employee_id,omitempty"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Date         *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate    *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate      *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status       *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, employee_name, clock_in_time, clock_out_time, status, overtime_minutes
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePaging(&f.Page, &f.Limit)...)
	errs = append(errs, validateDates(f.Date, f.StartDate, f.EndDate)...)

	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, ValidStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(ValidStatuses, ", "),
		})
	}

	// Sort validation
	validSortFields := []string{"date", "employee_name", "clock_in_time", "clock_out_time", "status", "overtime_minutes"}
	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(validSortFields, ", "),
			})
		}
	} else {
		f.SortBy = "date" // Default sort
	}

	errs = append(errs, validateSortOrder(&f.SortOrder)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MyAttendanceFilter struct {
	// Search & Filter (no employee filters)
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, clock_in_time, clock_out_time, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePaging(&f.Page, &f.Limit)...)
	errs = append(errs, validateDates(f.Date, f.StartDate, f.EndDate)...)

	if f.Status != nil && !validator.IsInSlice(*f.Status, ValidStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(ValidStatuses, ", "),
		})
	}

	// Sort validation (no employee_name for my attendance)
	validSortFields := []string{"date", "clock_in_time", "clock_out_time", "status"}
	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(validSortFields, ", "),
			})
		}
	} else {
		f.SortBy = "date" // Default sort
	}

	errs = append(errs, validateSortOrder(&f.SortOrder)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

func validatePaging(page, limit *int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if *page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if *page == 0 {
		*page = 1 // Default page
	}

	if *limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if *limit == 0 {
		*limit = 20 // Default limit
	}
	if *limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	return errs
}

func validateDates(date, startDate, endDate *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	fields := []struct {
		name  string
		value *string
	}{
		{"date", date},
		{"start_date", startDate},
		{"end_date", endDate},
	}
	for _, f := range fields {
		if f.value == nil || *f.value == "" {
			continue
		}
		if _, valid := validator.IsValidDate(*f.value); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   f.name,
				Message: f.name + " must be in YYYY-MM-DD format",
			})
		}
	}

	if startDate != nil && endDate != nil && *startDate != "" && *endDate != "" && *endDate < *startDate {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	return errs
}

func validateSortOrder(order *string) validator.ValidationErrors {
	if *order == "" {
		*order = "desc" // Default descending (newest first)
		return nil
	}
	if !validator.IsInSlice(strings.ToLower(*order), []string{"asc", "desc"}) {
		return validator.ValidationErrors{{
			Field:   "sort_order",
			Message: "sort_order must be one of: asc, desc",
		}}
	}
	return nil
}
