package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// ClockIn opens today's record for the authenticated employee
	ClockIn(ctx context.Context) (AttendanceResponse, error)

	// StartBreak starts a break on the open record
	StartBreak(ctx context.Context) (AttendanceResponse, error)

	// EndBreak ends the running break on the open record
	EndBreak(ctx context.Context) (AttendanceResponse, error)

	// ClockOut closes the open record and derives its work minutes
	ClockOut(ctx context.Context) (AttendanceResponse, error)

	// GetMyAttendance retrieves attendance records for authenticated employee
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (admin/manager)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetAttendance retrieves a single attendance record by ID
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// ExportAttendance renders every record matching filter as an XLSX workbook
	ExportAttendance(ctx context.Context, filter AttendanceFilter) ([]byte, error)
}
