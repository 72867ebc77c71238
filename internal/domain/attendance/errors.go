package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrAlreadyCheckedIn = errors.New("you have already checked in today")
	ErrNotCheckedIn     = errors.New("you have not checked in yet")
	ErrAlreadyOnBreak   = errors.New("you are already on a break")
	ErrNotOnBreak       = errors.New("you are not on a break")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
)
