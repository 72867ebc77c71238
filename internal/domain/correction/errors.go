package correction

import (
	"errors"
	"fmt"
)

var (
	ErrCorrectionNotFound   = errors.New("correction request not found")
	ErrAlreadyPending       = errors.New("a correction request is already pending for this attendance record")
	ErrInvalidTransition    = errors.New("correction request has already been decided")
	ErrReasonRequired       = errors.New("a comment is required to reject a correction request")
	ErrRecordNotCorrectable = errors.New("only clocked out attendance records can be corrected")
	ErrNoChanges            = errors.New("proposed values are identical to the recorded ones")
	ErrBreakLimitExceeded   = errors.New("break minutes exceed the allowed ceiling")
	ErrInvalidApprover      = errors.New("approver must be a manager or owner of the same company")
	ErrNotAssignedApprover  = errors.New("only the assigned approver can decide this correction request")
)

// BreakLimitError carries the ceiling a break correction hit.
type BreakLimitError struct {
	Limit int
}

func (e *BreakLimitError) Error() string {
	return fmt.Sprintf("%s (limit %d minutes)", ErrBreakLimitExceeded, e.Limit)
}

func (e *BreakLimitError) Unwrap() error { return ErrBreakLimitExceeded }
