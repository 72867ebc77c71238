package correction

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// Correction kinds
const (
	KindTimeCorrection  = "time_correction"
	KindBreakCorrection = "break_correction"
)

// Request statuses. Pending is the only non-terminal one.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	ValidKinds    = []string{KindTimeCorrection, KindBreakCorrection}
	ValidStatuses = []string{StatusPending, StatusApproved, StatusRejected}
)

// Snapshot is the correctable view of an attendance record.
type Snapshot struct {
	ClockIn      *time.Time
	ClockOut     *time.Time
	BreakMinutes int
}

// SnapshotOf captures the current clock pair and break total of a record.
func SnapshotOf(a attendance.Attendance) Snapshot {
	return Snapshot{
		ClockIn:      a.ClockIn,
		ClockOut:     a.ClockOut,
		BreakMinutes: a.BreakMinutes(),
	}
}

func (s Snapshot) Equal(o Snapshot) bool {
	return timeEqual(s.ClockIn, o.ClockIn) && timeEqual(s.ClockOut, o.ClockOut) && s.BreakMinutes == o.BreakMinutes
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

type Request struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	AttendanceID    string
	RequestedBy     string
	ApproverID      string
	Kind            string
	Before          Snapshot
	After           Snapshot
	PreviousStatus  string
	Status          string
	Reason          string
	DecisionComment *string
	DecidedBy       *string
	DecidedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	EmployeeName   *string
	AttendanceDate *time.Time
}

func (r Request) IsPending() bool {
	return r.Status == StatusPending
}

// CanPropose reports whether a new correction may be filed against record.
// pending is the record's pending request, if any.
func CanPropose(record attendance.Attendance, pending *Request) bool {
	if pending != nil && pending.IsPending() {
		return false
	}
	return record.Status != attendance.StatusPendingApproval
}
