package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
)

// Record statuses
const (
	StatusWorking         = "working"
	StatusLeft            = "left"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusOnLeave         = "on_leave"
)

var ValidStatuses = []string{StatusWorking, StatusLeft, StatusPendingApproval, StatusApproved, StatusOnLeave}

// BreakInterval is a break taken during a shift. End is nil while the break is running.
type BreakInterval struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

type Attendance struct {
	ID                string
	CompanyID         string
	EmployeeID        string
	Date              time.Time
	ClockIn           *time.Time
	ClockOut          *time.Time
	Breaks            []BreakInterval
	ActualWorkMinutes *int
	OvertimeMinutes   *int
	NightShiftMinutes *int
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO
	EmployeeName *string
}

// IsClosed reports whether the day has been punched out and its derived minutes are settled.
func (a Attendance) IsClosed() bool {
	return a.Status == StatusLeft || a.Status == StatusApproved
}

// OpenBreak returns the index of the running break, or -1.
func (a Attendance) OpenBreak() int {
	for i, b := range a.Breaks {
		if b.End == nil {
			return i
		}
	}
	return -1
}

// ClosedBreaks converts finished breaks into calculator intervals.
func (a Attendance) ClosedBreaks() []worktime.Interval {
	intervals := make([]worktime.Interval, 0, len(a.Breaks))
	for _, b := range a.Breaks {
		if b.End == nil {
			continue
		}
		intervals = append(intervals, worktime.Interval{Start: b.Start, End: *b.End})
	}
	return intervals
}

// BreakMinutes is the total length of finished breaks.
func (a Attendance) BreakMinutes() int {
	return worktime.TotalMinutes(a.ClosedBreaks())
}

// SetBreaks replaces the recorded breaks with the given intervals.
func (a *Attendance) SetBreaks(intervals []worktime.Interval) {
	breaks := make([]BreakInterval, 0, len(intervals))
	for _, i := range intervals {
		end := i.End
		breaks = append(breaks, BreakInterval{Start: i.Start, End: &end})
	}
	a.Breaks = breaks
}

// ApplyResult stores derived minutes on the record.
func (a *Attendance) ApplyResult(r worktime.Result) {
	actual, overtime, night := r.ActualWorkMinutes, r.OvertimeMinutes, r.NightShiftMinutes
	a.ActualWorkMinutes = &actual
	a.OvertimeMinutes = &overtime
	a.NightShiftMinutes = &night
}
