package worktime

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrInvalidInterval = errors.New("invalid time interval")

// Policy holds the per-tenant constants the calculator works with.
type Policy struct {
	StandardWorkMinutes int
	NightStartHour      int
	NightEndHour        int
}

// DefaultPolicy is an 8 hour day with a 22:00-05:00 night window.
func DefaultPolicy() Policy {
	return Policy{
		StandardWorkMinutes: 480,
		NightStartHour:      22,
		NightEndHour:        5,
	}
}

func (p Policy) Validate() error {
	if p.StandardWorkMinutes <= 0 {
		return fmt.Errorf("standard work minutes must be positive, got %d", p.StandardWorkMinutes)
	}
	if p.NightStartHour < 0 || p.NightStartHour > 23 {
		return fmt.Errorf("night start hour must be between 0 and 23, got %d", p.NightStartHour)
	}
	if p.NightEndHour < 0 || p.NightEndHour > 23 {
		return fmt.Errorf("night end hour must be between 0 and 23, got %d", p.NightEndHour)
	}
	if p.NightStartHour == p.NightEndHour {
		return fmt.Errorf("night window must not be empty")
	}
	return nil
}

type Interval struct {
	Start time.Time
	End   time.Time
}

// Minutes returns the whole minutes between Start and End, both floored to the minute.
func (i Interval) Minutes() int {
	f := i.floor()
	return int(f.End.Sub(f.Start) / time.Minute)
}

func (i Interval) floor() Interval {
	return Interval{Start: i.Start.Truncate(time.Minute), End: i.End.Truncate(time.Minute)}
}

func (i Interval) overlap(o Interval) int {
	start := i.Start
	if o.Start.After(start) {
		start = o.Start
	}
	end := i.End
	if o.End.Before(end) {
		end = o.End
	}
	if !start.Before(end) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

// Shift is one worked day as punched: the clock pair plus the breaks taken in between.
type Shift struct {
	ClockIn  time.Time
	ClockOut time.Time
	Breaks   []Interval
}

type Result struct {
	ActualWorkMinutes int `json:"actual_work_minutes"`
	OvertimeMinutes   int `json:"overtime_minutes"`
	NightShiftMinutes int `json:"night_shift_minutes"`
}

// Calculator derives work, overtime and night minutes for a shift.
// It keeps no state besides its policy and is safe for concurrent use.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

func (c *Calculator) Policy() Policy {
	return c.policy
}

// ResolveClockOut moves a clock-out that reads earlier than clock-in on the
// same calendar date to the following day. Any other ordering is returned unchanged.
func ResolveClockOut(clockIn, clockOut time.Time) time.Time {
	if !clockOut.Before(clockIn) {
		return clockOut
	}
	inY, inM, inD := clockIn.Date()
	outY, outM, outD := clockOut.In(clockIn.Location()).Date()
	if inY == outY && inM == outM && inD == outD {
		return clockOut.Add(24 * time.Hour)
	}
	return clockOut
}

// Calculate applies the policy to the shift. All timestamps are floored to
// the minute before any arithmetic.
func (c *Calculator) Calculate(s Shift) (Result, error) {
	clockIn := s.ClockIn.Truncate(time.Minute)
	clockOut := ResolveClockOut(clockIn, s.ClockOut.Truncate(time.Minute))
	if clockOut.Before(clockIn) {
		return Result{}, fmt.Errorf("%w: clock out %s is before clock in %s",
			ErrInvalidInterval, clockOut.Format(time.RFC3339), clockIn.Format(time.RFC3339))
	}
	shift := Interval{Start: clockIn, End: clockOut}

	breaks := make([]Interval, 0, len(s.Breaks))
	for _, b := range s.Breaks {
		breaks = append(breaks, b.floor())
	}
	if err := checkBreaks(shift, breaks); err != nil {
		return Result{}, err
	}

	breakMinutes := 0
	for _, b := range breaks {
		breakMinutes += b.Minutes()
	}

	actual := max(0, shift.Minutes()-breakMinutes)
	overtime := max(0, actual-c.policy.StandardWorkMinutes)

	night := c.nightWindow(clockIn)
	nightMinutes := shift.overlap(night)
	for _, b := range breaks {
		nightMinutes -= b.overlap(night)
	}

	return Result{
		ActualWorkMinutes: actual,
		OvertimeMinutes:   overtime,
		NightShiftMinutes: max(0, nightMinutes),
	}, nil
}

// nightWindow instantiates the night window for the calendar date of clockIn.
func (c *Calculator) nightWindow(clockIn time.Time) Interval {
	y, m, d := clockIn.Date()
	loc := clockIn.Location()
	start := time.Date(y, m, d, c.policy.NightStartHour, 0, 0, 0, loc)
	end := time.Date(y, m, d, c.policy.NightEndHour, 0, 0, 0, loc)
	if c.policy.NightEndHour <= c.policy.NightStartHour {
		end = time.Date(y, m, d+1, c.policy.NightEndHour, 0, 0, 0, loc)
	}
	return Interval{Start: start, End: end}
}

func checkBreaks(shift Interval, breaks []Interval) error {
	sorted := make([]Interval, len(breaks))
	copy(sorted, breaks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	for i, b := range sorted {
		if b.End.Before(b.Start) {
			return fmt.Errorf("%w: break ends before it starts", ErrInvalidInterval)
		}
		if b.Start.Before(shift.Start) || b.End.After(shift.End) {
			return fmt.Errorf("%w: break %s-%s is outside the shift",
				ErrInvalidInterval, b.Start.Format("15:04"), b.End.Format("15:04"))
		}
		// touching breaks are fine
		if i > 0 && b.Start.Before(sorted[i-1].End) {
			return fmt.Errorf("%w: breaks overlap", ErrInvalidInterval)
		}
	}
	return nil
}
