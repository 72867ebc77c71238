package worktime

import (
	"fmt"
	"time"
)

// TotalMinutes sums the length of every interval.
func TotalMinutes(intervals []Interval) int {
	total := 0
	for _, i := range intervals {
		total += i.Minutes()
	}
	return total
}

// FitBreaks returns breaks totalling exactly minutes inside shift.
//
// Existing breaks are kept as they are when they already add up to minutes and
// still lie inside the shift. Otherwise they collapse into a single break that
// starts where the first existing break started (or is centred in the shift
// when there was none), moved as little as needed to stay inside the shift.
func FitBreaks(shift Interval, existing []Interval, minutes int) ([]Interval, error) {
	shift = shift.floor()
	floored := make([]Interval, 0, len(existing))
	for _, b := range existing {
		floored = append(floored, b.floor())
	}
	existing = floored

	if minutes < 0 {
		return nil, fmt.Errorf("%w: break minutes must not be negative", ErrInvalidInterval)
	}
	if shift.End.Before(shift.Start) {
		return nil, fmt.Errorf("%w: shift ends before it starts", ErrInvalidInterval)
	}
	if minutes == 0 {
		return nil, nil
	}
	if minutes > shift.Minutes() {
		return nil, fmt.Errorf("%w: %d break minutes do not fit in a %d minute shift",
			ErrInvalidInterval, minutes, shift.Minutes())
	}

	if TotalMinutes(existing) == minutes && checkBreaks(shift, existing) == nil {
		return existing, nil
	}

	length := time.Duration(minutes) * time.Minute
	var start time.Time
	if len(existing) > 0 {
		start = existing[0].Start
		for _, b := range existing[1:] {
			if b.Start.Before(start) {
				start = b.Start
			}
		}
	} else {
		mid := shift.Start.Add(shift.End.Sub(shift.Start) / 2).Truncate(time.Minute)
		start = mid.Add(-length / 2).Truncate(time.Minute)
	}

	if start.Before(shift.Start) {
		start = shift.Start
	}
	if start.Add(length).After(shift.End) {
		start = shift.End.Add(-length)
	}

	return []Interval{{Start: start, End: start.Add(length)}}, nil
}
