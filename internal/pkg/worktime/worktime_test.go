package worktime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, time.UTC)
}

func TestCalculator_Calculate(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	tests := []struct {
		name  string
		shift Shift
		want  Result
	}{
		{
			name: "regular day with lunch",
			shift: Shift{
				ClockIn:  at(10, 9, 0),
				ClockOut: at(10, 18, 0),
				Breaks:   []Interval{{Start: at(10, 12, 0), End: at(10, 13, 0)}},
			},
			want: Result{ActualWorkMinutes: 480, OvertimeMinutes: 0, NightShiftMinutes: 0},
		},
		{
			name: "one hour overtime",
			shift: Shift{
				ClockIn:  at(10, 9, 0),
				ClockOut: at(10, 19, 0),
				Breaks:   []Interval{{Start: at(10, 12, 0), End: at(10, 13, 0)}},
			},
			want: Result{ActualWorkMinutes: 540, OvertimeMinutes: 60, NightShiftMinutes: 0},
		},
		{
			name: "evening shift into the night window",
			shift: Shift{
				ClockIn:  at(10, 20, 0),
				ClockOut: at(10, 23, 30),
			},
			want: Result{ActualWorkMinutes: 210, OvertimeMinutes: 0, NightShiftMinutes: 90},
		},
		{
			name: "overnight shift with break across midnight",
			shift: Shift{
				ClockIn:  at(10, 21, 0),
				ClockOut: at(11, 6, 0),
				Breaks:   []Interval{{Start: at(10, 23, 0), End: at(11, 0, 30)}},
			},
			want: Result{ActualWorkMinutes: 450, OvertimeMinutes: 0, NightShiftMinutes: 330},
		},
		{
			name: "clock out earlier in the day rolls over",
			shift: Shift{
				ClockIn:  at(10, 21, 0),
				ClockOut: at(10, 6, 0),
				Breaks:   []Interval{{Start: at(10, 23, 0), End: at(11, 0, 30)}},
			},
			want: Result{ActualWorkMinutes: 450, OvertimeMinutes: 0, NightShiftMinutes: 330},
		},
		{
			name: "touching breaks",
			shift: Shift{
				ClockIn:  at(10, 9, 0),
				ClockOut: at(10, 18, 0),
				Breaks: []Interval{
					{Start: at(10, 12, 30), End: at(10, 13, 0)},
					{Start: at(10, 12, 0), End: at(10, 12, 30)},
				},
			},
			want: Result{ActualWorkMinutes: 480, OvertimeMinutes: 0, NightShiftMinutes: 0},
		},
		{
			name: "seconds are floored",
			shift: Shift{
				ClockIn:  at(10, 9, 0).Add(59 * time.Second),
				ClockOut: at(10, 17, 0).Add(30 * time.Second),
			},
			want: Result{ActualWorkMinutes: 480, OvertimeMinutes: 0, NightShiftMinutes: 0},
		},
		{
			name: "zero length shift",
			shift: Shift{
				ClockIn:  at(10, 9, 0),
				ClockOut: at(10, 9, 0),
			},
			want: Result{},
		},
		{
			name: "early morning start falls outside the shift date window",
			shift: Shift{
				ClockIn:  at(10, 3, 0),
				ClockOut: at(10, 11, 0),
			},
			want: Result{ActualWorkMinutes: 480, OvertimeMinutes: 0, NightShiftMinutes: 0},
		},
		{
			name: "break inside the night window only reduces night minutes it overlaps",
			shift: Shift{
				ClockIn:  at(10, 18, 0),
				ClockOut: at(11, 2, 0),
				Breaks: []Interval{
					{Start: at(10, 20, 0), End: at(10, 20, 30)},
					{Start: at(11, 0, 0), End: at(11, 0, 15)},
				},
			},
			want: Result{ActualWorkMinutes: 435, OvertimeMinutes: 0, NightShiftMinutes: 225},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(tt.shift)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculator_Calculate_InvalidInterval(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	tests := []struct {
		name  string
		shift Shift
	}{
		{
			name: "clock out on an earlier date",
			shift: Shift{
				ClockIn:  at(10, 9, 0),
				ClockOut: at(9, 18, 0),
			},
		},
		{
			name: "break before clock in",
			shift: Shift{
				ClockIn:  at(10, 9, 0),
				ClockOut: at(10, 18, 0),
				Breaks:   []Interval{{Start: at(10, 8, 0), End: at(10, 8, 30)}},
			},
		},
		{
			name: "break after clock out",
			shift: Shift{
				ClockIn:  at(10, 9, 0),
				ClockOut: at(10, 18, 0),
				Breaks:   []Interval{{Start: at(10, 17, 45), End: at(10, 18, 15)}},
			},
		},
		{
			name: "inverted break",
			shift: Shift{
				ClockIn:  at(10, 9, 0),
				ClockOut: at(10, 18, 0),
				Breaks:   []Interval{{Start: at(10, 12, 30), End: at(10, 12, 0)}},
			},
		},
		{
			name: "overlapping breaks",
			shift: Shift{
				ClockIn:  at(10, 9, 0),
				ClockOut: at(10, 18, 0),
				Breaks: []Interval{
					{Start: at(10, 12, 0), End: at(10, 13, 0)},
					{Start: at(10, 12, 30), End: at(10, 13, 30)},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Calculate(tt.shift)
			assert.ErrorIs(t, err, ErrInvalidInterval)
		})
	}
}

func TestCalculator_CustomPolicy(t *testing.T) {
	t.Run("shorter standard day", func(t *testing.T) {
		calc := NewCalculator(Policy{StandardWorkMinutes: 420, NightStartHour: 22, NightEndHour: 5})
		got, err := calc.Calculate(Shift{
			ClockIn:  at(10, 9, 0),
			ClockOut: at(10, 18, 0),
			Breaks:   []Interval{{Start: at(10, 12, 0), End: at(10, 13, 0)}},
		})
		require.NoError(t, err)
		assert.Equal(t, 60, got.OvertimeMinutes)
	})

	t.Run("night window within a single day", func(t *testing.T) {
		calc := NewCalculator(Policy{StandardWorkMinutes: 480, NightStartHour: 0, NightEndHour: 6})
		got, err := calc.Calculate(Shift{
			ClockIn:  at(10, 2, 0),
			ClockOut: at(10, 10, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, 240, got.NightShiftMinutes)
	})

	t.Run("windows follow the clock in location", func(t *testing.T) {
		jakarta := time.FixedZone("WIB", 7*60*60)
		calc := NewCalculator(DefaultPolicy())
		got, err := calc.Calculate(Shift{
			ClockIn:  time.Date(2025, time.March, 10, 21, 0, 0, 0, jakarta),
			ClockOut: time.Date(2025, time.March, 10, 23, 0, 0, 0, jakarta),
		})
		require.NoError(t, err)
		assert.Equal(t, 60, got.NightShiftMinutes)
	})
}

func TestCalculator_Properties(t *testing.T) {
	policy := DefaultPolicy()
	calc := NewCalculator(policy)

	for startHour := 0; startHour < 24; startHour++ {
		for duration := 0; duration <= 16*60; duration += 45 {
			in := at(10, startHour, 0)
			out := in.Add(time.Duration(duration) * time.Minute)
			shift := Shift{ClockIn: in, ClockOut: out}
			if duration >= 60 {
				mid := in.Add(time.Duration(duration/2) * time.Minute)
				shift.Breaks = []Interval{{Start: mid.Add(-15 * time.Minute), End: mid.Add(15 * time.Minute)}}
			}

			first, err := calc.Calculate(shift)
			require.NoError(t, err)
			second, err := calc.Calculate(shift)
			require.NoError(t, err)

			assert.Equal(t, first, second, "idempotent for %s +%dm", in.Format("15:04"), duration)
			assert.GreaterOrEqual(t, first.ActualWorkMinutes, 0)
			assert.GreaterOrEqual(t, first.OvertimeMinutes, 0)
			assert.GreaterOrEqual(t, first.NightShiftMinutes, 0)
			assert.LessOrEqual(t, first.NightShiftMinutes, first.ActualWorkMinutes)
			if first.ActualWorkMinutes <= policy.StandardWorkMinutes {
				assert.Zero(t, first.OvertimeMinutes)
			}
		}
	}
}

func TestResolveClockOut(t *testing.T) {
	assert.Equal(t, at(11, 6, 0), ResolveClockOut(at(10, 21, 0), at(10, 6, 0)))
	assert.Equal(t, at(10, 18, 0), ResolveClockOut(at(10, 9, 0), at(10, 18, 0)))
	assert.Equal(t, at(9, 18, 0), ResolveClockOut(at(10, 9, 0), at(9, 18, 0)))
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"default", DefaultPolicy(), false},
		{"zero standard minutes", Policy{StandardWorkMinutes: 0, NightStartHour: 22, NightEndHour: 5}, true},
		{"start hour out of range", Policy{StandardWorkMinutes: 480, NightStartHour: 24, NightEndHour: 5}, true},
		{"end hour negative", Policy{StandardWorkMinutes: 480, NightStartHour: 22, NightEndHour: -1}, true},
		{"empty window", Policy{StandardWorkMinutes: 480, NightStartHour: 5, NightEndHour: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
