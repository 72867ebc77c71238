package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(hour, minute int) time.Time {
	return time.Date(2025, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func TestAttendance_Breaks(t *testing.T) {
	end := clock(12, 45)
	att := Attendance{
		Status: StatusWorking,
		Breaks: []BreakInterval{
			{Start: clock(12, 0), End: &end},
			{Start: clock(15, 0)},
		},
	}

	assert.Equal(t, 1, att.OpenBreak())
	assert.Equal(t, []worktime.Interval{{Start: clock(12, 0), End: clock(12, 45)}}, att.ClosedBreaks())
	assert.Equal(t, 45, att.BreakMinutes())
	assert.False(t, att.IsClosed())

	att.SetBreaks([]worktime.Interval{{Start: clock(13, 0), End: clock(14, 0)}})
	require.Len(t, att.Breaks, 1)
	assert.Equal(t, -1, att.OpenBreak())
	assert.Equal(t, 60, att.BreakMinutes())
}

func TestAttendance_ApplyResult(t *testing.T) {
	att := Attendance{Status: StatusLeft}
	att.ApplyResult(worktime.Result{ActualWorkMinutes: 540, OvertimeMinutes: 60, NightShiftMinutes: 0})

	require.NotNil(t, att.ActualWorkMinutes)
	assert.Equal(t, 540, *att.ActualWorkMinutes)
	assert.Equal(t, 60, *att.OvertimeMinutes)
	assert.Equal(t, 0, *att.NightShiftMinutes)
	assert.True(t, att.IsClosed())
}

func TestAttendanceFilter_Validate(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	t.Run("defaults", func(t *testing.T) {
		f := AttendanceFilter{}
		require.NoError(t, f.Validate())
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, 20, f.Limit)
		assert.Equal(t, "date", f.SortBy)
		assert.Equal(t, "desc", f.SortOrder)
	})

	t.Run("invalid fields", func(t *testing.T) {
		f := AttendanceFilter{
			Status:    strPtr("present"),
			StartDate: strPtr("2025-03-10"),
			EndDate:   strPtr("2025-03-01"),
			Limit:     500,
			SortBy:    "salary",
			SortOrder: "sideways",
		}
		err := f.Validate()
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		fields := verrs.ToMap()
		assert.Contains(t, fields, "status")
		assert.Contains(t, fields, "end_date")
		assert.Contains(t, fields, "limit")
		assert.Contains(t, fields, "sort_by")
		assert.Contains(t, fields, "sort_order")
	})

	t.Run("my filter rejects employee sort", func(t *testing.T) {
		f := MyAttendanceFilter{SortBy: "employee_name"}
		assert.Error(t, f.Validate())
	})

	t.Run("my filter accepts pending approval", func(t *testing.T) {
		f := MyAttendanceFilter{Status: strPtr(StatusPendingApproval)}
		assert.NoError(t, f.Validate())
	})
}
