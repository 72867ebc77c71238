package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
	"github.com/go-chi/jwtauth/v5"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	tx       database.Transactor
	policies *config.PolicySet
	now      func() time.Time
}

// timePtrToString renders t in loc, or nil.
func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	format := t.In(loc).Format(time.RFC3339)
	return &format
}

type principal struct {
	companyID  string
	employeeID string
}

func principalFromContext(ctx context.Context, needEmployee bool) (principal, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return principal{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return principal{}, fmt.Errorf("company_id claim is missing or invalid")
	}

	employeeID, _ := claims["employee_id"].(string)
	if needEmployee && employeeID == "" {
		return principal{}, fmt.Errorf("employee_id claim is missing or invalid")
	}

	return principal{companyID: companyID, employeeID: employeeID}, nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context) (attendance.AttendanceResponse, error) {
	p, err := principalFromContext(ctx, true)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	loc := a.policies.For(p.companyID).Location()
	nowUTC := a.now().UTC()
	nowLocal := nowUTC.In(loc)
	date := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, time.UTC)

	var created attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// An overnight shift from yesterday still counts as checked in
		if _, err := a.AttendanceRepository.GetOpenSession(ctx, p.employeeID, p.companyID); err == nil {
			return attendance.ErrAlreadyCheckedIn
		} else if !errors.Is(err, attendance.ErrNotCheckedIn) {
			return fmt.Errorf("failed to get open session: %w", err)
		}

		existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, p.employeeID, date, p.companyID)
		if err != nil {
			return fmt.Errorf("failed to check today's attendance: %w", err)
		}
		if existing != nil {
			return attendance.ErrAlreadyCheckedIn
		}

		created, err = a.AttendanceRepository.Create(ctx, attendance.Attendance{
			CompanyID:  p.companyID,
			EmployeeID: p.employeeID,
			Date:       date,
			ClockIn:    &nowUTC,
			Breaks:     []attendance.BreakInterval{},
			Status:     attendance.StatusWorking,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
				return err
			}
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return mapAttendanceToResponse(created, loc), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context) (attendance.AttendanceResponse, error) {
	return a.mutateOpenSession(ctx, func(att *attendance.Attendance, now time.Time) error {
		if att.OpenBreak() >= 0 {
			return attendance.ErrAlreadyOnBreak
		}
		att.Breaks = append(att.Breaks, attendance.BreakInterval{Start: now})
		return nil
	})
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context) (attendance.AttendanceResponse, error) {
	return a.mutateOpenSession(ctx, func(att *attendance.Attendance, now time.Time) error {
		idx := att.OpenBreak()
		if idx < 0 {
			return attendance.ErrNotOnBreak
		}
		att.Breaks[idx].End = &now
		return nil
	})
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context) (attendance.AttendanceResponse, error) {
	return a.mutateOpenSession(ctx, func(att *attendance.Attendance, now time.Time) error {
		if idx := att.OpenBreak(); idx >= 0 {
			att.Breaks[idx].End = &now
		}
		att.ClockOut = &now

		policy := a.policies.For(att.CompanyID)
		result, err := worktime.NewCalculator(policy.WorkTime()).Calculate(shiftOf(*att, policy.Location()))
		if err != nil {
			return fmt.Errorf("failed to calculate work time: %w", err)
		}

		att.ApplyResult(result)
		att.Status = attendance.StatusLeft
		return nil
	})
}

// mutateOpenSession locks the caller's working record, applies fn and saves it in one transaction.
func (a *AttendanceServiceImpl) mutateOpenSession(ctx context.Context, fn func(att *attendance.Attendance, now time.Time) error) (attendance.AttendanceResponse, error) {
	p, err := principalFromContext(ctx, true)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var att attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		att, err = a.AttendanceRepository.GetOpenSession(ctx, p.employeeID, p.companyID)
		if err != nil {
			if errors.Is(err, attendance.ErrNotCheckedIn) {
				return attendance.ErrNotCheckedIn
			}
			return fmt.Errorf("failed to get open session: %w", err)
		}

		if err := fn(&att, a.now().UTC()); err != nil {
			return err
		}

		if err := a.AttendanceRepository.Update(ctx, att); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return mapAttendanceToResponse(att, a.policies.For(p.companyID).Location()), nil
}

// shiftOf builds calculator input in the company's timezone so the night
// window follows the local calendar date of the clock-in.
func shiftOf(att attendance.Attendance, loc *time.Location) worktime.Shift {
	var s worktime.Shift
	if att.ClockIn != nil {
		s.ClockIn = att.ClockIn.In(loc)
	}
	if att.ClockOut != nil {
		s.ClockOut = att.ClockOut.In(loc)
	}
	for _, b := range att.ClosedBreaks() {
		s.Breaks = append(s.Breaks, worktime.Interval{Start: b.Start.In(loc), End: b.End.In(loc)})
	}
	return s
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	p, err := principalFromContext(ctx, true)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.GetMyAttendance(ctx, p.employeeID, filter, p.companyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to get my attendance: %w", err)
	}

	return a.listResponse(p.companyID, attendances, total, filter.Page, filter.Limit), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	p, err := principalFromContext(ctx, false)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.List(ctx, filter, p.companyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	return a.listResponse(p.companyID, attendances, total, filter.Page, filter.Limit), nil
}

func (a *AttendanceServiceImpl) listResponse(companyID string, attendances []attendance.Attendance, total int64, page, limit int) attendance.ListAttendanceResponse {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	loc := a.policies.For(companyID).Location()
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, mapAttendanceToResponse(att, loc))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	p, err := principalFromContext(ctx, false)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	att, err := a.AttendanceRepository.GetByID(ctx, id, p.companyID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return mapAttendanceToResponse(att, a.policies.For(p.companyID).Location()), nil
}

// ExportAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ExportAttendance(ctx context.Context, filter attendance.AttendanceFilter) ([]byte, error) {
	p, err := principalFromContext(ctx, false)
	if err != nil {
		return nil, err
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.Limit = -1 // every matching row

	attendances, _, err := a.AttendanceRepository.List(ctx, filter, p.companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}

	loc := a.policies.For(p.companyID).Location()
	sheet := export.Sheet{
		Name: "Attendance",
		Headers: []string{
			"Date", "Employee", "Status", "Clock In", "Clock Out",
			"Break Minutes", "Actual Work Minutes", "Overtime Minutes", "Night Shift Minutes",
		},
	}
	for _, att := range attendances {
		r := mapAttendanceToResponse(att, loc)
		sheet.Rows = append(sheet.Rows, []any{
			r.Date, r.EmployeeName, r.Status, deref(r.ClockInTime), deref(r.ClockOutTime),
			r.BreakMinutes, intOrNil(r.ActualWorkMinutes), intOrNil(r.OvertimeMinutes), intOrNil(r.NightShiftMinutes),
		})
	}

	data, err := export.Workbook(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to export attendances: %w", err)
	}
	return data, nil
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intOrNil(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func mapAttendanceToResponse(att attendance.Attendance, loc *time.Location) attendance.AttendanceResponse {
	var employeeName string
	if att.EmployeeName != nil {
		employeeName = *att.EmployeeName
	}

	breaks := make([]attendance.BreakResponse, 0, len(att.Breaks))
	for _, b := range att.Breaks {
		breaks = append(breaks, attendance.BreakResponse{
			Start: b.Start.In(loc).Format(time.RFC3339),
			End:   timePtrToString(b.End, loc),
		})
	}

	return attendance.AttendanceResponse{
		ID:                att.ID,
		EmployeeID:        att.EmployeeID,
		EmployeeName:      employeeName,
		Date:              att.Date.Format("2006-01-02"),
		ClockInTime:       timePtrToString(att.ClockIn, loc),
		ClockOutTime:      timePtrToString(att.ClockOut, loc),
		Breaks:            breaks,
		BreakMinutes:      att.BreakMinutes(),
		ActualWorkMinutes: att.ActualWorkMinutes,
		OvertimeMinutes:   att.OvertimeMinutes,
		NightShiftMinutes: att.NightShiftMinutes,
		Status:            att.Status,
		CreatedAt:         att.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:         att.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	tx database.Transactor,
	policies *config.PolicySet,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		tx:                   tx,
		policies:             policies,
		now:                  time.Now,
	}
}
