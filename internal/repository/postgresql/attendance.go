package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.employee_id, a.company_id, a.date,
	a.clock_in, a.clock_out, a.breaks,
	a.actual_work_minutes, a.overtime_minutes, a.night_shift_minutes,
	a.status, a.created_at, a.updated_at,
	e.full_name AS employee_name`

type attendanceRepository struct {
	db *database.DB
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var breaks []byte
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date,
		&att.ClockIn, &att.ClockOut, &breaks,
		&att.ActualWorkMinutes, &att.OvertimeMinutes, &att.NightShiftMinutes,
		&att.Status, &att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if len(breaks) > 0 {
		if err := json.Unmarshal(breaks, &att.Breaks); err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to decode breaks: %w", err)
		}
	}
	return att, nil
}

func encodeBreaks(breaks []attendance.BreakInterval) ([]byte, error) {
	if breaks == nil {
		breaks = []attendance.BreakInterval{}
	}
	return json.Marshal(breaks)
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	breaks, err := encodeBreaks(newAttendance.Breaks)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to encode breaks: %w", err)
	}

	query := `
		INSERT INTO attendances (
			employee_id, company_id, date, clock_in, clock_out, breaks,
			actual_work_minutes, overtime_minutes, night_shift_minutes, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		newAttendance.EmployeeID,
		newAttendance.CompanyID,
		newAttendance.Date,
		newAttendance.ClockIn,
		newAttendance.ClockOut,
		breaks,
		newAttendance.ActualWorkMinutes,
		newAttendance.OvertimeMinutes,
		newAttendance.NightShiftMinutes,
		newAttendance.Status,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	return a.getByID(ctx, id, companyID, "")
}

// GetByIDForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByIDForUpdate(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	return a.getByID(ctx, id, companyID, "FOR UPDATE OF a")
}

func (a *attendanceRepository) getByID(ctx context.Context, id string, companyID string, lock string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1 AND a.company_id = $2
		` + lock

	att, err := scanAttendance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1
		  AND a.date = $2
		  AND a.company_id = $3
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date.Format("2006-01-02"), companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &att, nil
}

// GetOpenSession implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenSession(ctx context.Context, employeeID string, companyID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1
		  AND a.company_id = $2
		  AND a.status = $3
		  AND a.clock_out IS NULL
		ORDER BY a.clock_in DESC
		LIMIT 1
		FOR UPDATE OF a
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, companyID, attendance.StatusWorking))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrNotCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get open session: %w", err)
	}

	return att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	breaks, err := encodeBreaks(att.Breaks)
	if err != nil {
		return fmt.Errorf("failed to encode breaks: %w", err)
	}

	query := `
		UPDATE attendances SET
			clock_in = $1,
			clock_out = $2,
			breaks = $3,
			actual_work_minutes = $4,
			overtime_minutes = $5,
			night_shift_minutes = $6,
			status = $7,
			updated_at = $8
		WHERE id = $9 AND company_id = $10
		RETURNING id
	`

	var updatedID string
	err = q.QueryRow(ctx, query,
		att.ClockIn,
		att.ClockOut,
		breaks,
		att.ActualWorkMinutes,
		att.OvertimeMinutes,
		att.NightShiftMinutes,
		att.Status,
		time.Now(),
		att.ID,
		att.CompanyID,
	).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	// Build WHERE clause
	baseWhere := "a.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Employee name filter (search)
	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		baseWhere += fmt.Sprintf(" AND e.full_name ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.EmployeeName+"%")
		argIdx++
	}

	baseWhere, args, argIdx = appendDateStatusFilters(baseWhere, args, argIdx, filter.Date, filter.StartDate, filter.EndDate, filter.Status)

	var orderByField string
	switch filter.SortBy {
	case "employee_name":
		orderByField = "e.full_name"
	case "overtime_minutes":
		orderByField = "a.overtime_minutes"
	default:
		orderByField = attendanceSortColumn(filter.SortBy)
	}

	return a.list(ctx, baseWhere, args, argIdx, orderByField, filter.SortOrder, filter.Page, filter.Limit)
}

// GetMyAttendance implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetMyAttendance(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	baseWhere := "a.employee_id = $1 AND a.company_id = $2"
	args := []interface{}{employeeID, companyID}
	argIdx := 3

	baseWhere, args, argIdx = appendDateStatusFilters(baseWhere, args, argIdx, filter.Date, filter.StartDate, filter.EndDate, filter.Status)

	return a.list(ctx, baseWhere, args, argIdx, attendanceSortColumn(filter.SortBy), filter.SortOrder, filter.Page, filter.Limit)
}

func attendanceSortColumn(sortBy string) string {
	switch sortBy {
	case "clock_in_time":
		return "a.clock_in"
	case "clock_out_time":
		return "a.clock_out"
	case "status":
		return "a.status"
	}
	return "a.date"
}

func appendDateStatusFilters(where string, args []interface{}, argIdx int, date, startDate, endDate, status *string) (string, []interface{}, int) {
	if date != nil && *date != "" {
		where += fmt.Sprintf(" AND a.date = $%d", argIdx)
		args = append(args, *date)
		argIdx++
	}
	if startDate != nil && *startDate != "" {
		where += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *startDate)
		argIdx++
	}
	if endDate != nil && *endDate != "" {
		where += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *endDate)
		argIdx++
	}
	if status != nil && *status != "" {
		where += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *status)
		argIdx++
	}
	return where, args, argIdx
}

// list runs the count and page queries shared by List and GetMyAttendance.
// A limit of -1 returns every matching row.
func (a *attendanceRepository) list(ctx context.Context, baseWhere string, args []interface{}, argIdx int, orderByField, order string, page, limit int) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Count total (need to join employees for name filter)
	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(order) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY %s %s, a.id
	`, attendanceColumns, baseWhere, orderByField, sortOrder)

	if limit >= 0 {
		if limit == 0 {
			limit = 20
		}
		if page < 1 {
			page = 1
		}
		selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, limit, (page-1)*limit)
	}

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return attendances, total, nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
