package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const correctionColumns = `
	c.id, c.company_id, c.employee_id, c.attendance_id, c.requested_by, c.approver_id, c.kind,
	c.before_clock_in, c.before_clock_out, c.before_break_minutes,
	c.after_clock_in, c.after_clock_out, c.after_break_minutes,
	c.previous_status, c.status, c.reason, c.decision_comment, c.decided_by, c.decided_at,
	c.created_at, c.updated_at,
	e.full_name AS employee_name,
	a.date AS attendance_date`

const correctionFrom = `
	FROM correction_requests c
	LEFT JOIN employees e ON e.id = c.employee_id
	LEFT JOIN attendances a ON a.id = c.attendance_id`

type correctionRequestRepository struct {
	db *database.DB
}

func scanCorrection(row pgx.Row) (correction.Request, error) {
	var req correction.Request
	err := row.Scan(
		&req.ID, &req.CompanyID, &req.EmployeeID, &req.AttendanceID, &req.RequestedBy, &req.ApproverID, &req.Kind,
		&req.Before.ClockIn, &req.Before.ClockOut, &req.Before.BreakMinutes,
		&req.After.ClockIn, &req.After.ClockOut, &req.After.BreakMinutes,
		&req.PreviousStatus, &req.Status, &req.Reason, &req.DecisionComment, &req.DecidedBy, &req.DecidedAt,
		&req.CreatedAt, &req.UpdatedAt,
		&req.EmployeeName, &req.AttendanceDate,
	)
	return req, err
}

// Create implements correction.Repository.
func (r *correctionRequestRepository) Create(ctx context.Context, req correction.Request) (correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO correction_requests (
			id, company_id, employee_id, attendance_id, requested_by, approver_id, kind,
			before_clock_in, before_clock_out, before_break_minutes,
			after_clock_in, after_clock_out, after_break_minutes,
			previous_status, status, reason
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID, req.CompanyID, req.EmployeeID, req.AttendanceID, req.RequestedBy, req.ApproverID, req.Kind,
		req.Before.ClockIn, req.Before.ClockOut, req.Before.BreakMinutes,
		req.After.ClockIn, req.After.ClockOut, req.After.BreakMinutes,
		req.PreviousStatus, req.Status, req.Reason,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return correction.Request{}, correction.ErrAlreadyPending
		}
		return correction.Request{}, fmt.Errorf("failed to create correction request: %w", err)
	}

	return req, nil
}

// GetByID implements correction.Repository.
func (r *correctionRequestRepository) GetByID(ctx context.Context, id string, companyID string) (correction.Request, error) {
	return r.getByID(ctx, id, companyID, "")
}

// GetByIDForUpdate implements correction.Repository.
func (r *correctionRequestRepository) GetByIDForUpdate(ctx context.Context, id string, companyID string) (correction.Request, error) {
	return r.getByID(ctx, id, companyID, "FOR UPDATE OF c")
}

func (r *correctionRequestRepository) getByID(ctx context.Context, id string, companyID string, lock string) (correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + correctionColumns + correctionFrom + `
		WHERE c.id = $1 AND c.company_id = $2
		` + lock

	req, err := scanCorrection(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return correction.Request{}, correction.ErrCorrectionNotFound
		}
		return correction.Request{}, fmt.Errorf("failed to get correction request by ID: %w", err)
	}

	return req, nil
}

// FindPendingForRecord implements correction.Repository.
func (r *correctionRequestRepository) FindPendingForRecord(ctx context.Context, attendanceID string, companyID string) (*correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + correctionColumns + correctionFrom + `
		WHERE c.attendance_id = $1 AND c.company_id = $2 AND c.status = $3
		LIMIT 1
	`

	req, err := scanCorrection(q.QueryRow(ctx, query, attendanceID, companyID, correction.StatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pending correction request: %w", err)
	}

	return &req, nil
}

// Update implements correction.Repository. Only the decision columns change.
func (r *correctionRequestRepository) Update(ctx context.Context, req correction.Request) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE correction_requests SET
			status = $1,
			decision_comment = $2,
			decided_by = $3,
			decided_at = $4,
			updated_at = NOW()
		WHERE id = $5 AND company_id = $6
	`

	tag, err := q.Exec(ctx, query, req.Status, req.DecisionComment, req.DecidedBy, req.DecidedAt, req.ID, req.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to update correction request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return correction.ErrCorrectionNotFound
	}

	return nil
}

// List implements correction.Repository.
func (r *correctionRequestRepository) List(ctx context.Context, filter correction.CorrectionFilter, companyID string) ([]correction.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "c.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	filters := []struct {
		column string
		value  *string
	}{
		{"c.employee_id", filter.EmployeeID},
		{"c.attendance_id", filter.AttendanceID},
		{"c.approver_id", filter.ApproverID},
		{"c.status", filter.Status},
		{"c.kind", filter.Kind},
	}
	for _, f := range filters {
		if f.value != nil && *f.value != "" {
			baseWhere += fmt.Sprintf(" AND %s = $%d", f.column, argIdx)
			args = append(args, *f.value)
			argIdx++
		}
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM correction_requests c WHERE " + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count correction requests: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s
		WHERE %s
		ORDER BY c.created_at %s, c.id
		LIMIT $%d OFFSET $%d
	`, correctionColumns, correctionFrom, baseWhere, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query correction requests: %w", err)
	}
	defer rows.Close()

	var requests []correction.Request
	for rows.Next() {
		req, err := scanCorrection(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan correction request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate correction requests: %w", err)
	}

	return requests, total, nil
}

// ListPendingOlderThan implements correction.Repository.
func (r *correctionRequestRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + correctionColumns + correctionFrom + `
		WHERE c.status = $1 AND c.created_at < $2
		ORDER BY c.created_at ASC
	`

	rows, err := q.Query(ctx, query, correction.StatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale correction requests: %w", err)
	}
	defer rows.Close()

	var requests []correction.Request
	for rows.Next() {
		req, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

func NewCorrectionRequestRepository(db *database.DB) correction.Repository {
	return &correctionRequestRepository{db: db}
}
