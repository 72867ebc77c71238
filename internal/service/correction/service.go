package correction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/notify"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type CorrectionServiceImpl struct {
	correction.Repository
	attendances attendance.AttendanceRepository
	users       user.UserRepository
	tx          database.Transactor
	policies    *config.PolicySet
	notifier    notify.Notifier
	now         func() time.Time
}

type principal struct {
	companyID  string
	userID     string
	employeeID string
	role       user.Role
}

func principalFromContext(ctx context.Context) (principal, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return principal{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return principal{}, fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return principal{}, fmt.Errorf("user_id claim is missing or invalid")
	}

	employeeID, _ := claims["employee_id"].(string)
	role, _ := claims["role"].(string)

	return principal{companyID: companyID, userID: userID, employeeID: employeeID, role: user.Role(role)}, nil
}

// Create implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Create(ctx context.Context, req correction.CreateCorrectionRequest) (correction.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return correction.CorrectionResponse{}, err
	}

	p, err := principalFromContext(ctx)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}
	if p.employeeID == "" {
		return correction.CorrectionResponse{}, fmt.Errorf("employee_id claim is missing or invalid")
	}

	if err := s.checkApprover(ctx, req.ApproverID, p); err != nil {
		return correction.CorrectionResponse{}, err
	}

	policy := s.policies.For(p.companyID)

	var created correction.Request
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.attendances.GetByIDForUpdate(ctx, req.AttendanceID, p.companyID)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return attendance.ErrAttendanceNotFound
			}
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		if record.EmployeeID != p.employeeID {
			return attendance.ErrUnauthorized
		}

		pending, err := s.Repository.FindPendingForRecord(ctx, record.ID, p.companyID)
		if err != nil {
			return fmt.Errorf("failed to find pending correction: %w", err)
		}
		if !correction.CanPropose(record, pending) {
			return correction.ErrAlreadyPending
		}
		if !record.IsClosed() {
			return correction.ErrRecordNotCorrectable
		}

		before := correction.SnapshotOf(record)
		after, err := proposedSnapshot(req, record, before, policy.Location())
		if err != nil {
			return err
		}
		if req.Kind == correction.KindBreakCorrection && after.BreakMinutes >= policy.BreakCeilingMinutes {
			return &correction.BreakLimitError{Limit: policy.BreakCeilingMinutes}
		}
		if after.Equal(before) {
			return correction.ErrNoChanges
		}

		// Reject proposals the calculator cannot settle before anyone has to decide on them
		if _, err := applySnapshot(record, after, policy); err != nil {
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate correction id: %w", err)
		}

		created, err = s.Repository.Create(ctx, correction.Request{
			ID:             id.String(),
			CompanyID:      p.companyID,
			EmployeeID:     record.EmployeeID,
			AttendanceID:   record.ID,
			RequestedBy:    p.userID,
			ApproverID:     req.ApproverID,
			Kind:           req.Kind,
			Before:         before,
			After:          after,
			PreviousStatus: record.Status,
			Status:         correction.StatusPending,
			Reason:         req.Reason,
			EmployeeName:   record.EmployeeName,
			AttendanceDate: &record.Date,
		})
		if err != nil {
			if errors.Is(err, correction.ErrAlreadyPending) {
				return err
			}
			return fmt.Errorf("failed to create correction request: %w", err)
		}
		created.EmployeeName = record.EmployeeName
		created.AttendanceDate = &record.Date

		record.Status = attendance.StatusPendingApproval
		if err := s.attendances.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to freeze attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	s.notify(ctx, created, created.ApproverID, notify.KindCorrectionCreated,
		"Attendance correction awaiting approval",
		fmt.Sprintf("%s asks for a %s on %s: %s", displayName(created), created.Kind, dateOf(created), created.Reason))

	return mapRequestToResponse(created, policy.Location()), nil
}

// checkApprover verifies the assigned approver can decide requests in the caller's company.
func (s *CorrectionServiceImpl) checkApprover(ctx context.Context, approverID string, p principal) error {
	if approverID == p.userID {
		return correction.ErrInvalidApprover
	}
	approver, err := s.users.GetByID(ctx, approverID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return correction.ErrInvalidApprover
		}
		return fmt.Errorf("failed to get approver: %w", err)
	}
	if !approver.BelongsTo(p.companyID) || !approver.CanApprove() {
		return correction.ErrInvalidApprover
	}
	return nil
}

// proposedSnapshot merges the requested values over before. Missing clock values keep the recorded ones.
func proposedSnapshot(req correction.CreateCorrectionRequest, record attendance.Attendance, before correction.Snapshot, loc *time.Location) (correction.Snapshot, error) {
	after := before

	switch req.Kind {
	case correction.KindTimeCorrection:
		if req.ClockIn != nil {
			in, err := parseClockValue(*req.ClockIn, record.Date, loc)
			if err != nil {
				return correction.Snapshot{}, err
			}
			after.ClockIn = &in
		}
		if req.ClockOut != nil {
			out, err := parseClockValue(*req.ClockOut, record.Date, loc)
			if err != nil {
				return correction.Snapshot{}, err
			}
			after.ClockOut = &out
		}
		if after.ClockIn == nil || after.ClockOut == nil {
			return correction.Snapshot{}, fmt.Errorf("%w: both clock in and clock out are required", worktime.ErrInvalidInterval)
		}
		out := worktime.ResolveClockOut(after.ClockIn.In(loc), after.ClockOut.In(loc)).UTC()
		after.ClockOut = &out
	case correction.KindBreakCorrection:
		after.BreakMinutes = *req.BreakMinutes
	}

	return after, nil
}

// parseClockValue reads "HH:MM" on the record's date in loc, or a full RFC3339 timestamp.
func parseClockValue(value string, date time.Time, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse("15:04", value); err == nil {
		return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: cannot read clock value %q", worktime.ErrInvalidInterval, value)
	}
	return t.UTC(), nil
}

// applySnapshot returns record with after applied, breaks refitted and minutes re-derived.
func applySnapshot(record attendance.Attendance, after correction.Snapshot, policy config.Policy) (attendance.Attendance, error) {
	if after.ClockIn == nil || after.ClockOut == nil {
		return attendance.Attendance{}, fmt.Errorf("%w: record has no complete clock pair", worktime.ErrInvalidInterval)
	}

	loc := policy.Location()
	in := after.ClockIn.In(loc)
	out := worktime.ResolveClockOut(in, after.ClockOut.In(loc))

	breaks, err := worktime.FitBreaks(worktime.Interval{Start: in, End: out}, record.ClosedBreaks(), after.BreakMinutes)
	if err != nil {
		return attendance.Attendance{}, err
	}

	result, err := worktime.NewCalculator(policy.WorkTime()).Calculate(worktime.Shift{ClockIn: in, ClockOut: out, Breaks: breaks})
	if err != nil {
		return attendance.Attendance{}, err
	}

	inUTC, outUTC := in.UTC(), out.UTC()
	record.ClockIn = &inUTC
	record.ClockOut = &outUTC
	for i := range breaks {
		breaks[i] = worktime.Interval{Start: breaks[i].Start.UTC(), End: breaks[i].End.UTC()}
	}
	record.SetBreaks(breaks)
	record.ApplyResult(result)
	return record, nil
}

// Approve implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Approve(ctx context.Context, req correction.ApproveCorrectionRequest) (correction.CorrectionResponse, error) {
	p, err := principalFromContext(ctx)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}
	policy := s.policies.For(p.companyID)

	request, err := s.decide(ctx, req.ID, p, func(request *correction.Request, record *attendance.Attendance) error {
		applied, err := applySnapshot(*record, request.After, policy)
		if err != nil {
			return err
		}
		applied.Status = policy.ApprovedRecordStatus
		*record = applied

		request.Status = correction.StatusApproved
		request.DecisionComment = req.Comment
		return nil
	})
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	s.notify(ctx, request, request.RequestedBy, notify.KindCorrectionApproved,
		"Attendance correction approved",
		fmt.Sprintf("Your %s for %s was approved", request.Kind, dateOf(request)))

	return mapRequestToResponse(request, policy.Location()), nil
}

// Reject implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Reject(ctx context.Context, req correction.RejectCorrectionRequest) (correction.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return correction.CorrectionResponse{}, err
	}

	p, err := principalFromContext(ctx)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	request, err := s.decide(ctx, req.ID, p, func(request *correction.Request, record *attendance.Attendance) error {
		record.Status = request.PreviousStatus
		request.Status = correction.StatusRejected
		comment := req.Comment
		request.DecisionComment = &comment
		return nil
	})
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	s.notify(ctx, request, request.RequestedBy, notify.KindCorrectionRejected,
		"Attendance correction rejected",
		fmt.Sprintf("Your %s for %s was rejected: %s", request.Kind, dateOf(request), req.Comment))

	return mapRequestToResponse(request, s.policies.For(p.companyID).Location()), nil
}

// decide locks the request and its record, lets fn settle both and stores them in one transaction.
func (s *CorrectionServiceImpl) decide(ctx context.Context, id string, p principal, fn func(request *correction.Request, record *attendance.Attendance) error) (correction.Request, error) {
	var request correction.Request
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		request, err = s.Repository.GetByIDForUpdate(ctx, id, p.companyID)
		if err != nil {
			if errors.Is(err, correction.ErrCorrectionNotFound) {
				return correction.ErrCorrectionNotFound
			}
			return fmt.Errorf("failed to get correction request: %w", err)
		}
		if !request.IsPending() {
			return correction.ErrInvalidTransition
		}
		if request.ApproverID != p.userID && p.role != user.RoleOwner {
			return correction.ErrNotAssignedApprover
		}

		record, err := s.attendances.GetByIDForUpdate(ctx, request.AttendanceID, p.companyID)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return attendance.ErrAttendanceNotFound
			}
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		if err := fn(&request, &record); err != nil {
			return err
		}

		now := s.now().UTC()
		request.DecidedBy = &p.userID
		request.DecidedAt = &now

		if err := s.attendances.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		if err := s.Repository.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to update correction request: %w", err)
		}
		return nil
	})
	if err != nil {
		return correction.Request{}, err
	}
	return request, nil
}

// CanPropose implements correction.CorrectionService.
func (s *CorrectionServiceImpl) CanPropose(ctx context.Context, attendanceID string) (correction.CanProposeResponse, error) {
	p, err := principalFromContext(ctx)
	if err != nil {
		return correction.CanProposeResponse{}, err
	}

	record, err := s.attendances.GetByID(ctx, attendanceID, p.companyID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return correction.CanProposeResponse{}, attendance.ErrAttendanceNotFound
		}
		return correction.CanProposeResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if record.EmployeeID != p.employeeID && !user.HasPermission(p.role, user.PermissionAttendanceViewAll) {
		return correction.CanProposeResponse{}, attendance.ErrUnauthorized
	}

	pending, err := s.Repository.FindPendingForRecord(ctx, record.ID, p.companyID)
	if err != nil {
		return correction.CanProposeResponse{}, fmt.Errorf("failed to find pending correction: %w", err)
	}

	resp := correction.CanProposeResponse{
		AttendanceID: record.ID,
		CanPropose:   correction.CanPropose(record, pending),
	}
	if pending != nil {
		resp.PendingRequestID = &pending.ID
	}
	return resp, nil
}

// Get implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Get(ctx context.Context, id string) (correction.CorrectionResponse, error) {
	p, err := principalFromContext(ctx)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	request, err := s.Repository.GetByID(ctx, id, p.companyID)
	if err != nil {
		if errors.Is(err, correction.ErrCorrectionNotFound) {
			return correction.CorrectionResponse{}, correction.ErrCorrectionNotFound
		}
		return correction.CorrectionResponse{}, fmt.Errorf("failed to get correction request: %w", err)
	}
	if request.EmployeeID != p.employeeID && !user.HasPermission(p.role, user.PermissionAttendanceApprove) {
		return correction.CorrectionResponse{}, user.ErrInsufficientPermissions
	}

	return mapRequestToResponse(request, s.policies.For(p.companyID).Location()), nil
}

// ListMine implements correction.CorrectionService.
func (s *CorrectionServiceImpl) ListMine(ctx context.Context, filter correction.CorrectionFilter) (correction.ListCorrectionResponse, error) {
	p, err := principalFromContext(ctx)
	if err != nil {
		return correction.ListCorrectionResponse{}, err
	}
	if p.employeeID == "" {
		return correction.ListCorrectionResponse{}, fmt.Errorf("employee_id claim is missing or invalid")
	}

	filter.EmployeeID = &p.employeeID
	return s.list(ctx, p.companyID, filter)
}

// List implements correction.CorrectionService.
func (s *CorrectionServiceImpl) List(ctx context.Context, filter correction.CorrectionFilter) (correction.ListCorrectionResponse, error) {
	p, err := principalFromContext(ctx)
	if err != nil {
		return correction.ListCorrectionResponse{}, err
	}
	return s.list(ctx, p.companyID, filter)
}

func (s *CorrectionServiceImpl) list(ctx context.Context, companyID string, filter correction.CorrectionFilter) (correction.ListCorrectionResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	requests, total, err := s.Repository.List(ctx, filter, companyID)
	if err != nil {
		return correction.ListCorrectionResponse{}, fmt.Errorf("failed to list correction requests: %w", err)
	}

	loc := s.policies.For(companyID).Location()
	responses := make([]correction.CorrectionResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, mapRequestToResponse(r, loc))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return correction.ListCorrectionResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Corrections: responses,
	}, nil
}

// ListApprovers implements correction.CorrectionService.
func (s *CorrectionServiceImpl) ListApprovers(ctx context.Context) ([]correction.ApproverResponse, error) {
	p, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.users.ListApprovers(ctx, p.companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvers: %w", err)
	}

	approvers := make([]correction.ApproverResponse, 0, len(users))
	for _, u := range users {
		if u.ID == p.userID {
			continue
		}
		approvers = append(approvers, correction.ApproverResponse{
			UserID:       u.ID,
			Email:        u.Email,
			Role:         string(u.Role),
			EmployeeName: u.EmployeeName,
		})
	}
	return approvers, nil
}

// RemindPending re-notifies approvers of requests pending for longer than olderThan.
// It returns how many reminders were sent.
func (s *CorrectionServiceImpl) RemindPending(ctx context.Context, olderThan time.Duration) (int, error) {
	requests, err := s.Repository.ListPendingOlderThan(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to list pending correction requests: %w", err)
	}

	sent := 0
	for _, r := range requests {
		if s.notify(ctx, r, r.ApproverID, notify.KindCorrectionReminder,
			"Attendance correction still waiting",
			fmt.Sprintf("%s's %s for %s has been pending since %s",
				displayName(r), r.Kind, dateOf(r), r.CreatedAt.UTC().Format(time.RFC3339))) {
			sent++
		}
	}
	return sent, nil
}

// notify is best effort; delivery problems are logged and never fail the caller.
func (s *CorrectionServiceImpl) notify(ctx context.Context, r correction.Request, recipientID, kind, title, body string) bool {
	err := s.notifier.Notify(ctx, notify.Message{
		Kind:        kind,
		CompanyID:   r.CompanyID,
		RecipientID: recipientID,
		Title:       title,
		Body:        body,
		Data:        map[string]string{"correction_id": r.ID, "attendance_id": r.AttendanceID, "status": r.Status},
		SentAt:      s.now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to deliver correction notification",
			"correction_id", r.ID, "kind", kind, "recipient_id", recipientID, "error", err)
		return false
	}
	return true
}

func displayName(r correction.Request) string {
	if r.EmployeeName != nil && *r.EmployeeName != "" {
		return *r.EmployeeName
	}
	return "An employee"
}

func dateOf(r correction.Request) string {
	if r.AttendanceDate == nil {
		return "an attendance record"
	}
	return r.AttendanceDate.Format("2006-01-02")
}

func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	format := t.In(loc).Format(time.RFC3339)
	return &format
}

func mapSnapshot(s correction.Snapshot, loc *time.Location) correction.SnapshotResponse {
	return correction.SnapshotResponse{
		ClockIn:      timePtrToString(s.ClockIn, loc),
		ClockOut:     timePtrToString(s.ClockOut, loc),
		BreakMinutes: s.BreakMinutes,
	}
}

func mapRequestToResponse(r correction.Request, loc *time.Location) correction.CorrectionResponse {
	var attendanceDate *string
	if r.AttendanceDate != nil {
		d := r.AttendanceDate.Format("2006-01-02")
		attendanceDate = &d
	}

	return correction.CorrectionResponse{
		ID:              r.ID,
		AttendanceID:    r.AttendanceID,
		AttendanceDate:  attendanceDate,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		RequestedBy:     r.RequestedBy,
		ApproverID:      r.ApproverID,
		Kind:            r.Kind,
		Status:          r.Status,
		Before:          mapSnapshot(r.Before, loc),
		After:           mapSnapshot(r.After, loc),
		Reason:          r.Reason,
		DecisionComment: r.DecisionComment,
		DecidedBy:       r.DecidedBy,
		DecidedAt:       timePtrToString(r.DecidedAt, loc),
		CreatedAt:       r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:       r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func NewCorrectionService(
	repo correction.Repository,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	tx database.Transactor,
	policies *config.PolicySet,
	notifier notify.Notifier,
) *CorrectionServiceImpl {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &CorrectionServiceImpl{
		Repository:  repo,
		attendances: attendanceRepo,
		users:       userRepo,
		tx:          tx,
		policies:    policies,
		notifier:    notifier,
		now:         time.Now,
	}
}
