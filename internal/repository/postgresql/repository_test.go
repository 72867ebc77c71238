package postgresql_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	companyID  string
	userID     string
	managerID  string
	employeeID string
}

// setupTestDB connects to TEST_DATABASE_URL, applies migrations and clears the tables.
// Tests are skipped when the variable is unset.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	_, err = database.NewMigrator(db).Apply(ctx, func(string) {})
	require.NoError(t, err)

	_, err = db.Exec(ctx, "TRUNCATE TABLE correction_requests, attendances, employees, users, companies CASCADE")
	require.NoError(t, err)

	return db
}

func seed(t *testing.T, db *database.DB) fixture {
	t.Helper()
	ctx := context.Background()

	var f fixture
	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO companies (name) VALUES ('Test Company') RETURNING id`).Scan(&f.companyID))
	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO users (company_id, email, role) VALUES ($1, 'staff@example.com', 'employee') RETURNING id`,
		f.companyID).Scan(&f.userID))
	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO users (company_id, email, role) VALUES ($1, 'lead@example.com', 'manager') RETURNING id`,
		f.companyID).Scan(&f.managerID))
	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO employees (company_id, user_id, full_name) VALUES ($1, $2, 'Siti Rahma') RETURNING id`,
		f.companyID, f.userID).Scan(&f.employeeID))

	return f
}

func TestAttendanceRepository(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)

	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	in := time.Date(2025, time.March, 10, 2, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, attendance.Attendance{
		CompanyID:  f.companyID,
		EmployeeID: f.employeeID,
		Date:       day,
		ClockIn:    &in,
		Status:     attendance.StatusWorking,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, attendance.Attendance{
		CompanyID: f.companyID, EmployeeID: f.employeeID, Date: day, ClockIn: &in, Status: attendance.StatusWorking,
	})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	existing, err := repo.GetByEmployeeAndDate(ctx, f.employeeID, day, f.companyID)
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, created.ID, existing.ID)

	tx := postgresql.NewTransactor(db)
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := repo.GetOpenSession(ctx, f.employeeID, f.companyID)
		if err != nil {
			return err
		}
		breakEnd := in.Add(90 * time.Minute)
		open.Breaks = []attendance.BreakInterval{{Start: in.Add(time.Hour), End: &breakEnd}}
		out := in.Add(9 * time.Hour)
		open.ClockOut = &out
		open.Status = attendance.StatusLeft
		actual, overtime, night := 510, 30, 0
		open.ActualWorkMinutes, open.OvertimeMinutes, open.NightShiftMinutes = &actual, &overtime, &night
		return repo.Update(ctx, open)
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID, f.companyID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLeft, got.Status)
	assert.Equal(t, 30, got.BreakMinutes())
	require.NotNil(t, got.ActualWorkMinutes)
	assert.Equal(t, 510, *got.ActualWorkMinutes)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Siti Rahma", *got.EmployeeName)

	_, err = repo.GetOpenSession(ctx, f.employeeID, f.companyID)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	_, err = repo.GetByID(ctx, created.ID, uuid.NewString())
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	list, total, err := repo.List(ctx, attendance.AttendanceFilter{Page: 1, Limit: 10, SortBy: "overtime_minutes"}, f.companyID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	mine, total, err := repo.GetMyAttendance(ctx, f.employeeID, attendance.MyAttendanceFilter{Page: 1, Limit: 10}, f.companyID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, mine, 1)
}

func TestCorrectionRequestRepository(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)
	ctx := context.Background()

	attRepo := postgresql.NewAttendanceRepository(db)
	repo := postgresql.NewCorrectionRequestRepository(db)

	in := time.Date(2025, time.March, 10, 2, 0, 0, 0, time.UTC)
	out := in.Add(9 * time.Hour)
	att, err := attRepo.Create(ctx, attendance.Attendance{
		CompanyID: f.companyID, EmployeeID: f.employeeID, Date: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		ClockIn: &in, ClockOut: &out, Status: attendance.StatusLeft,
	})
	require.NoError(t, err)

	newOut := out.Add(time.Hour)
	req := correction.Request{
		ID:             uuid.Must(uuid.NewV7()).String(),
		CompanyID:      f.companyID,
		EmployeeID:     f.employeeID,
		AttendanceID:   att.ID,
		RequestedBy:    f.userID,
		ApproverID:     f.managerID,
		Kind:           correction.KindTimeCorrection,
		Before:         correction.Snapshot{ClockIn: &in, ClockOut: &out},
		After:          correction.Snapshot{ClockIn: &in, ClockOut: &newOut},
		PreviousStatus: attendance.StatusLeft,
		Status:         correction.StatusPending,
		Reason:         "stayed for the release",
	}
	created, err := repo.Create(ctx, req)
	require.NoError(t, err)

	dup := req
	dup.ID = uuid.Must(uuid.NewV7()).String()
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, correction.ErrAlreadyPending)

	pending, err := repo.FindPendingForRecord(ctx, att.ID, f.companyID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, created.ID, pending.ID)
	assert.True(t, pending.After.ClockOut.Equal(newOut))

	stale, err := repo.ListPendingOlderThan(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	now := time.Now()
	comment := "ok"
	created.Status = correction.StatusApproved
	created.DecidedBy = &f.managerID
	created.DecidedAt = &now
	created.DecisionComment = &comment
	require.NoError(t, repo.Update(ctx, created))

	pending, err = repo.FindPendingForRecord(ctx, att.ID, f.companyID)
	require.NoError(t, err)
	assert.Nil(t, pending)

	status := correction.StatusApproved
	list, total, err := repo.List(ctx, correction.CorrectionFilter{Status: &status, Page: 1, Limit: 20}, f.companyID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Siti Rahma", *list[0].EmployeeName)

	_, err = repo.GetByID(ctx, uuid.NewString(), f.companyID)
	assert.ErrorIs(t, err, correction.ErrCorrectionNotFound)
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	u, err := repo.GetByID(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, u.Role)
	require.NotNil(t, u.EmployeeID)
	assert.Equal(t, f.employeeID, *u.EmployeeID)

	approvers, err := repo.ListApprovers(ctx, f.companyID)
	require.NoError(t, err)
	require.Len(t, approvers, 1)
	assert.Equal(t, f.managerID, approvers[0].ID)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)

	boom := errors.New("boom")
	day := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)
	err := postgresql.NewTransactor(db).WithinTransaction(ctx, func(ctx context.Context) error {
		in := day.Add(2 * time.Hour)
		if _, err := repo.Create(ctx, attendance.Attendance{
			CompanyID: f.companyID, EmployeeID: f.employeeID, Date: day, ClockIn: &in, Status: attendance.StatusWorking,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	existing, err := repo.GetByEmployeeAndDate(ctx, f.employeeID, day, f.companyID)
	require.NoError(t, err)
	assert.Nil(t, existing)
}
