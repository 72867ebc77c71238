package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() (*Context, *bytes.Buffer) {
	var out bytes.Buffer
	return &Context{Log: log.New(io.Discard), Out: &out}, &out
}

func runCalc(t *testing.T, cmd CalcCmd) calcOutput {
	t.Helper()
	ctx, out := testContext()
	require.NoError(t, cmd.Run(ctx))

	var got calcOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	return got
}

func TestCalcCmd_DayShift(t *testing.T) {
	got := runCalc(t, CalcCmd{
		Date:     "2025-03-10",
		ClockIn:  "09:00",
		ClockOut: "19:00",
		Break:    []string{"12:00-13:00"},
	})

	assert.Equal(t, 60, got.BreakMinutes)
	assert.Equal(t, worktime.Result{ActualWorkMinutes: 540, OvertimeMinutes: 60, NightShiftMinutes: 0}, got.Result)
	assert.Equal(t, "2025-03-10T09:00:00+07:00", got.ClockIn)
}

func TestCalcCmd_Overnight(t *testing.T) {
	got := runCalc(t, CalcCmd{
		Date:     "2025-03-10",
		ClockIn:  "21:00",
		ClockOut: "06:00",
		Break:    []string{"01:00-01:30"},
	})

	assert.Equal(t, "2025-03-11T06:00:00+07:00", got.ClockOut)
	assert.Equal(t, 510, got.ActualWorkMinutes)
	assert.Equal(t, 30, got.OvertimeMinutes)
	assert.Equal(t, 390, got.NightShiftMinutes)
}

func TestCalcCmd_PolicyOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	doc := "companies:\n  acme:\n    standard_work_minutes: 420\n    timezone: UTC\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	got := runCalc(t, CalcCmd{Date: "2025-03-10", ClockIn: "09:00", ClockOut: "17:00", Policy: path, Company: "acme"})
	assert.Equal(t, 480, got.ActualWorkMinutes)
	assert.Equal(t, 60, got.OvertimeMinutes)
	assert.True(t, strings.HasSuffix(got.ClockIn, "Z"))
}

func TestCalcCmd_InvalidInput(t *testing.T) {
	ctx, _ := testContext()

	err := (&CalcCmd{Date: "10/03/2025", ClockIn: "09:00", ClockOut: "17:00"}).Run(ctx)
	assert.ErrorContains(t, err, "--date")

	err = (&CalcCmd{Date: "2025-03-10", ClockIn: "9am", ClockOut: "17:00"}).Run(ctx)
	assert.ErrorContains(t, err, "--clock-in")

	err = (&CalcCmd{Date: "2025-03-10", ClockIn: "09:00", ClockOut: "17:00", Break: []string{"12:00"}}).Run(ctx)
	assert.ErrorContains(t, err, "--break")

	err = (&CalcCmd{Date: "2025-03-10", ClockIn: "09:00", ClockOut: "17:00", Break: []string{"16:30-18:00"}}).Run(ctx)
	assert.ErrorIs(t, err, worktime.ErrInvalidInterval)
}

func TestTokenCmd(t *testing.T) {
	ctx, out := testContext()
	cmd := TokenCmd{
		Secret:     "cli-test-secret-0123456789",
		Expiration: "2h",
		UserID:     "u-1",
		Email:      "dev@example.com",
		CompanyID:  "c-1",
		Role:       "manager",
	}
	require.NoError(t, cmd.Run(ctx))

	svc, err := jwt.NewJWTService(cmd.Secret, cmd.Expiration)
	require.NoError(t, err)
	token, err := svc.JWTAuth().Decode(strings.TrimSpace(out.String()))
	require.NoError(t, err)

	claims, err := token.AsMap(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "manager", claims["role"])
	assert.Equal(t, "c-1", claims["company_id"])
	assert.Nil(t, claims["employee_id"])
}
