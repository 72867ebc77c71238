package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-0123456789"

func newTestService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(testSecret, "1h")
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_InvalidDuration(t *testing.T) {
	_, err := NewJWTService(testSecret, "one hour")
	assert.Error(t, err)
}

func TestGenerateAccessToken(t *testing.T) {
	svc := newTestService(t)
	employeeID := "0199a1b2-0000-7000-8000-0000000000e1"
	companyID := "0199a1b2-0000-7000-8000-0000000000c1"

	token, expiresAt, err := svc.GenerateAccessToken("u-1", "ana@example.com", &employeeID, &companyID, user.RoleEmployee)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), expiresAt, 5)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "u-1", claims["user_id"])
	assert.Equal(t, "ana@example.com", claims["email"])
	assert.Equal(t, employeeID, claims["employee_id"])
	assert.Equal(t, companyID, claims["company_id"])
	assert.Equal(t, string(user.RoleEmployee), claims["role"])
	assert.Equal(t, TypeAccess, claims["type"])
}

func TestGenerateAccessToken_NilClaims(t *testing.T) {
	svc := newTestService(t)

	token, _, err := svc.GenerateAccessToken("u-2", "new@example.com", nil, nil, user.RolePending)
	require.NoError(t, err)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(t.Context())
	require.NoError(t, err)
	assert.Nil(t, claims["employee_id"])
	assert.Nil(t, claims["company_id"])
}

func TestSSEToken(t *testing.T) {
	svc := newTestService(t)

	token, expiresIn, err := svc.GenerateSSEToken("u-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}

func TestValidateSSEToken_Rejects(t *testing.T) {
	svc := newTestService(t)

	access, _, err := svc.GenerateAccessToken("u-1", "ana@example.com", nil, nil, user.RoleOwner)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateSSEToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, err := svc.GenerateSSEToken("u-1")
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewJWTService("another-secret-0123456789", "1h")
	require.NoError(t, err)
	foreign, _, err := other.GenerateSSEToken("u-1")
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
