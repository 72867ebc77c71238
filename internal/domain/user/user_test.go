package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleOwner, PermissionAttendanceApprove))
	assert.True(t, HasPermission(RoleManager, PermissionReportsView))
	assert.True(t, HasPermission(RoleEmployee, PermissionCorrectionCreate))
	assert.False(t, HasPermission(RoleEmployee, PermissionAttendanceApprove))
	assert.False(t, HasPermission(RolePending, PermissionAttendanceCreate))
	assert.False(t, HasPermission(Role("admin"), PermissionAttendanceViewOwn))
}

func TestUser_CanApprove(t *testing.T) {
	company := "0199a1b2-0000-7000-8000-000000000001"

	manager := User{Role: RoleManager, CompanyID: &company}
	assert.True(t, manager.CanApprove())
	assert.True(t, manager.IsManager())
	assert.True(t, manager.BelongsTo(company))
	assert.False(t, manager.BelongsTo("other"))

	employee := User{Role: RoleEmployee}
	assert.False(t, employee.CanApprove())
	assert.False(t, employee.BelongsTo(company))
}
