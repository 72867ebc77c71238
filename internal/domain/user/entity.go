package user

import "time"

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can approve attendance corrections
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
)

type User struct {
	ID        string
	CompanyID *string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO / Join
	EmployeeID   *string
	EmployeeName *string
}

// IsOwner checks if user is company owner
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// IsManager checks if user is manager or owner
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleOwner
}

// CanApprove checks if user can approve requests
func (u *User) CanApprove() bool {
	return HasPermission(u.Role, PermissionAttendanceApprove)
}

// BelongsTo reports whether the user is a member of companyID
func (u *User) BelongsTo(companyID string) bool {
	return u.CompanyID != nil && *u.CompanyID == companyID
}
