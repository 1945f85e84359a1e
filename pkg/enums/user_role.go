package enums

import "fmt"

// UserRole is the dashboard role carried in the token's app_metadata.
type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleBroker      UserRole = "broker"
	UserRoleCoordinator UserRole = "coordinator"
	UserRoleAgent       UserRole = "agent"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleBroker,
	UserRoleCoordinator,
	UserRoleAgent,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanManagePayouts reports whether the role may drive payout writes.
func (r UserRole) CanManagePayouts() bool {
	switch r {
	case UserRoleAdmin, UserRoleBroker, UserRoleCoordinator:
		return true
	default:
		return false
	}
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
