package auth

import "github.com/frahmantamala/vehicle-permit/internal/user"

// PermissionChecker answers role questions for the HTTP layer.
type PermissionChecker interface {
	CanDecidePermits(role user.Role) bool
	CanViewReports(role user.Role) bool
	CanExport(role user.Role) bool
	CanSendNotifications(role user.Role) bool
	HasAnyRole(role user.Role, allowed []user.Role) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) CanDecidePermits(role user.Role) bool {
	return role.CanDecide()
}

func (c *DefaultPermissionChecker) CanViewReports(role user.Role) bool {
	return c.HasAnyRole(role, []user.Role{user.RoleHR, user.RoleAdmin})
}

func (c *DefaultPermissionChecker) CanExport(role user.Role) bool {
	return role == user.RoleAdmin
}

func (c *DefaultPermissionChecker) CanSendNotifications(role user.Role) bool {
	return c.HasAnyRole(role, []user.Role{user.RoleHR, user.RoleAdmin})
}

func (c *DefaultPermissionChecker) HasAnyRole(role user.Role, allowed []user.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
