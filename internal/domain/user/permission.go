package user

type Permission string

const (
	// PermissionAll is the wildcard that marks a super role
	PermissionAll Permission = "*"

	// Payroll Generation
	PermissionPayrollGenerate Permission = "payroll.generate"

	// Payroll Lifecycle
	PermissionPayrollApprove Permission = "payroll.approve"
	PermissionPayrollPay     Permission = "payroll.pay"

	// Payroll Visibility
	PermissionPayrollViewAll Permission = "payroll.view.all"
	PermissionPayrollViewOwn Permission = "payroll.view.own"

	// Payroll Settings
	PermissionPayrollSettingsManage Permission = "payroll.settings.manage"
)

// DefaultRolePermissions maps roles to their permissions
var DefaultRolePermissions = map[Role][]Permission{
	RoleAdmin: {
		// Admin has all permissions
		PermissionAll,
	},
	RoleHR: {
		PermissionPayrollGenerate,
		PermissionPayrollApprove,
		PermissionPayrollPay,
		PermissionPayrollViewAll,
		PermissionPayrollViewOwn,
		PermissionPayrollSettingsManage,
	},
	RoleManager: {
		// Manager reviews payroll but never disburses it
		PermissionPayrollApprove,
		PermissionPayrollViewAll,
		PermissionPayrollViewOwn,
	},
	RoleAccountant: {
		PermissionPayrollPay,
		PermissionPayrollViewAll,
		PermissionPayrollViewOwn,
	},
	RoleEmployee: {
		// Employee has basic access
		PermissionPayrollViewOwn,
	},
}

// Gate resolves role permission sets once and answers capability checks.
// Roles that are not configured resolve to the empty set.
type Gate struct {
	permissions map[Role]map[Permission]struct{}
}

// NewGate builds a gate from a role to permission mapping.
func NewGate(rolePermissions map[Role][]Permission) *Gate {
	resolved := make(map[Role]map[Permission]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		resolved[role] = set
	}
	return &Gate{permissions: resolved}
}

// HasPermission checks if a role has a specific permission
func (g *Gate) HasPermission(role Role, permission Permission) bool {
	set, exists := g.permissions[role]
	if !exists {
		return false
	}
	if _, super := set[PermissionAll]; super {
		return true
	}
	_, ok := set[permission]
	return ok
}

// Authorize returns an *AuthorizationError when the principal may not use permission.
func (g *Gate) Authorize(principal Principal, permission Permission) error {
	if !g.HasPermission(principal.Role, permission) {
		return &AuthorizationError{Role: principal.Role, Permission: permission}
	}
	return nil
}

// IsKnownRole reports whether the role has a configured permission set.
func (g *Gate) IsKnownRole(role Role) bool {
	_, ok := g.permissions[role]
	return ok
}
