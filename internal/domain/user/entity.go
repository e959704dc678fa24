package user

type Role string

const (
	RoleAdmin      Role = "admin"      // Super role - implicitly holds every permission
	RoleHR         Role = "hr"         // Runs payroll end to end
	RoleManager    Role = "manager"    // Reviews and approves payroll
	RoleAccountant Role = "accountant" // Disburses approved payroll
	RoleEmployee   Role = "employee"   // Regular employee
)

// Principal is the authenticated caller of a single request.
// It is resolved from verified token claims and passed explicitly into services.
type Principal struct {
	UserID     string
	EmployeeID *string
	Role       Role
}

// IsEmployee reports whether the principal is linked to the given employee record.
func (p Principal) IsEmployee(employeeID string) bool {
	return p.EmployeeID != nil && *p.EmployeeID != "" && *p.EmployeeID == employeeID
}
