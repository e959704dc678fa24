package employee

import "context"

// EmployeeRepository reads the employee directory. Payroll never writes to it.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// ListEligible returns employees matching the filter ordered by employee code, then id.
	ListEligible(ctx context.Context, filter EligibilityFilter) ([]Employee, error)
}
