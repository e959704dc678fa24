package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the read-only directory view payroll works from.
type Employee struct {
	ID               string
	EmployeeCode     string
	FullName         string
	Department       string
	Designation      string
	EmploymentStatus EmploymentStatus
	Salary           SalaryStructure
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "Active"
	EmploymentStatusInactive EmploymentStatus = "Inactive"
)

// SalaryStructure holds the monthly amounts configured for an employee.
// Nil fields were never configured in the directory.
type SalaryStructure struct {
	BasicSalary      *decimal.Decimal
	HousingAllowance *decimal.Decimal
	OtherAllowances  *decimal.Decimal
}

// IsActive checks if the employee is currently employed
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}

// HasSalaryStructure reports whether the mandatory salary fields are present.
func (e Employee) HasSalaryStructure() bool {
	return e.Salary.BasicSalary != nil && e.Salary.HousingAllowance != nil
}

// EligibilityFilter narrows the directory for a payroll run.
type EligibilityFilter struct {
	Department      *string
	IncludeInactive bool
	EmployeeIDs     []string
}
