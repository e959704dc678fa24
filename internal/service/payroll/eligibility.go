package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
)

// resolveEligible returns the employees a run covers, ordered by employee code
// then id. It reads the directory only.
func (s *PayrollServiceImpl) resolveEligible(ctx context.Context, department *string, includeInactive bool) ([]employee.Employee, error) {
	employees, err := s.employeeRepo.ListEligible(ctx, employee.EligibilityFilter{
		Department:      department,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve eligible employees: %w", err)
	}
	return employees, nil
}

func (s *PayrollServiceImpl) ListEligibleEmployees(ctx context.Context, principal user.Principal, req payroll.EligibleEmployeesRequest) ([]payroll.EligibleEmployeeResponse, error) {
	if err := s.authorize(ctx, principal, user.PermissionPayrollGenerate); err != nil {
		return nil, err
	}
	req.Normalize()

	employees, err := s.resolveEligible(ctx, req.Department, req.IncludeInactive)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.EligibleEmployeeResponse, 0, len(employees))
	for _, e := range employees {
		result = append(result, payroll.EligibleEmployeeResponse{
			ID:                 e.ID,
			EmployeeCode:       e.EmployeeCode,
			FullName:           e.FullName,
			Department:         e.Department,
			Designation:        e.Designation,
			EmploymentStatus:   string(e.EmploymentStatus),
			HasSalaryStructure: e.HasSalaryStructure(),
		})
	}
	return result, nil
}
