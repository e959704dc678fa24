package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
)

// ListPayrollRecords lists records with totals. Principals limited to their
// own payroll see only their active records.
func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, principal user.Principal, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if !s.canViewAny(principal) {
		if !s.canViewOwn(principal) {
			return payroll.ListPayrollRecordResponse{}, s.authorize(ctx, principal, user.PermissionPayrollViewAll)
		}
		employeeID := *principal.EmployeeID
		filter.EmployeeID = &employeeID
		filter.IncludeSuperseded = false
	}
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	records, totalCount, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, fmt.Errorf("failed to list payroll records: %w", err)
	}
	summary, err := s.payrollRepo.GetSummary(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, fmt.Errorf("failed to summarize payroll records: %w", err)
	}

	data := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		data = append(data, payroll.ToResponse(r))
	}

	return payroll.ListPayrollRecordResponse{
		Data:       data,
		Summary:    summary,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}
