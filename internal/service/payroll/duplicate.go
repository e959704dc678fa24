package payroll

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
)

// detectDuplicates intersects the eligible set with the active records of the
// period. Overlap is reported, never treated as an error.
func (s *PayrollServiceImpl) detectDuplicates(ctx context.Context, period payroll.PayPeriod, department *string, eligible []employee.Employee) (payroll.GenerationSummary, error) {
	summary := payroll.GenerationSummary{
		PeriodMonth:   period.Month,
		PeriodYear:    period.Year,
		Department:    department,
		TotalEligible: len(eligible),
		Existing:      []payroll.ExistingPayroll{},
	}
	if len(eligible) == 0 {
		return summary, nil
	}

	ids := make([]string, 0, len(eligible))
	names := make(map[string]string, len(eligible))
	for _, e := range eligible {
		ids = append(ids, e.ID)
		names[e.ID] = e.FullName
	}

	active, err := s.payrollRepo.ListActiveByPeriod(ctx, period, ids)
	if err != nil {
		return payroll.GenerationSummary{}, fmt.Errorf("failed to check existing payroll: %w", err)
	}

	for _, rec := range active {
		name, ok := names[rec.EmployeeID]
		if !ok {
			continue
		}
		summary.Existing = append(summary.Existing, payroll.ExistingPayroll{
			EmployeeID:   rec.EmployeeID,
			EmployeeName: name,
			RecordID:     rec.ID,
			Status:       rec.Status,
		})
	}
	sort.Slice(summary.Existing, func(i, j int) bool {
		return summary.Existing[i].EmployeeID < summary.Existing[j].EmployeeID
	})
	summary.ExistingPayrolls = len(summary.Existing)

	return summary, nil
}

func (s *PayrollServiceImpl) GetGenerationSummary(ctx context.Context, principal user.Principal, req payroll.GenerationSummaryRequest) (payroll.GenerationSummary, error) {
	if err := s.authorize(ctx, principal, user.PermissionPayrollGenerate); err != nil {
		return payroll.GenerationSummary{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.GenerationSummary{}, err
	}

	eligible, err := s.resolveEligible(ctx, req.Department, req.IncludeInactive)
	if err != nil {
		return payroll.GenerationSummary{}, err
	}
	return s.detectDuplicates(ctx, req.Period(), req.Department, eligible)
}
