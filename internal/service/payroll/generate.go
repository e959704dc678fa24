package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// outcome is the result for one eligible employee. done is false when the
// employee was never attempted.
type outcome struct {
	done   bool
	record payroll.PayrollRecord
	err    error
}

// GeneratePayroll runs one generation request end to end. Overlap with
// existing records stops the run before any write unless ConfirmOverwrite is
// set. Per-employee failures are collected in the result.
func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, principal user.Principal, req payroll.GeneratePayrollRequest) (payroll.GenerateResult, error) {
	if err := s.authorize(ctx, principal, user.PermissionPayrollGenerate); err != nil {
		return payroll.GenerateResult{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.GenerateResult{}, err
	}

	period := req.Period()
	logger := slog.With("period", period.String(), "user_id", principal.UserID)
	s.publish(principal, period, payroll.ProgressEvent{Stage: payroll.StageStarted})

	eligible, err := s.resolveEligible(ctx, req.Department, req.IncludeInactive)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	s.publish(principal, period, payroll.ProgressEvent{Stage: payroll.StageEligibilityResolved, Total: len(eligible)})

	summary, err := s.detectDuplicates(ctx, period, req.Department, eligible)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	s.publish(principal, period, payroll.ProgressEvent{
		Stage:   payroll.StageDuplicatesChecked,
		Total:   len(eligible),
		Message: fmt.Sprintf("%d existing payroll records", summary.ExistingPayrolls),
	})

	result := payroll.GenerateResult{
		PeriodMonth: period.Month,
		PeriodYear:  period.Year,
		TotalPayout: decimal.Zero,
		Errors:      []payroll.GenerationError{},
	}

	if summary.HasOverlap() && !req.ConfirmOverwrite {
		result.RequiresConfirmation = true
		result.Summary = &summary
		s.publish(principal, period, payroll.ProgressEvent{Stage: payroll.StageAwaitingConfirmation, Total: len(eligible)})
		logger.Info("Payroll generation awaiting confirmation", "existing", summary.ExistingPayrolls)
		return result, nil
	}
	if summary.HasOverlap() {
		result.Summary = &summary
	}

	logger.Info("Payroll generation started", "eligible", len(eligible), "overwrite", req.ConfirmOverwrite)

	if len(eligible) > 0 {
		outcomes, err := s.runBatch(ctx, principal, period, eligible, req.ConfirmOverwrite)
		if err != nil {
			return payroll.GenerateResult{}, err
		}
		aggregate(&result, eligible, outcomes)
	}

	s.publish(principal, period, payroll.ProgressEvent{
		Stage:     payroll.StageCompleted,
		Processed: result.Processed,
		Failed:    len(result.Errors),
		Total:     len(eligible),
	})
	logger.Info("Payroll generation completed",
		"processed", result.Processed,
		"failed", len(result.Errors),
		"total_payout", result.TotalPayout.StringFixed(2),
		"incomplete", result.Incomplete,
	)

	return result, nil
}

// runBatch computes and stores every eligible employee on a bounded pool.
// Settings and attendance facts are loaded once for the whole batch.
func (s *PayrollServiceImpl) runBatch(ctx context.Context, principal user.Principal, period payroll.PayPeriod, eligible []employee.Employee, supersede bool) ([]outcome, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(eligible))
	for _, e := range eligible {
		ids = append(ids, e.ID)
	}
	facts, err := s.attendanceRepo.GetFactsByPeriod(ctx, period.Month, period.Year, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance facts: %w", err)
	}

	calc := NewCalculator(settings)
	outcomes := make([]outcome, len(eligible))

	var mu sync.Mutex
	processed, failed := 0, 0

	var g errgroup.Group
	g.SetLimit(s.workerLimit)

	for i, emp := range eligible {
		if ctx.Err() != nil {
			break
		}
		i, emp := i, emp
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			var empFacts *attendance.Facts
			if f, ok := facts[emp.ID]; ok {
				empFacts = &f
			}
			rec, err := s.generateOne(ctx, principal, calc, emp, period, empFacts, supersede)
			if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			outcomes[i] = outcome{done: true, record: rec, err: err}

			ev := payroll.ProgressEvent{EmployeeID: emp.ID, Total: len(eligible)}
			mu.Lock()
			if err != nil {
				failed++
				ev.Stage = payroll.StageEmployeeFailed
				ev.Message = err.Error()
			} else {
				processed++
				ev.Stage = payroll.StageEmployeeProcessed
			}
			ev.Processed, ev.Failed = processed, failed
			mu.Unlock()

			if err != nil {
				slog.Warn("Failed to generate payroll for employee", "employee_id", emp.ID, "period", period.String(), "error", err)
			}
			s.publish(principal, period, ev)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes, nil
}

func (s *PayrollServiceImpl) generateOne(ctx context.Context, principal user.Principal, calc *Calculator, emp employee.Employee, period payroll.PayPeriod, facts *attendance.Facts, supersede bool) (payroll.PayrollRecord, error) {
	computed, err := calc.Compute(emp, period, facts)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	id, err := s.newID()
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	return s.payrollRepo.CreateRecord(ctx, payroll.PayrollRecord{
		ID:          id,
		EmployeeID:  emp.ID,
		PeriodMonth: period.Month,
		PeriodYear:  period.Year,
		Earnings:    computed.Earnings,
		Deductions:  computed.Deductions,
		Summary:     computed.Summary,
		Status:      payroll.StatusGenerated,
		GeneratedBy: principal.UserID,
	}, supersede)
}

// aggregate folds outcomes into result. Errors are sorted by employee id so
// the result does not depend on worker scheduling.
func aggregate(result *payroll.GenerateResult, eligible []employee.Employee, outcomes []outcome) {
	for i, o := range outcomes {
		if !o.done {
			result.Incomplete = true
			continue
		}
		if o.err != nil {
			result.Errors = append(result.Errors, payroll.GenerationError{
				EmployeeID:   eligible[i].ID,
				EmployeeName: eligible[i].FullName,
				Message:      o.err.Error(),
			})
			continue
		}
		result.Processed++
		result.TotalPayout = result.TotalPayout.Add(o.record.Summary.Net)
	}

	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].EmployeeID < result.Errors[j].EmployeeID
	})
}
