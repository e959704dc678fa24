package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/storage"
	"github.com/google/uuid"
)

const defaultWorkerLimit = 8

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	gate           *user.Gate
	fileStorage    storage.FileStorage
	renderer       *payslip.Renderer
	progress       payroll.ProgressPublisher
	defaults       payroll.PayrollSettings
	workerLimit    int
	now            func() time.Time
	newID          func() (string, error)
}

// Options carries the tunables of the service. Zero values fall back to defaults.
type Options struct {
	// Defaults are used until settings are stored.
	Defaults    payroll.PayrollSettings
	WorkerLimit int
	Progress    payroll.ProgressPublisher
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	gate *user.Gate,
	fileStorage storage.FileStorage,
	renderer *payslip.Renderer,
	opts Options,
) payroll.PayrollService {
	if opts.WorkerLimit <= 0 {
		opts.WorkerLimit = defaultWorkerLimit
	}
	if opts.Progress == nil {
		opts.Progress = payroll.NopProgress{}
	}
	if opts.Defaults.ProfessionalTax.Mode == "" {
		opts.Defaults.ProfessionalTax.Mode = payroll.TaxModeFlat
	}

	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		gate:           gate,
		fileStorage:    fileStorage,
		renderer:       renderer,
		progress:       opts.Progress,
		defaults:       opts.Defaults,
		workerLimit:    opts.WorkerLimit,
		now:            func() time.Time { return time.Now().UTC() },
		newID:          newRecordID,
	}
}

func newRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate record id: %w", err)
	}
	return id.String(), nil
}

// authorize checks the gate and logs denials.
func (s *PayrollServiceImpl) authorize(ctx context.Context, principal user.Principal, permission user.Permission) error {
	if err := s.gate.Authorize(principal, permission); err != nil {
		slog.WarnContext(ctx, "Payroll access denied",
			"user_id", principal.UserID,
			"role", principal.Role,
			"permission", permission,
		)
		return err
	}
	return nil
}

// publish stamps and forwards a progress event to the requesting user.
func (s *PayrollServiceImpl) publish(principal user.Principal, period payroll.PayPeriod, ev payroll.ProgressEvent) {
	ev.PeriodMonth = period.Month
	ev.PeriodYear = period.Year
	ev.At = s.now()
	s.progress.PublishProgress(principal.UserID, ev)
}
