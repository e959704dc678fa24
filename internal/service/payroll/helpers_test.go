package payroll

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	adminPrincipal      = user.Principal{UserID: "u-admin", Role: user.RoleAdmin}
	hrPrincipal         = user.Principal{UserID: "u-hr", Role: user.RoleHR}
	managerPrincipal    = user.Principal{UserID: "u-manager", Role: user.RoleManager}
	accountantPrincipal = user.Principal{UserID: "u-accountant", Role: user.RoleAccountant}
)

func employeePrincipal(employeeID string) user.Principal {
	return user.Principal{UserID: "u-" + employeeID, EmployeeID: &employeeID, Role: user.RoleEmployee}
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func strPtr(s string) *string { return &s }

// staff builds an employee with the worked-example salary structure.
func staff(id, department string, status employee.EmploymentStatus) employee.Employee {
	return employee.Employee{
		ID:               id,
		EmployeeCode:     "C-" + id,
		FullName:         "Employee " + id,
		Department:       department,
		Designation:      "Engineer",
		EmploymentStatus: status,
		Salary: employee.SalaryStructure{
			BasicSalary:      dec(50000),
			HousingAllowance: dec(20000),
			OtherAllowances:  dec(5000),
		},
	}
}

func team(prefix, department string, n int) []employee.Employee {
	out := make([]employee.Employee, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, staff(fmt.Sprintf("%s-%02d", prefix, i), department, employee.EmploymentStatusActive))
	}
	return out
}

func workedExampleSettings() payroll.PayrollSettings {
	return payroll.PayrollSettings{
		ProvidentFundRate: decimal.NewFromInt(12),
		InsuranceRate:     decimal.NewFromInt(1),
		ProfessionalTax: payroll.ProfessionalTaxPolicy{
			Mode:       payroll.TaxModeFlat,
			FlatAmount: decimal.NewFromInt(3000),
		},
	}
}

type recordingProgress struct {
	mu     sync.Mutex
	events []payroll.ProgressEvent
}

func (p *recordingProgress) PublishProgress(userID string, event payroll.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingProgress) stages() []payroll.ProgressStage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]payroll.ProgressStage, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Stage)
	}
	return out
}

type fixture struct {
	svc        *PayrollServiceImpl
	employees  *memory.EmployeeRepository
	attendance *memory.AttendanceRepository
	records    *memory.PayrollRepository
	files      *storage.MemoryStorage
	progress   *recordingProgress
}

func newFixture(t *testing.T, staff ...employee.Employee) *fixture {
	t.Helper()
	return newFixtureWith(t, Options{WorkerLimit: 4}, nil, staff...)
}

// newFixtureWith lets a test wrap the payroll repository.
func newFixtureWith(t *testing.T, opts Options, wrap func(payroll.PayrollRepository) payroll.PayrollRepository, staff ...employee.Employee) *fixture {
	t.Helper()

	employees := memory.NewEmployeeRepository(staff...)
	att := memory.NewAttendanceRepository()
	records := memory.NewPayrollRepository(employees)
	files := storage.NewMemoryStorage()
	progress := &recordingProgress{}

	var repo payroll.PayrollRepository = records
	if wrap != nil {
		repo = wrap(records)
	}
	if opts.Defaults.ProfessionalTax.Mode == "" {
		opts.Defaults = workedExampleSettings()
	}
	opts.Progress = progress

	svc, ok := NewPayrollService(
		repo, employees, att,
		user.NewGate(user.DefaultRolePermissions),
		files,
		payslip.NewRenderer("Acme Corp", "INR"),
		opts,
	).(*PayrollServiceImpl)
	require.True(t, ok)

	return &fixture{svc: svc, employees: employees, attendance: att, records: records, files: files, progress: progress}
}

func (f *fixture) addAttendance(rows ...attendance.Attendance) {
	f.attendance.Add(rows...)
}

// generate runs a confirmed-free generation for March 2024 and fails the test on error.
func (f *fixture) generate(t *testing.T, department *string, confirm bool) payroll.GenerateResult {
	t.Helper()
	result, err := f.svc.GeneratePayroll(context.Background(), hrPrincipal, payroll.GeneratePayrollRequest{
		PeriodMonth:      3,
		PeriodYear:       2024,
		Department:       department,
		ConfirmOverwrite: confirm,
	})
	require.NoError(t, err)
	return result
}

// activeRecords returns the non-superseded records of March 2024 keyed by employee id.
func (f *fixture) activeRecords(t *testing.T) map[string]payroll.PayrollRecord {
	t.Helper()
	recs, err := f.records.ListActiveByPeriod(context.Background(), payroll.PayPeriod{Month: 3, Year: 2024}, nil)
	require.NoError(t, err)
	out := make(map[string]payroll.PayrollRecord, len(recs))
	for _, r := range recs {
		out[r.EmployeeID] = r
	}
	return out
}

func (f *fixture) countAll(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.records.List(context.Background(), payroll.PayrollFilter{IncludeSuperseded: true, Page: 1, Limit: 1000})
	require.NoError(t, err)
	return total
}

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
