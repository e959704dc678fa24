package payroll

import (
	"context"
	"io"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
)

// PayslipFile is a rendered payslip ready to stream.
type PayslipFile struct {
	FileName    string
	ContentType string
	Content     io.ReadCloser
}

// PayrollService is the payroll use-case surface. Every method authorizes the
// principal before touching storage.
type PayrollService interface {
	// Generation
	ListEligibleEmployees(ctx context.Context, principal user.Principal, req EligibleEmployeesRequest) ([]EligibleEmployeeResponse, error)
	GetGenerationSummary(ctx context.Context, principal user.Principal, req GenerationSummaryRequest) (GenerationSummary, error)
	GeneratePayroll(ctx context.Context, principal user.Principal, req GeneratePayrollRequest) (GenerateResult, error)

	// Records
	ListPayrollRecords(ctx context.Context, principal user.Principal, filter PayrollFilter) (ListPayrollRecordResponse, error)
	GetPayrollRecord(ctx context.Context, principal user.Principal, id string) (PayrollRecordResponse, error)
	UpdateStatus(ctx context.Context, principal user.Principal, req UpdateStatusRequest) (PayrollRecordResponse, error)
	BulkUpdateStatus(ctx context.Context, principal user.Principal, req BulkUpdateStatusRequest) (BulkTransitionResult, error)
	DownloadPayslip(ctx context.Context, principal user.Principal, id string) (PayslipFile, error)

	// Settings
	GetSettings(ctx context.Context, principal user.Principal) (PayrollSettingsResponse, error)
	UpdateSettings(ctx context.Context, principal user.Principal, req UpdatePayrollSettingsRequest) (PayrollSettingsResponse, error)
}
