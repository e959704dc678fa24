package payroll

import "context"

// PayrollRepository defines data access methods for payroll records and settings.
type PayrollRepository interface {
	// Settings
	GetSettings(ctx context.Context) (PayrollSettings, error)
	UpsertSettings(ctx context.Context, settings PayrollSettings) (PayrollSettings, error)

	// Records

	// ListActiveByPeriod returns the non-superseded records of the period for
	// the given employees. A nil slice means every employee.
	ListActiveByPeriod(ctx context.Context, period PayPeriod, employeeIDs []string) ([]PayrollRecord, error)
	// CreateRecord inserts a new active record. With supersede set, the
	// current active record for the same employee and period is marked
	// superseded in the same unit of work; a Paid active record aborts the
	// write with ErrPayrollRecordAlreadyPaid. Without supersede an existing
	// active record yields ErrPayrollRecordAlreadyExists.
	CreateRecord(ctx context.Context, record PayrollRecord, supersede bool) (PayrollRecord, error)
	GetByID(ctx context.Context, id string) (PayrollRecord, error)
	// UpdateStatus loads the record under a lock, applies fn, and stores its
	// result. No other UpdateStatus call on the same record interleaves.
	UpdateStatus(ctx context.Context, id string, fn func(PayrollRecord) (PayrollRecord, error)) (PayrollRecord, error)
	List(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	GetSummary(ctx context.Context, filter PayrollFilter) (PayrollSummaryResponse, error)
}
