package postgresql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordColumnNames = []string{
	"id", "employee_id", "period_month", "period_year", "version",
	"basic_salary", "housing_allowance", "special_allowance", "overtime_amount",
	"provident_fund", "insurance", "professional_tax", "other_deductions",
	"gross_salary", "total_deductions", "net_salary",
	"status", "payment_date", "payment_mode", "generated_by",
	"status_updated_by", "status_updated_at", "superseded_at", "superseded_by",
	"created_at", "updated_at",
	"full_name", "employee_code", "department", "designation",
}

func ptr[T any](v T) *T { return &v }

func addRecordRow(rows *pgxmock.Rows, id, employeeID string, status payroll.Status) *pgxmock.Rows {
	now := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	d := decimal.NewFromInt
	return rows.AddRow(
		id, employeeID, 1, 2024, 1,
		d(5000), d(1000), d(500), d(0),
		d(600), d(50), d(200), d(0),
		d(6500), d(850), d(5650),
		status, nil, nil, "u-hr",
		nil, nil, nil, nil,
		now, now,
		ptr("Ada Lovelace"), ptr("0001"), ptr("Engineering"), ptr("Engineer"),
	)
}

// insertArgs matches the 17 INSERT parameters, pinning identity and period.
func insertArgs(id string, status payroll.Status) []any {
	args := []any{id, "e1", 1, 2024}
	for range 12 {
		args = append(args, pgxmock.AnyArg())
	}
	return append(args, status, pgxmock.AnyArg())
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

// ===== RECORDS =====

func TestPayrollRepository_GetByID(t *testing.T) {
	t.Parallel()

	// Arrange
	mock := newMock(t)
	repo := NewPayrollRepository(mock)
	mock.ExpectQuery(`FROM payroll_records pr LEFT JOIN employees e`).
		WithArgs("r1").
		WillReturnRows(addRecordRow(mock.NewRows(recordColumnNames), "r1", "e1", payroll.StatusGenerated))

	// Act
	rec, err := repo.GetByID(context.Background(), "r1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.ID)
	assert.Equal(t, payroll.StatusGenerated, rec.Status)
	assert.True(t, rec.Summary.Net.Equal(decimal.NewFromInt(5650)))
	assert.Nil(t, rec.PaymentDate)
	require.NotNil(t, rec.EmployeeName)
	assert.Equal(t, "Ada Lovelace", *rec.EmployeeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRepository_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewPayrollRepository(mock)
	mock.ExpectQuery(`FROM payroll_records pr`).
		WithArgs("missing").
		WillReturnRows(mock.NewRows(recordColumnNames))

	_, err := repo.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRepository_CreateRecord_Fresh(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewPayrollRepository(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, status FROM payroll_records`).
		WithArgs("e1", 1, 2024).
		WillReturnRows(mock.NewRows([]string{"id", "status"}))
	mock.ExpectQuery(`INSERT INTO payroll_records`).
		WithArgs(insertArgs("r1", payroll.StatusGenerated)...).
		WillReturnRows(mock.NewRows([]string{"version", "created_at", "updated_at"}).AddRow(1, now, now))
	mock.ExpectCommit()

	rec, err := repo.CreateRecord(context.Background(), payroll.PayrollRecord{
		ID: "r1", EmployeeID: "e1", PeriodMonth: 1, PeriodYear: 2024, Status: payroll.StatusGenerated,
	}, false)

	require.NoError(t, err)
	assert.Equal(t, 1, rec.Version)
	assert.Equal(t, now, rec.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRepository_CreateRecord_ExistingWithoutSupersede(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewPayrollRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, status FROM payroll_records`).
		WithArgs("e1", 1, 2024).
		WillReturnRows(mock.NewRows([]string{"id", "status"}).AddRow("r0", payroll.StatusGenerated))
	mock.ExpectRollback()

	_, err := repo.CreateRecord(context.Background(), payroll.PayrollRecord{ID: "r1", EmployeeID: "e1", PeriodMonth: 1, PeriodYear: 2024}, false)

	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRepository_CreateRecord_Supersedes(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewPayrollRepository(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, status FROM payroll_records`).
		WithArgs("e1", 1, 2024).
		WillReturnRows(mock.NewRows([]string{"id", "status"}).AddRow("r0", payroll.StatusApproved))
	mock.ExpectExec(`UPDATE payroll_records SET superseded_at = NOW\(\), updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs("r0").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO payroll_records`).
		WithArgs(insertArgs("r1", payroll.StatusGenerated)...).
		WillReturnRows(mock.NewRows([]string{"version", "created_at", "updated_at"}).AddRow(2, now, now))
	mock.ExpectExec(`UPDATE payroll_records SET superseded_by = \$2 WHERE id = \$1`).
		WithArgs("r0", "r1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	rec, err := repo.CreateRecord(context.Background(), payroll.PayrollRecord{
		ID: "r1", EmployeeID: "e1", PeriodMonth: 1, PeriodYear: 2024, Status: payroll.StatusGenerated,
	}, true)

	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRepository_CreateRecord_PaidIsLocked(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewPayrollRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, status FROM payroll_records`).
		WithArgs("e1", 1, 2024).
		WillReturnRows(mock.NewRows([]string{"id", "status"}).AddRow("r0", payroll.StatusPaid))
	mock.ExpectRollback()

	_, err := repo.CreateRecord(context.Background(), payroll.PayrollRecord{ID: "r1", EmployeeID: "e1", PeriodMonth: 1, PeriodYear: 2024}, true)

	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRepository_CreateRecord_RaceMapsToAlreadyExists(t *testing.T) {
	t.Parallel()

	for _, constraint := range []string{activeRecordConstraint, recordVersionConstraint} {
		constraint := constraint
		t.Run(constraint, func(t *testing.T) {
			t.Parallel()

			mock := newMock(t)
			repo := NewPayrollRepository(mock)

			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT id, status FROM payroll_records`).
				WithArgs("e1", 1, 2024).
				WillReturnRows(mock.NewRows([]string{"id", "status"}))
			mock.ExpectQuery(`INSERT INTO payroll_records`).
				WithArgs(insertArgs("r1", payroll.StatusGenerated)...).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraint})
			mock.ExpectRollback()

			_, err := repo.CreateRecord(context.Background(), payroll.PayrollRecord{
				ID: "r1", EmployeeID: "e1", PeriodMonth: 1, PeriodYear: 2024, Status: payroll.StatusGenerated,
			}, false)

			assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyExists)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPayrollRepository_UpdateStatus(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewPayrollRepository(mock)
	updatedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE OF pr`).
		WithArgs("r1").
		WillReturnRows(addRecordRow(mock.NewRows(recordColumnNames), "r1", "e1", payroll.StatusGenerated))
	mock.ExpectQuery(`UPDATE payroll_records SET status = \$2`).
		WithArgs("r1", payroll.StatusApproved, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"updated_at"}).AddRow(updatedAt))
	mock.ExpectCommit()

	rec, err := repo.UpdateStatus(context.Background(), "r1", func(rec payroll.PayrollRecord) (payroll.PayrollRecord, error) {
		return rec.Transition(payroll.StatusApproved, nil, "u-manager", updatedAt)
	})

	require.NoError(t, err)
	assert.Equal(t, payroll.StatusApproved, rec.Status)
	assert.Equal(t, updatedAt, rec.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRepository_UpdateStatus_RejectedTransitionRollsBack(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewPayrollRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE OF pr`).
		WithArgs("r1").
		WillReturnRows(addRecordRow(mock.NewRows(recordColumnNames), "r1", "e1", payroll.StatusPaid))
	mock.ExpectRollback()

	_, err := repo.UpdateStatus(context.Background(), "r1", func(rec payroll.PayrollRecord) (payroll.PayrollRecord, error) {
		return rec.Transition(payroll.StatusPaid, nil, "u1", time.Now())
	})

	var te *payroll.InvalidTransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "already Paid", te.Reason())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRepository_ListAndSummary(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewPayrollRepository(mock)
	month, year := 1, 2024
	dept := "Engineering"
	filter := payroll.PayrollFilter{PeriodMonth: &month, PeriodYear: &year, Department: &dept, SortBy: "net_salary", SortOrder: "asc", Page: 2, Limit: 1}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payroll_records pr`).
		WithArgs(1, 2024, "Engineering").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`ORDER BY pr.net_salary ASC, pr.id LIMIT \$4 OFFSET \$5`).
		WithArgs(1, 2024, "Engineering", 1, 1).
		WillReturnRows(addRecordRow(mock.NewRows(recordColumnNames), "r2", "e2", payroll.StatusApproved))
	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE pr.status = 'Paid'\)`).
		WithArgs(1, 2024, "Engineering").
		WillReturnRows(mock.NewRows([]string{"count", "gross", "deductions", "net", "generated", "approved", "rejected", "paid"}).
			AddRow(2, decimal.NewFromInt(13000), decimal.NewFromInt(1700), decimal.NewFromInt(11300), 1, 1, 0, 0))

	records, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, records, 1)
	assert.Equal(t, "r2", records[0].ID)

	summary, err := repo.GetSummary(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalRecords)
	assert.True(t, summary.TotalNetSalary.Equal(decimal.NewFromInt(11300)))
	assert.Equal(t, 1, summary.ApprovedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ===== SETTINGS =====

func TestPayrollRepository_Settings(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewPayrollRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM payroll_settings`).WillReturnRows(mock.NewRows([]string{"id"}))
	_, err := repo.GetSettings(context.Background())
	assert.ErrorIs(t, err, payroll.ErrPayrollSettingsNotFound)

	mock.ExpectQuery(`INSERT INTO payroll_settings`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	saved, err := repo.UpsertSettings(context.Background(), payroll.PayrollSettings{
		ProvidentFundRate: decimal.NewFromInt(12),
		ProfessionalTax:   payroll.ProfessionalTaxPolicy{Mode: payroll.TaxModeFlat, FlatAmount: decimal.NewFromInt(200)},
	})
	require.NoError(t, err)
	assert.Equal(t, now, saved.UpdatedAt)

	mock.ExpectQuery(`FROM payroll_settings`).
		WillReturnRows(mock.NewRows([]string{"pf", "ins", "ot", "tax", "updated_by", "created_at", "updated_at"}).
			AddRow(decimal.NewFromInt(12), decimal.NewFromInt(1), decimal.NewFromInt(50),
				[]byte(`{"mode":"slab","flatAmount":"0","slabs":[{"upTo":"10000","amount":"0"},{"amount":"200"}]}`),
				ptr("u-hr"), now, now))
	got, err := repo.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, payroll.TaxModeSlab, got.ProfessionalTax.Mode)
	require.Len(t, got.ProfessionalTax.Slabs, 2)
	assert.Nil(t, got.ProfessionalTax.Slabs[1].UpTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}
