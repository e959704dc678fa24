package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEmployee(t *testing.T, ctx context.Context, setup *TestDatabaseSetup) string {
	t.Helper()

	id := uuid.Must(uuid.NewV7()).String()
	_, err := setup.DB.Exec(ctx, `
		INSERT INTO employees (id, employee_code, full_name, department, designation, employment_status, basic_salary, housing_allowance, other_allowances)
		VALUES ($1, $2, 'Integration Employee', 'Engineering', 'Engineer', 'Active', 50000, 10000, 5000)
	`, id, id[:8])
	require.NoError(t, err)
	return id
}

func newRecord(employeeID string) payroll.PayrollRecord {
	e := payroll.Earnings{Basic: decimal.NewFromInt(50000), HousingAllowance: decimal.NewFromInt(10000), SpecialAllowance: decimal.NewFromInt(5000)}
	d := payroll.Deductions{ProvidentFund: decimal.NewFromInt(6000)}
	return payroll.PayrollRecord{
		ID:          uuid.Must(uuid.NewV7()).String(),
		EmployeeID:  employeeID,
		PeriodMonth: 1,
		PeriodYear:  2024,
		Earnings:    e,
		Deductions:  d,
		Summary:     payroll.NewSummary(e, d),
		Status:      payroll.StatusGenerated,
		GeneratedBy: "integration",
	}
}

func TestPayrollRepository_ConcurrentGenerationKeepsOneActive(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, setup.TruncateAllTables(ctx))

	repo := postgresql.NewPayrollRepository(setup.DB)
	employeeID := seedEmployee(t, ctx, setup)

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateRecord(ctx, newRecord(employeeID), true)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, payroll.ErrPayrollRecordAlreadyExists), "unexpected error: %v", err)
		}
	}

	active, err := repo.ListActiveByPeriod(ctx, payroll.PayPeriod{Month: 1, Year: 2024}, []string{employeeID})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestPayrollRepository_RegenerationLinksSupersededRecord(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, setup.TruncateAllTables(ctx))

	repo := postgresql.NewPayrollRepository(setup.DB)
	employeeID := seedEmployee(t, ctx, setup)

	first, err := repo.CreateRecord(ctx, newRecord(employeeID), false)
	require.NoError(t, err)
	second, err := repo.CreateRecord(ctx, newRecord(employeeID), true)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	old, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.NotNil(t, old.SupersededAt)
	require.NotNil(t, old.SupersededBy)
	assert.Equal(t, second.ID, *old.SupersededBy)

	active, err := repo.ListActiveByPeriod(ctx, payroll.PayPeriod{Month: 1, Year: 2024}, []string{employeeID})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)
}

func TestPayrollRepository_PaidRecordIsNeverSuperseded(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, setup.TruncateAllTables(ctx))

	repo := postgresql.NewPayrollRepository(setup.DB)
	employeeID := seedEmployee(t, ctx, setup)

	first, err := repo.CreateRecord(ctx, newRecord(employeeID), false)
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, first.ID, func(r payroll.PayrollRecord) (payroll.PayrollRecord, error) {
		now := time.Now().UTC()
		mode := payroll.PaymentModeBankTransfer
		r.Status = payroll.StatusPaid
		r.PaymentDate = &now
		r.PaymentMode = &mode
		return r, nil
	})
	require.NoError(t, err)

	_, err = repo.CreateRecord(ctx, newRecord(employeeID), true)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyPaid)
}
