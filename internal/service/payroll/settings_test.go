package payroll

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== SETTINGS TESTS =====

func TestGetSettings_FallsBackToDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	got, err := f.svc.GetSettings(context.Background(), hrPrincipal)

	require.NoError(t, err)
	requireMoney(t, "12", got.ProvidentFundRate)
	assert.Equal(t, payroll.TaxModeFlat, got.ProfessionalTax.Mode)
	assert.Nil(t, got.UpdatedAt)
}

func TestUpdateSettings_AppliesToNextGeneration(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staff("eng-01", "Engineering", employee.EmploymentStatusActive))
	ctx := context.Background()
	pf := decimal.NewFromInt(10)

	updated, err := f.svc.UpdateSettings(ctx, hrPrincipal, payroll.UpdatePayrollSettingsRequest{
		ProvidentFundRate: &pf,
		ProfessionalTax: &payroll.ProfessionalTaxPolicy{
			Mode:  payroll.TaxModeSlab,
			Slabs: []payroll.TaxSlab{{UpTo: dec(50000), Amount: decimal.NewFromInt(100)}, {Amount: decimal.NewFromInt(250)}},
		},
	})
	require.NoError(t, err)
	requireMoney(t, "10", updated.ProvidentFundRate)
	requireMoney(t, "1", updated.InsuranceRate)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, "u-hr", *updated.UpdatedBy)

	f.generate(t, nil, false)

	rec := f.activeRecords(t)["eng-01"]
	requireMoney(t, "5000", rec.Deductions.ProvidentFund)
	requireMoney(t, "250", rec.Deductions.ProfessionalTax)
}

func TestUpdateSettings_Authorization(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	rate := decimal.NewFromInt(5)

	_, err := f.svc.UpdateSettings(ctx, managerPrincipal, payroll.UpdatePayrollSettingsRequest{InsuranceRate: &rate})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = f.svc.GetSettings(ctx, accountantPrincipal)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = f.svc.GetSettings(ctx, adminPrincipal)
	assert.NoError(t, err)
}

func TestUpdateSettings_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tooHigh := decimal.NewFromInt(150)

	_, err := f.svc.UpdateSettings(context.Background(), hrPrincipal, payroll.UpdatePayrollSettingsRequest{
		ProvidentFundRate: &tooHigh,
		ProfessionalTax:   &payroll.ProfessionalTaxPolicy{Mode: payroll.TaxModeSlab},
	})

	errs, ok := validator.As(err)
	require.True(t, ok)
	fields := errs.ToMap()
	assert.Contains(t, fields, "providentFundRate")
	assert.Contains(t, fields, "professionalTax.slabs")

	_, err = f.records.GetSettings(context.Background())
	assert.ErrorIs(t, err, payroll.ErrPayrollSettingsNotFound)
}
