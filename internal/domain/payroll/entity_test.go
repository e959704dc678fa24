package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPayPeriod_WorkingDays(t *testing.T) {
	t.Parallel()

	cases := []struct {
		period PayPeriod
		want   int
	}{
		{PayPeriod{Month: 1, Year: 2024}, 23},
		{PayPeriod{Month: 2, Year: 2024}, 21},
		{PayPeriod{Month: 2, Year: 2023}, 20},
		{PayPeriod{Month: 6, Year: 2025}, 21},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.period.WorkingDays(), c.period.String())
	}
}

func TestPayPeriod_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "2024-03", PayPeriod{Month: 3, Year: 2024}.String())
}

func TestNewSummary_NetIsGrossMinusDeductions(t *testing.T) {
	t.Parallel()

	// Arrange
	e := Earnings{
		Basic:            decimal.RequireFromString("5000.00"),
		HousingAllowance: decimal.RequireFromString("1000.00"),
		SpecialAllowance: decimal.RequireFromString("500.00"),
		Overtime:         decimal.RequireFromString("125.50"),
	}
	d := Deductions{
		ProvidentFund:   decimal.RequireFromString("600.00"),
		Insurance:       decimal.RequireFromString("100.00"),
		ProfessionalTax: decimal.RequireFromString("200.00"),
		Other:           decimal.Zero,
	}

	// Act
	s := NewSummary(e, d)

	// Assert
	assert.True(t, s.Gross.Equal(decimal.RequireFromString("6625.50")))
	assert.True(t, s.TotalDeductions.Equal(decimal.RequireFromString("900.00")))
	assert.True(t, s.Net.Equal(decimal.RequireFromString("5725.50")))
	assert.True(t, s.Net.Equal(s.Gross.Sub(s.TotalDeductions)))
}

func TestStatus_IsValid(t *testing.T) {
	t.Parallel()
	for _, s := range Statuses {
		assert.True(t, s.IsValid())
	}
	assert.False(t, Status("paid").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestGenerationSummary_HasOverlap(t *testing.T) {
	t.Parallel()
	assert.False(t, GenerationSummary{TotalEligible: 3}.HasOverlap())
	assert.True(t, GenerationSummary{TotalEligible: 3, ExistingPayrolls: 1}.HasOverlap())
}
