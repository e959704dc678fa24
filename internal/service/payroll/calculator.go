package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Computation is the calculated pay of one employee for one period.
type Computation struct {
	Earnings   payroll.Earnings
	Deductions payroll.Deductions
	Summary    payroll.Summary
}

// Calculator derives pay from a salary structure and attendance facts. It
// has no side effects and is safe for concurrent use.
type Calculator struct {
	settings payroll.PayrollSettings
}

func NewCalculator(settings payroll.PayrollSettings) *Calculator {
	return &Calculator{settings: settings}
}

// Compute calculates earnings, deductions and the summary. Every line is
// rounded to cents before summing, so Net equals Gross minus TotalDeductions
// exactly. Nil facts mean a full month without overtime.
func (c *Calculator) Compute(emp employee.Employee, period payroll.PayPeriod, facts *attendance.Facts) (Computation, error) {
	salary := emp.Salary
	switch {
	case salary.BasicSalary == nil:
		return Computation{}, &payroll.CalculationError{EmployeeID: emp.ID, Message: "basic salary is missing"}
	case !salary.BasicSalary.IsPositive():
		return Computation{}, &payroll.CalculationError{EmployeeID: emp.ID, Message: "basic salary must be greater than zero"}
	case salary.HousingAllowance == nil:
		return Computation{}, &payroll.CalculationError{EmployeeID: emp.ID, Message: "housing allowance is missing"}
	case salary.HousingAllowance.IsNegative():
		return Computation{}, &payroll.CalculationError{EmployeeID: emp.ID, Message: "housing allowance must not be negative"}
	}

	workingDays := decimal.NewFromInt(int64(period.WorkingDays()))
	unpaidDays := decimal.Zero
	overtimeHours := decimal.Zero
	if facts != nil {
		unpaid := facts.UnpaidLeaveDays
		if unpaid > period.WorkingDays() {
			unpaid = period.WorkingDays()
		}
		unpaidDays = decimal.NewFromInt(int64(unpaid))
		overtimeHours = facts.ApprovedOvertimeHours
	}

	basic := salary.BasicSalary.Round(2)
	other := decimal.Zero
	if salary.OtherAllowances != nil {
		other = *salary.OtherAllowances
	}

	earnings := payroll.Earnings{
		Basic:            basic,
		HousingAllowance: salary.HousingAllowance.Round(2),
		SpecialAllowance: other.Mul(workingDays.Sub(unpaidDays)).Div(workingDays).Round(2),
		Overtime:         overtimeHours.Mul(c.settings.OvertimeRatePerHour).Round(2),
	}
	gross := earnings.Total()

	deductions := payroll.Deductions{
		ProvidentFund:   percentOf(basic, c.settings.ProvidentFundRate),
		Insurance:       percentOf(basic, c.settings.InsuranceRate),
		ProfessionalTax: c.professionalTax(gross),
		Other:           basic.Mul(unpaidDays).Div(workingDays).Round(2),
	}

	return Computation{
		Earnings:   earnings,
		Deductions: deductions,
		Summary:    payroll.NewSummary(earnings, deductions),
	}, nil
}

func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(2)
}

// professionalTax applies the first slab whose bound covers gross. When gross
// exceeds every bound the last slab applies.
func (c *Calculator) professionalTax(gross decimal.Decimal) decimal.Decimal {
	policy := c.settings.ProfessionalTax
	if policy.Mode != payroll.TaxModeSlab {
		return policy.FlatAmount.Round(2)
	}
	if len(policy.Slabs) == 0 {
		return decimal.Zero
	}
	for _, slab := range policy.Slabs {
		if slab.UpTo == nil || gross.LessThanOrEqual(*slab.UpTo) {
			return slab.Amount.Round(2)
		}
	}
	return policy.Slabs[len(policy.Slabs)-1].Amount.Round(2)
}
