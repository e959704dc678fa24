package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PayPeriod identifies one monthly payroll cycle.
type PayPeriod struct {
	Month int
	Year  int
}

func (p PayPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Start returns the first day of the period in UTC.
func (p PayPeriod) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// WorkingDays counts Monday to Friday within the period.
func (p PayPeriod) WorkingDays() int {
	start := p.Start()
	end := start.AddDate(0, 1, 0)
	days := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// Status enum
type Status string

const (
	StatusGenerated Status = "Generated"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusPaid      Status = "Paid"
)

// Statuses lists every lifecycle status in display order.
var Statuses = []Status{StatusGenerated, StatusApproved, StatusRejected, StatusPaid}

func (s Status) IsValid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// PaymentMode enum
type PaymentMode string

const (
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeCheque       PaymentMode = "cheque"
)

func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeBankTransfer, PaymentModeCash, PaymentModeCheque:
		return true
	}
	return false
}

// PaymentMeta is recorded only when a record becomes Paid.
type PaymentMeta struct {
	PaymentDate time.Time
	PaymentMode PaymentMode
}

type Earnings struct {
	Basic            decimal.Decimal
	HousingAllowance decimal.Decimal
	SpecialAllowance decimal.Decimal
	Overtime         decimal.Decimal
}

func (e Earnings) Total() decimal.Decimal {
	return e.Basic.Add(e.HousingAllowance).Add(e.SpecialAllowance).Add(e.Overtime)
}

type Deductions struct {
	ProvidentFund   decimal.Decimal
	Insurance       decimal.Decimal
	ProfessionalTax decimal.Decimal
	Other           decimal.Decimal
}

func (d Deductions) Total() decimal.Decimal {
	return d.ProvidentFund.Add(d.Insurance).Add(d.ProfessionalTax).Add(d.Other)
}

// Summary always satisfies Net = Gross - TotalDeductions.
type Summary struct {
	Gross           decimal.Decimal
	TotalDeductions decimal.Decimal
	Net             decimal.Decimal
}

// NewSummary derives the summary from the breakdowns.
func NewSummary(e Earnings, d Deductions) Summary {
	gross := e.Total()
	total := d.Total()
	return Summary{
		Gross:           gross,
		TotalDeductions: total,
		Net:             gross.Sub(total),
	}
}

// PayrollRecord - Generated payroll result for one employee and one period
type PayrollRecord struct {
	ID              string
	EmployeeID      string
	PeriodMonth     int
	PeriodYear      int
	Version         int
	Earnings        Earnings
	Deductions      Deductions
	Summary         Summary
	Status          Status
	PaymentDate     *time.Time
	PaymentMode     *PaymentMode
	GeneratedBy     string
	StatusUpdatedBy *string
	StatusUpdatedAt *time.Time
	SupersededAt    *time.Time
	SupersededBy    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
	Department   *string
	Designation  *string
}

func (r PayrollRecord) Period() PayPeriod {
	return PayPeriod{Month: r.PeriodMonth, Year: r.PeriodYear}
}

// IsSuperseded reports whether a later generation replaced this record.
func (r PayrollRecord) IsSuperseded() bool {
	return r.SupersededAt != nil
}

// TaxMode enum
type TaxMode string

const (
	TaxModeFlat TaxMode = "flat"
	TaxModeSlab TaxMode = "slab"
)

// TaxSlab applies Amount when gross is at most UpTo. A nil UpTo is unbounded.
type TaxSlab struct {
	UpTo   *decimal.Decimal `json:"upTo,omitempty"`
	Amount decimal.Decimal  `json:"amount"`
}

type ProfessionalTaxPolicy struct {
	Mode       TaxMode         `json:"mode"`
	FlatAmount decimal.Decimal `json:"flatAmount"`
	Slabs      []TaxSlab       `json:"slabs,omitempty"`
}

// PayrollSettings - Deduction and overtime rules applied by the calculator.
// Rates are percentages of basic salary.
type PayrollSettings struct {
	ProvidentFundRate   decimal.Decimal
	InsuranceRate       decimal.Decimal
	OvertimeRatePerHour decimal.Decimal
	ProfessionalTax     ProfessionalTaxPolicy
	UpdatedBy           *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ExistingPayroll names an employee that already has an active record for a period.
type ExistingPayroll struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	RecordID     string `json:"recordId"`
	Status       Status `json:"status"`
}

// GenerationSummary is computed on demand and never persisted.
type GenerationSummary struct {
	PeriodMonth      int               `json:"month"`
	PeriodYear       int               `json:"year"`
	Department       *string           `json:"department,omitempty"`
	TotalEligible    int               `json:"totalEligible"`
	ExistingPayrolls int               `json:"existingPayrolls"`
	Existing         []ExistingPayroll `json:"existing"`
}

// HasOverlap reports whether generation would collide with existing records.
func (s GenerationSummary) HasOverlap() bool {
	return s.ExistingPayrolls > 0
}
