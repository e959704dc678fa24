package payroll

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	MinPeriodYear    = 2000
	MaxPeriodYear    = 2100
	MaxBulkRecordIDs = 500
)

func validatePeriod(month, year int, errs validator.ValidationErrors) validator.ValidationErrors {
	if month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if year < MinPeriodYear || year > MaxPeriodYear {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 2100"})
	}
	return errs
}

// normalizeDepartment treats a blank department as no filter.
func normalizeDepartment(department *string) *string {
	if department == nil || validator.IsEmpty(*department) {
		return nil
	}
	d := strings.TrimSpace(*department)
	return &d
}

// ========== ELIGIBILITY DTOs ==========

type EligibleEmployeesRequest struct {
	Department      *string `json:"department,omitempty"`
	IncludeInactive bool    `json:"includeInactive"`
}

func (r *EligibleEmployeesRequest) Normalize() {
	r.Department = normalizeDepartment(r.Department)
}

type EligibleEmployeeResponse struct {
	ID                 string `json:"id"`
	EmployeeCode       string `json:"employeeCode"`
	FullName           string `json:"fullName"`
	Department         string `json:"department"`
	Designation        string `json:"designation"`
	EmploymentStatus   string `json:"employmentStatus"`
	HasSalaryStructure bool   `json:"hasSalaryStructure"`
}

// ========== GENERATION DTOs ==========

type GenerationSummaryRequest struct {
	PeriodMonth     int     `json:"month"`
	PeriodYear      int     `json:"year"`
	Department      *string `json:"department,omitempty"`
	IncludeInactive bool    `json:"includeInactive"`
}

func (r *GenerationSummaryRequest) Validate() error {
	r.Department = normalizeDepartment(r.Department)

	errs := validatePeriod(r.PeriodMonth, r.PeriodYear, nil)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r GenerationSummaryRequest) Period() PayPeriod {
	return PayPeriod{Month: r.PeriodMonth, Year: r.PeriodYear}
}

type GeneratePayrollRequest struct {
	PeriodMonth      int     `json:"month"`
	PeriodYear       int     `json:"year"`
	Department       *string `json:"department,omitempty"`
	IncludeInactive  bool    `json:"includeInactive"`
	ConfirmOverwrite bool    `json:"confirmOverwrite"`
}

func (r *GeneratePayrollRequest) Validate() error {
	r.Department = normalizeDepartment(r.Department)

	errs := validatePeriod(r.PeriodMonth, r.PeriodYear, nil)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r GeneratePayrollRequest) Period() PayPeriod {
	return PayPeriod{Month: r.PeriodMonth, Year: r.PeriodYear}
}

// GenerationError is one employee that could not be processed.
type GenerationError struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName,omitempty"`
	Message      string `json:"message"`
}

// GenerateResult is the aggregate of one generation request. When
// RequiresConfirmation is set nothing was written and Summary explains why.
type GenerateResult struct {
	PeriodMonth          int                `json:"month"`
	PeriodYear           int                `json:"year"`
	Processed            int                `json:"processed"`
	TotalPayout          decimal.Decimal    `json:"totalPayout"`
	Errors               []GenerationError  `json:"errors"`
	RequiresConfirmation bool               `json:"requiresConfirmation"`
	Summary              *GenerationSummary `json:"summary,omitempty"`
	Incomplete           bool               `json:"incomplete"`
}

// ========== STATUS DTOs ==========

type UpdateStatusRequest struct {
	ID          string  `json:"-"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"paymentDate,omitempty"`
	PaymentMode *string `json:"paymentMode,omitempty"`
}

func (r *UpdateStatusRequest) Validate() error {
	errs := validateStatusChange(r.Status, r.PaymentDate, r.PaymentMode, nil)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PaymentMeta returns the parsed payment metadata. Call after Validate.
func (r UpdateStatusRequest) PaymentMeta() *PaymentMeta {
	return parsePaymentMeta(r.PaymentDate, r.PaymentMode)
}

type BulkUpdateStatusRequest struct {
	PayrollIDs  []string `json:"payrollIds"`
	Status      string   `json:"status"`
	PaymentDate *string  `json:"paymentDate,omitempty"`
	PaymentMode *string  `json:"paymentMode,omitempty"`
}

func (r *BulkUpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.PayrollIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "payrollIds", Message: "at least one record is required"})
	}
	if len(r.PayrollIDs) > MaxBulkRecordIDs {
		errs = append(errs, validator.ValidationError{Field: "payrollIds", Message: "at most 500 records per request"})
	}
	errs = validateStatusChange(r.Status, r.PaymentDate, r.PaymentMode, errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PaymentMeta returns the parsed payment metadata. Call after Validate.
func (r BulkUpdateStatusRequest) PaymentMeta() *PaymentMeta {
	return parsePaymentMeta(r.PaymentDate, r.PaymentMode)
}

func validateStatusChange(status string, paymentDate, paymentMode *string, errs validator.ValidationErrors) validator.ValidationErrors {
	target := Status(status)
	if !target.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of Generated, Approved, Rejected, Paid"})
		return errs
	}
	if target != StatusPaid {
		return errs
	}

	if paymentDate == nil || validator.IsEmpty(*paymentDate) {
		errs = append(errs, validator.ValidationError{Field: "paymentDate", Message: "is required when status is Paid"})
	} else if _, ok := validator.IsValidDate(*paymentDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "paymentDate", Message: "must be in YYYY-MM-DD format"})
	}
	if paymentMode == nil || validator.IsEmpty(*paymentMode) {
		errs = append(errs, validator.ValidationError{Field: "paymentMode", Message: "is required when status is Paid"})
	} else if !PaymentMode(*paymentMode).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "paymentMode", Message: "must be one of bank_transfer, cash, cheque"})
	}
	return errs
}

func parsePaymentMeta(paymentDate, paymentMode *string) *PaymentMeta {
	if paymentDate == nil || paymentMode == nil {
		return nil
	}
	date, ok := validator.IsValidDate(*paymentDate)
	if !ok {
		return nil
	}
	return &PaymentMeta{PaymentDate: date, PaymentMode: PaymentMode(*paymentMode)}
}

// SkippedRecord explains why a bulk transition left a record untouched.
type SkippedRecord struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type BulkTransitionResult struct {
	Updated []string        `json:"updated"`
	Skipped []SkippedRecord `json:"skipped"`
}

// ========== RECORD DTOs ==========

type EarningsResponse struct {
	Basic            decimal.Decimal `json:"basic"`
	HousingAllowance decimal.Decimal `json:"housingAllowance"`
	SpecialAllowance decimal.Decimal `json:"specialAllowance"`
	Overtime         decimal.Decimal `json:"overtime"`
}

type DeductionsResponse struct {
	ProvidentFund   decimal.Decimal `json:"providentFund"`
	Insurance       decimal.Decimal `json:"insurance"`
	ProfessionalTax decimal.Decimal `json:"professionalTax"`
	Other           decimal.Decimal `json:"other"`
}

type SummaryResponse struct {
	GrossEarnings   decimal.Decimal `json:"grossEarnings"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetSalary       decimal.Decimal `json:"netSalary"`
}

type PayrollRecordResponse struct {
	ID              string             `json:"id"`
	EmployeeID      string             `json:"employeeId"`
	EmployeeName    *string            `json:"employeeName,omitempty"`
	EmployeeCode    *string            `json:"employeeCode,omitempty"`
	Department      *string            `json:"department,omitempty"`
	Designation     *string            `json:"designation,omitempty"`
	PeriodMonth     int                `json:"month"`
	PeriodYear      int                `json:"year"`
	Version         int                `json:"version"`
	Earnings        EarningsResponse   `json:"earnings"`
	Deductions      DeductionsResponse `json:"deductions"`
	Summary         SummaryResponse    `json:"summary"`
	Status          string             `json:"status"`
	PaymentDate     *string            `json:"paymentDate,omitempty"`
	PaymentMode     *string            `json:"paymentMode,omitempty"`
	GeneratedBy     string             `json:"generatedBy"`
	StatusUpdatedBy *string            `json:"statusUpdatedBy,omitempty"`
	StatusUpdatedAt *string            `json:"statusUpdatedAt,omitempty"`
	SupersededAt    *string            `json:"supersededAt,omitempty"`
	SupersededBy    *string            `json:"supersededBy,omitempty"`
	CreatedAt       string             `json:"createdAt"`
	UpdatedAt       string             `json:"updatedAt"`
}

// ToResponse maps a record to its API shape.
func ToResponse(r PayrollRecord) PayrollRecordResponse {
	resp := PayrollRecordResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		EmployeeCode: r.EmployeeCode,
		Department:   r.Department,
		Designation:  r.Designation,
		PeriodMonth:  r.PeriodMonth,
		PeriodYear:   r.PeriodYear,
		Version:      r.Version,
		Earnings: EarningsResponse{
			Basic:            r.Earnings.Basic,
			HousingAllowance: r.Earnings.HousingAllowance,
			SpecialAllowance: r.Earnings.SpecialAllowance,
			Overtime:         r.Earnings.Overtime,
		},
		Deductions: DeductionsResponse{
			ProvidentFund:   r.Deductions.ProvidentFund,
			Insurance:       r.Deductions.Insurance,
			ProfessionalTax: r.Deductions.ProfessionalTax,
			Other:           r.Deductions.Other,
		},
		Summary: SummaryResponse{
			GrossEarnings:   r.Summary.Gross,
			TotalDeductions: r.Summary.TotalDeductions,
			NetSalary:       r.Summary.Net,
		},
		Status:          string(r.Status),
		GeneratedBy:     r.GeneratedBy,
		StatusUpdatedBy: r.StatusUpdatedBy,
		SupersededBy:    r.SupersededBy,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
	if r.PaymentDate != nil {
		d := r.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &d
	}
	if r.PaymentMode != nil {
		m := string(*r.PaymentMode)
		resp.PaymentMode = &m
	}
	if r.StatusUpdatedAt != nil {
		s := r.StatusUpdatedAt.Format(time.RFC3339)
		resp.StatusUpdatedAt = &s
	}
	if r.SupersededAt != nil {
		s := r.SupersededAt.Format(time.RFC3339)
		resp.SupersededAt = &s
	}
	return resp
}

// ========== LIST DTOs ==========

type PayrollFilter struct {
	PeriodMonth       *int    `json:"month,omitempty"`
	PeriodYear        *int    `json:"year,omitempty"`
	Department        *string `json:"department,omitempty"`
	Status            *Status `json:"status,omitempty"`
	EmployeeID        *string `json:"employeeId,omitempty"`
	IncludeSuperseded bool    `json:"includeSuperseded"`
	Page              int     `json:"page"`
	Limit             int     `json:"limit"`
	SortBy            string  `json:"sortBy"`
	SortOrder         string  `json:"sortOrder"`
}

var allowedSortBy = []string{"", "created_at", "period", "employee_name", "net_salary"}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.PeriodMonth != nil && (*f.PeriodMonth < 1 || *f.PeriodMonth > 12) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if f.PeriodYear != nil && (*f.PeriodYear < MinPeriodYear || *f.PeriodYear > MaxPeriodYear) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 2100"})
	}
	if f.Status != nil && !f.Status.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of Generated, Approved, Rejected, Paid"})
	}
	if !validator.IsInSlice(f.SortBy, allowedSortBy) {
		errs = append(errs, validator.ValidationError{Field: "sortBy", Message: "must be one of created_at, period, employee_name, net_salary"})
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs = append(errs, validator.ValidationError{Field: "sortOrder", Message: "must be 'asc' or 'desc'"})
	}
	if len(errs) > 0 {
		return errs
	}

	f.Department = normalizeDepartment(f.Department)
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return nil
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	Summary    PayrollSummaryResponse  `json:"summary"`
	TotalCount int64                   `json:"totalCount"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type PayrollSummaryResponse struct {
	TotalRecords     int             `json:"totalRecords"`
	TotalGrossSalary decimal.Decimal `json:"totalGrossSalary"`
	TotalDeductions  decimal.Decimal `json:"totalDeductions"`
	TotalNetSalary   decimal.Decimal `json:"totalNetSalary"`
	GeneratedCount   int             `json:"generatedCount"`
	ApprovedCount    int             `json:"approvedCount"`
	RejectedCount    int             `json:"rejectedCount"`
	PaidCount        int             `json:"paidCount"`
}

// ========== SETTINGS DTOs ==========

type PayrollSettingsResponse struct {
	ProvidentFundRate   decimal.Decimal       `json:"providentFundRate"`
	InsuranceRate       decimal.Decimal       `json:"insuranceRate"`
	OvertimeRatePerHour decimal.Decimal       `json:"overtimeRatePerHour"`
	ProfessionalTax     ProfessionalTaxPolicy `json:"professionalTax"`
	UpdatedBy           *string               `json:"updatedBy,omitempty"`
	UpdatedAt           *string               `json:"updatedAt,omitempty"`
}

type UpdatePayrollSettingsRequest struct {
	ProvidentFundRate   *decimal.Decimal       `json:"providentFundRate,omitempty"`
	InsuranceRate       *decimal.Decimal       `json:"insuranceRate,omitempty"`
	OvertimeRatePerHour *decimal.Decimal       `json:"overtimeRatePerHour,omitempty"`
	ProfessionalTax     *ProfessionalTaxPolicy `json:"professionalTax,omitempty"`
}

var hundred = decimal.NewFromInt(100)

func (r *UpdatePayrollSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ProvidentFundRate != nil && (r.ProvidentFundRate.IsNegative() || r.ProvidentFundRate.GreaterThan(hundred)) {
		errs = append(errs, validator.ValidationError{Field: "providentFundRate", Message: "must be between 0 and 100"})
	}
	if r.InsuranceRate != nil && (r.InsuranceRate.IsNegative() || r.InsuranceRate.GreaterThan(hundred)) {
		errs = append(errs, validator.ValidationError{Field: "insuranceRate", Message: "must be between 0 and 100"})
	}
	if r.OvertimeRatePerHour != nil && r.OvertimeRatePerHour.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtimeRatePerHour", Message: "must be non-negative"})
	}
	if r.ProfessionalTax != nil {
		if err := r.ProfessionalTax.Validate(); err != nil {
			if taxErrs, ok := validator.As(err); ok {
				errs = append(errs, taxErrs...)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks a tax policy. Slabs must have ascending bounds and only the
// last slab may be unbounded.
func (p ProfessionalTaxPolicy) Validate() error {
	var errs validator.ValidationErrors

	switch p.Mode {
	case TaxModeFlat:
		if p.FlatAmount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "professionalTax.flatAmount", Message: "must be non-negative"})
		}
	case TaxModeSlab:
		if len(p.Slabs) == 0 {
			errs = append(errs, validator.ValidationError{Field: "professionalTax.slabs", Message: "at least one slab is required"})
			break
		}
		var prev *decimal.Decimal
		for i, slab := range p.Slabs {
			if slab.Amount.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: "professionalTax.slabs", Message: "amounts must be non-negative"})
				break
			}
			if slab.UpTo == nil {
				if i != len(p.Slabs)-1 {
					errs = append(errs, validator.ValidationError{Field: "professionalTax.slabs", Message: "only the last slab may be unbounded"})
					break
				}
				continue
			}
			if prev != nil && !slab.UpTo.GreaterThan(*prev) {
				errs = append(errs, validator.ValidationError{Field: "professionalTax.slabs", Message: "bounds must be ascending"})
				break
			}
			prev = slab.UpTo
		}
	default:
		errs = append(errs, validator.ValidationError{Field: "professionalTax.mode", Message: "must be 'flat' or 'slab'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToSettingsResponse maps settings to their API shape.
func ToSettingsResponse(s PayrollSettings) PayrollSettingsResponse {
	resp := PayrollSettingsResponse{
		ProvidentFundRate:   s.ProvidentFundRate,
		InsuranceRate:       s.InsuranceRate,
		OvertimeRatePerHour: s.OvertimeRatePerHour,
		ProfessionalTax:     s.ProfessionalTax,
		UpdatedBy:           s.UpdatedBy,
	}
	if !s.UpdatedAt.IsZero() {
		u := s.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &u
	}
	return resp
}
