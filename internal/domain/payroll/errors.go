package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrPayrollSettingsNotFound    = errors.New("payroll settings not found")
	ErrPayrollRecordNotFound      = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyExists = errors.New("payroll record already exists for this period")
	ErrPayrollRecordAlreadyPaid   = errors.New("payroll record already paid, cannot regenerate")
	ErrPayrollRecordSuperseded    = errors.New("payroll record superseded by a newer generation")
	ErrInvalidPeriod              = errors.New("invalid payroll period")
	ErrInvalidTransition          = errors.New("invalid payroll status transition")
	ErrCalculation                = errors.New("payroll calculation failed")
	ErrPaymentMetaRequired        = errors.New("payment date and mode are required to mark payroll as paid")
)

// CalculationError is scoped to a single employee and never aborts a batch.
type CalculationError struct {
	EmployeeID string
	Message    string
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("payroll calculation failed for employee %s: %s", e.EmployeeID, e.Message)
}

func (e *CalculationError) Unwrap() error {
	return ErrCalculation
}

// InvalidTransitionError names the record and both ends of the rejected move.
type InvalidTransitionError struct {
	RecordID  string
	Current   Status
	Requested Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("payroll record %s: %s", e.RecordID, e.Reason())
}

// Reason is the short form used in bulk skip lists.
func (e *InvalidTransitionError) Reason() string {
	if e.Current == e.Requested {
		return fmt.Sprintf("already %s", e.Current)
	}
	return fmt.Sprintf("cannot move from %s to %s", e.Current, e.Requested)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
