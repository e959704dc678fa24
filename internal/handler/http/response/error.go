package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	if validationErrs, ok := validator.As(err); ok {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var authzErr *user.AuthorizationError
	if errors.As(err, &authzErr) {
		Forbidden(w, authzErr.Error())
		return
	}

	var transitionErr *payroll.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		Error(w, http.StatusConflict, CodeInvalidTransition, transitionErr.Error(), map[string]string{
			"recordId":  transitionErr.RecordID,
			"current":   string(transitionErr.Current),
			"requested": string(transitionErr.Requested),
		})
		return
	}

	var calcErr *payroll.CalculationError
	if errors.As(err, &calcErr) {
		Error(w, http.StatusUnprocessableEntity, CodeCalculation, calcErr.Error(), map[string]string{
			"employeeId": calcErr.EmployeeID,
		})
		return
	}

	switch {
	// Access errors
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrPrincipalMissing):
		Unauthorized(w, "Unauthorized")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrPayrollRecordSuperseded):
		Error(w, http.StatusConflict, CodeSuperseded, "Payroll record superseded by a newer generation", nil)
	case errors.Is(err, payroll.ErrPayrollRecordAlreadyExists):
		Conflict(w, "Payroll record already exists for this period")
	case errors.Is(err, payroll.ErrPayrollRecordAlreadyPaid):
		Conflict(w, "Payroll record already paid, cannot regenerate")
	case errors.Is(err, payroll.ErrPaymentMetaRequired):
		ValidationError(w, map[string]string{
			"paymentDate": "is required when status is Paid",
			"paymentMode": "is required when status is Paid",
		})
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
