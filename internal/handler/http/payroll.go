package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v3"
)

type PayrollHandler interface {
	// Generation
	ListEligibleEmployees(w http.ResponseWriter, r *http.Request)
	GetGenerationSummary(w http.ResponseWriter, r *http.Request)
	GeneratePayroll(w http.ResponseWriter, r *http.Request)

	// Records
	ListPayrollRecords(w http.ResponseWriter, r *http.Request)
	GetPayrollRecord(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	BulkUpdateStatus(w http.ResponseWriter, r *http.Request)
	DownloadPayslip(w http.ResponseWriter, r *http.Request)

	// Settings
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// getIntQueryParam returns nil when the parameter is absent.
func getIntQueryParam(r *http.Request, key string) (*int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &intVal, nil
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

func getStringQueryParam(r *http.Request, key string) *string {
	if val := r.URL.Query().Get(key); val != "" {
		return &val
	}
	return nil
}

// ========== GENERATION ==========

func (h *payrollHandlerImpl) ListEligibleEmployees(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := payroll.EligibleEmployeesRequest{
		Department:      getStringQueryParam(r, "department"),
		IncludeInactive: getBoolQueryParam(r, "includeInactive", false),
	}

	result, err := h.payrollService.ListEligibleEmployees(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetGenerationSummary(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	details := map[string]string{}
	month, err := getIntQueryParam(r, "month")
	if err != nil {
		details["month"] = err.Error()
	}
	year, err := getIntQueryParam(r, "year")
	if err != nil {
		details["year"] = err.Error()
	}
	if len(details) > 0 {
		response.BadRequest(w, "Invalid query parameters", details)
		return
	}

	req := payroll.GenerationSummaryRequest{
		Department:      getStringQueryParam(r, "department"),
		IncludeInactive: getBoolQueryParam(r, "includeInactive", false),
	}
	if month != nil {
		req.PeriodMonth = *month
	}
	if year != nil {
		req.PeriodYear = *year
	}

	result, err := h.payrollService.GetGenerationSummary(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GeneratePayroll(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.GeneratePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	attrs := []slog.Attr{
		slog.Int("payroll.month", req.PeriodMonth),
		slog.Int("payroll.year", req.PeriodYear),
		slog.Bool("payroll.confirm_overwrite", req.ConfirmOverwrite),
	}
	if req.Department != nil {
		attrs = append(attrs, slog.String("payroll.department", *req.Department))
	}
	httplog.SetAttrs(r.Context(), attrs...)

	result, err := h.payrollService.GeneratePayroll(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.RequiresConfirmation {
		response.SuccessWithMessage(w, "Payroll already exists for some employees in this period, confirm to overwrite", result)
		return
	}
	response.SuccessWithMessage(w, "Payroll generated", result)
}

// ========== RECORDS ==========

func (h *payrollHandlerImpl) ListPayrollRecords(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := payroll.PayrollFilter{
		Department:        getStringQueryParam(r, "department"),
		EmployeeID:        getStringQueryParam(r, "employeeId"),
		IncludeSuperseded: getBoolQueryParam(r, "includeSuperseded", false),
		SortBy:            r.URL.Query().Get("sortBy"),
		SortOrder:         r.URL.Query().Get("sortOrder"),
	}

	details := map[string]string{}
	for key, dst := range map[string]**int{
		"month": &filter.PeriodMonth,
		"year":  &filter.PeriodYear,
	} {
		val, err := getIntQueryParam(r, key)
		if err != nil {
			details[key] = err.Error()
			continue
		}
		*dst = val
	}
	for key, dst := range map[string]*int{
		"page":  &filter.Page,
		"limit": &filter.Limit,
	} {
		val, err := getIntQueryParam(r, key)
		if err != nil {
			details[key] = err.Error()
			continue
		}
		if val != nil {
			*dst = *val
		}
	}
	if len(details) > 0 {
		response.BadRequest(w, "Invalid query parameters", details)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := payroll.Status(status)
		filter.Status = &s
	}

	result, err := h.payrollService.ListPayrollRecords(r.Context(), principal, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, response.PageMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *payrollHandlerImpl) GetPayrollRecord(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	result, err := h.payrollService.GetPayrollRecord(r.Context(), principal, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.payrollService.UpdateStatus(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll status updated", result)
}

func (h *payrollHandlerImpl) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.BulkUpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.BulkUpdateStatus(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) DownloadPayslip(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	file, err := h.payrollService.DownloadPayslip(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer file.Content.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file.Content); err != nil {
		slog.WarnContext(r.Context(), "Payslip stream interrupted", "file", file.FileName, "error", err)
	}
}

// ========== SETTINGS ==========

func (h *payrollHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetSettings(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.UpdatePayrollSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.UpdateSettings(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll settings updated", result)
}
