package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

func (s *PayrollServiceImpl) canViewAny(principal user.Principal) bool {
	return s.gate.HasPermission(principal.Role, user.PermissionPayrollViewAll)
}

func (s *PayrollServiceImpl) canViewOwn(principal user.Principal) bool {
	return s.gate.HasPermission(principal.Role, user.PermissionPayrollViewOwn) && hasEmployeeLink(principal)
}

func hasEmployeeLink(principal user.Principal) bool {
	return principal.EmployeeID != nil && *principal.EmployeeID != ""
}

// viewableRecord loads a record the principal may read. The record's own
// employee may always read it, whatever the role grants. A principal with
// neither view.all nor an employee link is rejected before storage is touched.
func (s *PayrollServiceImpl) viewableRecord(ctx context.Context, principal user.Principal, id string) (payroll.PayrollRecord, error) {
	if !s.canViewAny(principal) && !hasEmployeeLink(principal) {
		return payroll.PayrollRecord{}, s.authorize(ctx, principal, user.PermissionPayrollViewAll)
	}
	if !validator.IsValidUUID(id) {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}

	rec, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	if s.canViewAny(principal) || principal.IsEmployee(rec.EmployeeID) {
		return rec, nil
	}
	return payroll.PayrollRecord{}, s.authorize(ctx, principal, user.PermissionPayrollViewAll)
}

func (s *PayrollServiceImpl) GetPayrollRecord(ctx context.Context, principal user.Principal, id string) (payroll.PayrollRecordResponse, error) {
	rec, err := s.viewableRecord(ctx, principal, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return payroll.ToResponse(rec), nil
}

// payslipPath keys the cached artifact by status so a transition yields a new document.
func payslipPath(rec payroll.PayrollRecord) string {
	return fmt.Sprintf("payslips/%s/%s.pdf", rec.ID, strings.ToLower(string(rec.Status)))
}

func payslipFileName(rec payroll.PayrollRecord) string {
	who := rec.EmployeeID
	if rec.EmployeeCode != nil && *rec.EmployeeCode != "" {
		who = *rec.EmployeeCode
	}
	return fmt.Sprintf("payslip-%s-%s.pdf", who, rec.Period())
}

// DownloadPayslip serves the cached PDF for the record's current status,
// rendering and storing it on first access.
func (s *PayrollServiceImpl) DownloadPayslip(ctx context.Context, principal user.Principal, id string) (payroll.PayslipFile, error) {
	rec, err := s.viewableRecord(ctx, principal, id)
	if err != nil {
		return payroll.PayslipFile{}, err
	}

	file := payroll.PayslipFile{
		FileName:    payslipFileName(rec),
		ContentType: payslip.ContentType,
	}
	path := payslipPath(rec)

	content, err := s.fileStorage.Download(ctx, path)
	if err == nil {
		file.Content = content
		return file, nil
	}
	if !errors.Is(err, storage.ErrFileNotFound) {
		return payroll.PayslipFile{}, fmt.Errorf("failed to read payslip: %w", err)
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, rec); err != nil {
		return payroll.PayslipFile{}, fmt.Errorf("failed to render payslip: %w", err)
	}
	if _, err := s.fileStorage.Upload(ctx, bytes.NewReader(buf.Bytes()), path, payslip.ContentType); err != nil {
		slog.Warn("Failed to cache payslip", "record_id", rec.ID, "path", path, "error", err)
	}

	file.Content = io.NopCloser(bytes.NewReader(buf.Bytes()))
	return file, nil
}
