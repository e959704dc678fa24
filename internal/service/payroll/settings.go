package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
)

// loadSettings returns the stored settings or the configured defaults.
func (s *PayrollServiceImpl) loadSettings(ctx context.Context) (payroll.PayrollSettings, error) {
	settings, err := s.payrollRepo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
			return s.defaults, nil
		}
		return payroll.PayrollSettings{}, fmt.Errorf("failed to load payroll settings: %w", err)
	}
	return settings, nil
}

func (s *PayrollServiceImpl) GetSettings(ctx context.Context, principal user.Principal) (payroll.PayrollSettingsResponse, error) {
	if !s.gate.HasPermission(principal.Role, user.PermissionPayrollSettingsManage) {
		if err := s.authorize(ctx, principal, user.PermissionPayrollGenerate); err != nil {
			return payroll.PayrollSettingsResponse{}, err
		}
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}
	return payroll.ToSettingsResponse(settings), nil
}

func (s *PayrollServiceImpl) UpdateSettings(ctx context.Context, principal user.Principal, req payroll.UpdatePayrollSettingsRequest) (payroll.PayrollSettingsResponse, error) {
	if err := s.authorize(ctx, principal, user.PermissionPayrollSettingsManage); err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	current, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	// Apply updates
	if req.ProvidentFundRate != nil {
		current.ProvidentFundRate = *req.ProvidentFundRate
	}
	if req.InsuranceRate != nil {
		current.InsuranceRate = *req.InsuranceRate
	}
	if req.OvertimeRatePerHour != nil {
		current.OvertimeRatePerHour = *req.OvertimeRatePerHour
	}
	if req.ProfessionalTax != nil {
		current.ProfessionalTax = *req.ProfessionalTax
	}
	current.UpdatedBy = &principal.UserID

	updated, err := s.payrollRepo.UpsertSettings(ctx, current)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, fmt.Errorf("failed to save payroll settings: %w", err)
	}

	slog.Info("Payroll settings updated", "user_id", principal.UserID)
	return payroll.ToSettingsResponse(updated), nil
}
