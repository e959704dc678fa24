package payroll

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// transitionPermission is payroll.pay for Paid and payroll.approve for every
// other target.
func transitionPermission(target payroll.Status) user.Permission {
	if target == payroll.StatusPaid {
		return user.PermissionPayrollPay
	}
	return user.PermissionPayrollApprove
}

// transition applies one lifecycle move atomically through the repository.
func (s *PayrollServiceImpl) transition(ctx context.Context, principal user.Principal, id string, target payroll.Status, meta *payroll.PaymentMeta) (payroll.PayrollRecord, error) {
	if !validator.IsValidUUID(id) {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}

	return s.payrollRepo.UpdateStatus(ctx, id, func(current payroll.PayrollRecord) (payroll.PayrollRecord, error) {
		return current.Transition(target, meta, principal.UserID, s.now())
	})
}

func (s *PayrollServiceImpl) UpdateStatus(ctx context.Context, principal user.Principal, req payroll.UpdateStatusRequest) (payroll.PayrollRecordResponse, error) {
	target := payroll.Status(req.Status)
	if err := s.authorize(ctx, principal, transitionPermission(target)); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	updated, err := s.transition(ctx, principal, req.ID, target, req.PaymentMeta())
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	slog.Info("Payroll status updated", "record_id", updated.ID, "status", updated.Status, "user_id", principal.UserID)
	return payroll.ToResponse(updated), nil
}

// BulkUpdateStatus applies the same move to every id independently. Records
// that cannot move are skipped with a reason; only authorization and
// validation failures fail the call.
func (s *PayrollServiceImpl) BulkUpdateStatus(ctx context.Context, principal user.Principal, req payroll.BulkUpdateStatusRequest) (payroll.BulkTransitionResult, error) {
	target := payroll.Status(req.Status)
	if err := s.authorize(ctx, principal, transitionPermission(target)); err != nil {
		return payroll.BulkTransitionResult{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.BulkTransitionResult{}, err
	}

	meta := req.PaymentMeta()
	result := payroll.BulkTransitionResult{
		Updated: []string{},
		Skipped: []payroll.SkippedRecord{},
	}

	for _, id := range req.PayrollIDs {
		if ctx.Err() != nil {
			result.Skipped = append(result.Skipped, payroll.SkippedRecord{ID: id, Reason: "request cancelled"})
			continue
		}

		if _, err := s.transition(ctx, principal, id, target, meta); err != nil {
			reason := skipReason(err)
			if reason == "" {
				slog.Error("Failed to update payroll status", "record_id", id, "error", err)
				reason = "update failed"
			} else {
				slog.Warn("Skipped payroll status update", "record_id", id, "reason", reason)
			}
			result.Skipped = append(result.Skipped, payroll.SkippedRecord{ID: id, Reason: reason})
			continue
		}
		result.Updated = append(result.Updated, id)
	}

	slog.Info("Bulk payroll status update finished",
		"status", target,
		"updated", len(result.Updated),
		"skipped", len(result.Skipped),
		"user_id", principal.UserID,
	)
	return result, nil
}

// skipReason returns "" for errors that are not about the record itself.
func skipReason(err error) string {
	var transitionErr *payroll.InvalidTransitionError
	switch {
	case errors.As(err, &transitionErr):
		return transitionErr.Reason()
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		return "not found"
	case errors.Is(err, payroll.ErrPayrollRecordSuperseded):
		return "superseded"
	case errors.Is(err, payroll.ErrPaymentMetaRequired):
		return "payment metadata required"
	}
	return ""
}
