package payroll

import "time"

// allowedTransitions is the complete lifecycle graph. Statuses without an
// entry are terminal.
var allowedTransitions = map[Status][]Status{
	StatusGenerated: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusPaid},
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of r moved to target. Payment metadata is
// required for Paid and ignored for every other target.
func (r PayrollRecord) Transition(target Status, meta *PaymentMeta, actorID string, at time.Time) (PayrollRecord, error) {
	if r.IsSuperseded() {
		return PayrollRecord{}, ErrPayrollRecordSuperseded
	}
	if !CanTransition(r.Status, target) {
		return PayrollRecord{}, &InvalidTransitionError{RecordID: r.ID, Current: r.Status, Requested: target}
	}

	next := r
	if target == StatusPaid {
		if meta == nil || meta.PaymentDate.IsZero() || !meta.PaymentMode.IsValid() {
			return PayrollRecord{}, ErrPaymentMetaRequired
		}
		date := meta.PaymentDate
		mode := meta.PaymentMode
		next.PaymentDate = &date
		next.PaymentMode = &mode
	}

	next.Status = target
	next.StatusUpdatedBy = &actorID
	next.StatusUpdatedAt = &at
	next.UpdatedAt = at
	return next, nil
}
