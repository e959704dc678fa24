package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Attendance is one captured working day. Capture itself happens upstream;
// payroll only aggregates approved rows.
type Attendance struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	Status          Status
	OvertimeMinutes *int
	OvertimeStatus  *OvertimeStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Status string

const (
	StatusPresent     Status = "present"
	StatusLate        Status = "late"
	StatusPaidLeave   Status = "paid_leave"
	StatusUnpaidLeave Status = "unpaid_leave"
	StatusAbsent      Status = "absent"
)

type OvertimeStatus string

const (
	OvertimeStatusPending  OvertimeStatus = "pending"
	OvertimeStatusApproved OvertimeStatus = "approved"
	OvertimeStatusRejected OvertimeStatus = "rejected"
)

// Facts - Per employee aggregate for one pay period
type Facts struct {
	EmployeeID            string
	PresentDays           int
	UnpaidLeaveDays       int
	ApprovedOvertimeHours decimal.Decimal
}

// IsPresent reports whether the day counts as worked.
func (a Attendance) IsPresent() bool {
	return a.Status == StatusPresent || a.Status == StatusLate
}

// IsUnpaid reports whether the day reduces pay.
func (a Attendance) IsUnpaid() bool {
	return a.Status == StatusUnpaidLeave || a.Status == StatusAbsent
}

// ApprovedOvertimeMinutes is zero unless overtime was approved.
func (a Attendance) ApprovedOvertimeMinutes() int {
	if a.OvertimeMinutes == nil || a.OvertimeStatus == nil || *a.OvertimeStatus != OvertimeStatusApproved {
		return 0
	}
	return *a.OvertimeMinutes
}

var minutesPerHour = decimal.NewFromInt(60)

// Summarize folds attendance rows into per-employee facts.
func Summarize(rows []Attendance) map[string]Facts {
	minutes := make(map[string]int)
	facts := make(map[string]Facts)
	for _, a := range rows {
		f := facts[a.EmployeeID]
		f.EmployeeID = a.EmployeeID
		if a.IsPresent() {
			f.PresentDays++
		}
		if a.IsUnpaid() {
			f.UnpaidLeaveDays++
		}
		minutes[a.EmployeeID] += a.ApprovedOvertimeMinutes()
		facts[a.EmployeeID] = f
	}
	for id, f := range facts {
		f.ApprovedOvertimeHours = decimal.NewFromInt(int64(minutes[id])).Div(minutesPerHour)
		facts[id] = f
	}
	return facts
}
