package payroll

import "time"

type ProgressStage string

const (
	StageStarted              ProgressStage = "started"
	StageEligibilityResolved  ProgressStage = "eligibility_resolved"
	StageDuplicatesChecked    ProgressStage = "duplicates_checked"
	StageAwaitingConfirmation ProgressStage = "awaiting_confirmation"
	StageEmployeeProcessed    ProgressStage = "employee_processed"
	StageEmployeeFailed       ProgressStage = "employee_failed"
	StageCompleted            ProgressStage = "completed"
)

// ProgressEvent is emitted while a generation request runs.
type ProgressEvent struct {
	Stage       ProgressStage `json:"stage"`
	PeriodMonth int           `json:"month"`
	PeriodYear  int           `json:"year"`
	EmployeeID  string        `json:"employeeId,omitempty"`
	Message     string        `json:"message,omitempty"`
	Processed   int           `json:"processed"`
	Failed      int           `json:"failed"`
	Total       int           `json:"total"`
	At          time.Time     `json:"at"`
}

// ProgressPublisher receives generation progress for the requesting user.
// Implementations must not block.
type ProgressPublisher interface {
	PublishProgress(userID string, event ProgressEvent)
}

// NopProgress discards every event.
type NopProgress struct{}

func (NopProgress) PublishProgress(string, ProgressEvent) {}
