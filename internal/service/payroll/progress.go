package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/sse"
)

// ProgressEventName is the SSE event carrying generation progress.
const ProgressEventName = "payroll.progress"

// HubProgress publishes generation progress to the user's open SSE streams.
type HubProgress struct {
	hub *sse.Hub
}

func NewHubProgress(hub *sse.Hub) *HubProgress {
	return &HubProgress{hub: hub}
}

func (p *HubProgress) PublishProgress(userID string, event payroll.ProgressEvent) {
	p.hub.Publish(userID, sse.Event{UserID: userID, Event: ProgressEventName, Data: event})
}

var _ payroll.ProgressPublisher = (*HubProgress)(nil)
var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)
