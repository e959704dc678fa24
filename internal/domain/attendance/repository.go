package attendance

import "context"

// AttendanceRepository exposes the aggregates payroll needs from attendance capture.
type AttendanceRepository interface {
	// GetFactsByPeriod aggregates the month for each employee. Employees without
	// attendance rows are absent from the returned map.
	GetFactsByPeriod(ctx context.Context, month, year int, employeeIDs []string) (map[string]Facts, error)
}
