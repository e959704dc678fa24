package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
)

// AttendanceRepository holds captured attendance rows.
type AttendanceRepository struct {
	mu   sync.RWMutex
	rows []attendance.Attendance
}

func NewAttendanceRepository(seed ...attendance.Attendance) *AttendanceRepository {
	return &AttendanceRepository{rows: append([]attendance.Attendance(nil), seed...)}
}

func (r *AttendanceRepository) Add(rows ...attendance.Attendance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rows...)
}

func (r *AttendanceRepository) GetFactsByPeriod(ctx context.Context, month, year int, employeeIDs []string) (map[string]attendance.Facts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	var inPeriod []attendance.Attendance
	for _, a := range r.rows {
		if a.Date.Year() != year || int(a.Date.Month()) != month {
			continue
		}
		if _, ok := wanted[a.EmployeeID]; !ok {
			continue
		}
		inPeriod = append(inPeriod, a)
	}
	r.mu.RUnlock()

	return attendance.Summarize(inPeriod), nil
}
