package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type attendanceRepository struct {
	db database.Pool
}

func NewAttendanceRepository(db database.Pool) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// GetFactsByPeriod mirrors attendance.Summarize in SQL.
func (r *attendanceRepository) GetFactsByPeriod(ctx context.Context, month, year int, employeeIDs []string) (map[string]attendance.Facts, error) {
	facts := make(map[string]attendance.Facts, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return facts, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id,
			COUNT(*) FILTER (WHERE status IN ('present', 'late')) AS present_days,
			COUNT(*) FILTER (WHERE status IN ('unpaid_leave', 'absent')) AS unpaid_days,
			COALESCE(SUM(overtime_minutes) FILTER (WHERE overtime_status = 'approved'), 0) AS approved_overtime_minutes
		FROM attendances
		WHERE employee_id = ANY($1)
			AND date >= $2 AND date < $3
		GROUP BY employee_id
	`

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	rows, err := q.Query(ctx, query, employeeIDs, start, start.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance facts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f attendance.Facts
		var overtimeMinutes int64
		if err := rows.Scan(&f.EmployeeID, &f.PresentDays, &f.UnpaidLeaveDays, &overtimeMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan attendance facts: %w", err)
		}
		f.ApprovedOvertimeHours = decimal.NewFromInt(overtimeMinutes).Div(decimal.NewFromInt(60))
		facts[f.EmployeeID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance facts: %w", err)
	}
	return facts, nil
}
