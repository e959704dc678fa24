package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	activeRecordConstraint  = "uk_payroll_active_employee_period"
	recordVersionConstraint = "uk_payroll_employee_period_version"
)

type payrollRepository struct {
	db database.Pool
}

func NewPayrollRepository(db database.Pool) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const recordColumns = `
	pr.id, pr.employee_id, pr.period_month, pr.period_year, pr.version,
	pr.basic_salary, pr.housing_allowance, pr.special_allowance, pr.overtime_amount,
	pr.provident_fund, pr.insurance, pr.professional_tax, pr.other_deductions,
	pr.gross_salary, pr.total_deductions, pr.net_salary,
	pr.status, pr.payment_date, pr.payment_mode, pr.generated_by,
	pr.status_updated_by, pr.status_updated_at, pr.superseded_at, pr.superseded_by,
	pr.created_at, pr.updated_at,
	e.full_name, e.employee_code, e.department, e.designation`

const recordFrom = `
	FROM payroll_records pr
	LEFT JOIN employees e ON pr.employee_id = e.id`

func scanRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear, &rec.Version,
		&rec.Earnings.Basic, &rec.Earnings.HousingAllowance, &rec.Earnings.SpecialAllowance, &rec.Earnings.Overtime,
		&rec.Deductions.ProvidentFund, &rec.Deductions.Insurance, &rec.Deductions.ProfessionalTax, &rec.Deductions.Other,
		&rec.Summary.Gross, &rec.Summary.TotalDeductions, &rec.Summary.Net,
		&rec.Status, &rec.PaymentDate, &rec.PaymentMode, &rec.GeneratedBy,
		&rec.StatusUpdatedBy, &rec.StatusUpdatedAt, &rec.SupersededAt, &rec.SupersededBy,
		&rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode, &rec.Department, &rec.Designation,
	)
	return rec, err
}

// ========== SETTINGS ==========

func (r *payrollRepository) GetSettings(ctx context.Context) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT provident_fund_rate, insurance_rate, overtime_rate_per_hour, professional_tax,
			   updated_by, created_at, updated_at
		FROM payroll_settings
		WHERE id = 1
	`

	var s payroll.PayrollSettings
	var taxBytes []byte
	err := q.QueryRow(ctx, query).Scan(
		&s.ProvidentFundRate, &s.InsuranceRate, &s.OvertimeRatePerHour, &taxBytes,
		&s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
		}
		return payroll.PayrollSettings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}
	if err := json.Unmarshal(taxBytes, &s.ProfessionalTax); err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to decode professional tax policy: %w", err)
	}

	return s, nil
}

func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	taxJSON, err := json.Marshal(settings.ProfessionalTax)
	if err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to encode professional tax policy: %w", err)
	}

	query := `
		INSERT INTO payroll_settings (
			id, provident_fund_rate, insurance_rate, overtime_rate_per_hour, professional_tax, updated_by
		) VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			provident_fund_rate = EXCLUDED.provident_fund_rate,
			insurance_rate = EXCLUDED.insurance_rate,
			overtime_rate_per_hour = EXCLUDED.overtime_rate_per_hour,
			professional_tax = EXCLUDED.professional_tax,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		settings.ProvidentFundRate, settings.InsuranceRate, settings.OvertimeRatePerHour, taxJSON, settings.UpdatedBy,
	).Scan(&settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}

	return settings, nil
}

// ========== PAYROLL RECORDS ==========

func (r *payrollRepository) ListActiveByPeriod(ctx context.Context, period payroll.PayPeriod, employeeIDs []string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT" + recordColumns + recordFrom + `
		WHERE pr.period_month = $1 AND pr.period_year = $2 AND pr.superseded_at IS NULL`
	args := []interface{}{period.Month, period.Year}
	if employeeIDs != nil {
		query += " AND pr.employee_id = ANY($3)"
		args = append(args, employeeIDs)
	}
	query += " ORDER BY pr.employee_id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll records: %w", err)
	}
	return records, nil
}

func (r *payrollRepository) CreateRecord(ctx context.Context, record payroll.PayrollRecord, supersede bool) (payroll.PayrollRecord, error) {
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var activeID string
		var activeStatus payroll.Status
		err := q.QueryRow(ctx, `
			SELECT id, status FROM payroll_records
			WHERE employee_id = $1 AND period_month = $2 AND period_year = $3 AND superseded_at IS NULL
			FOR UPDATE
		`, record.EmployeeID, record.PeriodMonth, record.PeriodYear).Scan(&activeID, &activeStatus)

		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to check active payroll record: %w", err)
		case !supersede:
			return payroll.ErrPayrollRecordAlreadyExists
		case activeStatus == payroll.StatusPaid:
			return payroll.ErrPayrollRecordAlreadyPaid
		default:
			// superseded_by references the replacement, so it is linked after the insert.
			if _, err := q.Exec(ctx, `
				UPDATE payroll_records
				SET superseded_at = NOW(), updated_at = NOW()
				WHERE id = $1
			`, activeID); err != nil {
				return fmt.Errorf("failed to supersede payroll record: %w", err)
			}
		}

		query := `
			INSERT INTO payroll_records (
				id, employee_id, period_month, period_year, version,
				basic_salary, housing_allowance, special_allowance, overtime_amount,
				provident_fund, insurance, professional_tax, other_deductions,
				gross_salary, total_deductions, net_salary, status, generated_by
			) VALUES (
				$1, $2, $3, $4,
				(SELECT COALESCE(MAX(version), 0) + 1 FROM payroll_records
				 WHERE employee_id = $2 AND period_month = $3 AND period_year = $4),
				$5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
			)
			RETURNING version, created_at, updated_at
		`
		err = q.QueryRow(ctx, query,
			record.ID, record.EmployeeID, record.PeriodMonth, record.PeriodYear,
			record.Earnings.Basic, record.Earnings.HousingAllowance, record.Earnings.SpecialAllowance, record.Earnings.Overtime,
			record.Deductions.ProvidentFund, record.Deductions.Insurance, record.Deductions.ProfessionalTax, record.Deductions.Other,
			record.Summary.Gross, record.Summary.TotalDeductions, record.Summary.Net, record.Status, record.GeneratedBy,
		).Scan(&record.Version, &record.CreatedAt, &record.UpdatedAt)
		if err != nil {
			if database.IsUniqueViolation(err, activeRecordConstraint) || database.IsUniqueViolation(err, recordVersionConstraint) {
				return payroll.ErrPayrollRecordAlreadyExists
			}
			return fmt.Errorf("failed to create payroll record: %w", err)
		}

		if activeID != "" {
			if _, err := q.Exec(ctx, `
				UPDATE payroll_records SET superseded_by = $2 WHERE id = $1
			`, activeID, record.ID); err != nil {
				return fmt.Errorf("failed to link superseded payroll record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	record.SupersededAt = nil
	record.SupersededBy = nil
	return record, nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanRecord(q.QueryRow(ctx, "SELECT"+recordColumns+recordFrom+" WHERE pr.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) UpdateStatus(ctx context.Context, id string, fn func(payroll.PayrollRecord) (payroll.PayrollRecord, error)) (payroll.PayrollRecord, error) {
	var updated payroll.PayrollRecord

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		current, err := scanRecord(q.QueryRow(ctx, "SELECT"+recordColumns+recordFrom+" WHERE pr.id = $1 FOR UPDATE OF pr", id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return payroll.ErrPayrollRecordNotFound
			}
			return fmt.Errorf("failed to lock payroll record: %w", err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		err = q.QueryRow(ctx, `
			UPDATE payroll_records
			SET status = $2, payment_date = $3, payment_mode = $4,
				status_updated_by = $5, status_updated_at = $6, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`, id, next.Status, next.PaymentDate, next.PaymentMode, next.StatusUpdatedBy, next.StatusUpdatedAt).Scan(&next.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update payroll status: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	return updated, nil
}

// buildFilter renders the WHERE clause shared by List and GetSummary.
func buildFilter(filter payroll.PayrollFilter) (string, []interface{}) {
	where := " WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if !filter.IncludeSuperseded {
		where += " AND pr.superseded_at IS NULL"
	}
	if filter.PeriodMonth != nil {
		where += fmt.Sprintf(" AND pr.period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		where += fmt.Sprintf(" AND pr.period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND pr.status = $%d", argIdx)
		args = append(args, string(*filter.Status))
		argIdx++
	}
	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND pr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Department != nil {
		where += fmt.Sprintf(" AND LOWER(e.department) = LOWER($%d)", argIdx)
		args = append(args, *filter.Department)
	}
	return where, args
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)
	where, args := buildFilter(filter)

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+recordFrom+where, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	// Sort
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	allowedColumns := map[string]string{
		"created_at":    "pr.created_at %[1]s",
		"period":        "pr.period_year %[1]s, pr.period_month %[1]s",
		"employee_name": "e.full_name %[1]s",
		"net_salary":    "pr.net_salary %[1]s",
	}
	orderBy, ok := allowedColumns[filter.SortBy]
	if !ok {
		orderBy = allowedColumns["created_at"]
	}
	orderBy = fmt.Sprintf(orderBy, sortOrder) + ", pr.id"

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf("SELECT%s%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		recordColumns, recordFrom, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	records := []payroll.PayrollRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll records: %w", err)
	}

	return records, totalCount, nil
}

func (r *payrollRepository) GetSummary(ctx context.Context, filter payroll.PayrollFilter) (payroll.PayrollSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)
	where, args := buildFilter(filter)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(pr.gross_salary), 0),
			COALESCE(SUM(pr.total_deductions), 0),
			COALESCE(SUM(pr.net_salary), 0),
			COUNT(*) FILTER (WHERE pr.status = 'Generated'),
			COUNT(*) FILTER (WHERE pr.status = 'Approved'),
			COUNT(*) FILTER (WHERE pr.status = 'Rejected'),
			COUNT(*) FILTER (WHERE pr.status = 'Paid')
	` + recordFrom + where

	var s payroll.PayrollSummaryResponse
	err := q.QueryRow(ctx, query, args...).Scan(
		&s.TotalRecords, &s.TotalGrossSalary, &s.TotalDeductions, &s.TotalNetSalary,
		&s.GeneratedCount, &s.ApprovedCount, &s.RejectedCount, &s.PaidCount,
	)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}
	return s, nil
}
