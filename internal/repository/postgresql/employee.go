package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db database.Pool
}

func NewEmployeeRepository(db database.Pool) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, employee_code, full_name, department, designation, employment_status,
	basic_salary, housing_allowance, other_allowances, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.EmployeeCode, &e.FullName, &e.Department, &e.Designation, &e.EmploymentStatus,
		&e.Salary.BasicSalary, &e.Salary.HousingAllowance, &e.Salary.OtherAllowances,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, "SELECT"+employeeColumns+" FROM employees WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (r *employeeRepository) ListEligible(ctx context.Context, filter employee.EligibilityFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT" + employeeColumns + " FROM employees WHERE ($1 OR employment_status = 'Active')"
	args := []interface{}{filter.IncludeInactive}
	argIdx := 2

	if filter.Department != nil {
		query += fmt.Sprintf(" AND LOWER(TRIM(department)) = LOWER(TRIM($%d))", argIdx)
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.EmployeeIDs != nil {
		query += fmt.Sprintf(" AND id = ANY($%d)", argIdx)
		args = append(args, filter.EmployeeIDs)
	}
	query += " ORDER BY employee_code, id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible employees: %w", err)
	}
	defer rows.Close()

	var result []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return result, nil
}
