package postgresql

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var employeeColumnNames = []string{
	"id", "employee_code", "full_name", "department", "designation", "employment_status",
	"basic_salary", "housing_allowance", "other_allowances", "created_at", "updated_at",
}

func TestEmployeeRepository_ListEligible(t *testing.T) {
	t.Parallel()

	// Arrange
	mock := newMock(t)
	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()
	dept := "Engineering"

	mock.ExpectQuery(`FROM employees WHERE \(\$1 OR employment_status = 'Active'\) AND LOWER\(TRIM\(department\)\) = LOWER\(TRIM\(\$2\)\) ORDER BY employee_code, id`).
		WithArgs(false, "Engineering").
		WillReturnRows(mock.NewRows(employeeColumnNames).
			AddRow("e1", "0001", "Ada", "Engineering", "Engineer", employee.EmploymentStatusActive,
				ptr(decimal.NewFromInt(50000)), ptr(decimal.NewFromInt(10000)), nil, now, now))

	// Act
	list, err := repo.ListEligible(context.Background(), employee.EligibilityFilter{Department: &dept})

	// Assert
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].HasSalaryStructure())
	assert.Nil(t, list[0].Salary.OtherAllowances)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepository_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewEmployeeRepository(mock)
	mock.ExpectQuery(`FROM employees WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(mock.NewRows(employeeColumnNames))

	_, err := repo.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
