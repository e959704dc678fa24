package fixtures

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ==========================================
// DEMO DIRECTORY
// ==========================================

type demoEmployee struct {
	code        string
	name        string
	department  string
	designation string
	status      employee.EmploymentStatus
	basic       string
	housing     string
	other       string
}

// Stable ids so tokens minted for a demo employee keep working across restarts.
var demoEmployees = map[string]demoEmployee{
	"0190f1a0-0000-7000-8000-000000000001": {"ENG-001", "Ayu Lestari", "Engineering", "Backend Engineer", employee.EmploymentStatusActive, "50000", "20000", "5000"},
	"0190f1a0-0000-7000-8000-000000000002": {"ENG-002", "Budi Santoso", "Engineering", "Frontend Engineer", employee.EmploymentStatusActive, "48000", "18000", "4000"},
	"0190f1a0-0000-7000-8000-000000000003": {"ENG-003", "Citra Dewi", "Engineering", "Engineering Manager", employee.EmploymentStatusActive, "90000", "30000", "10000"},
	"0190f1a0-0000-7000-8000-000000000004": {"FIN-001", "Dimas Pratama", "Finance", "Accountant", employee.EmploymentStatusActive, "45000", "15000", "3000"},
	"0190f1a0-0000-7000-8000-000000000005": {"FIN-002", "Eka Putri", "Finance", "Finance Analyst", employee.EmploymentStatusInactive, "42000", "15000", "2000"},
	"0190f1a0-0000-7000-8000-000000000006": {"HR-001", "Fajar Nugroho", "Human Resources", "HR Generalist", employee.EmploymentStatusActive, "40000", "12000", "3000"},
}

// DemoDirectory returns the employees seeded into the in-memory directory.
func DemoDirectory() []employee.Employee {
	out := make([]employee.Employee, 0, len(demoEmployees))
	for id, e := range demoEmployees {
		out = append(out, employee.Employee{
			ID:               id,
			EmployeeCode:     e.code,
			FullName:         e.name,
			Department:       e.department,
			Designation:      e.designation,
			EmploymentStatus: e.status,
			Salary: employee.SalaryStructure{
				BasicSalary:      amount(e.basic),
				HousingAllowance: amount(e.housing),
				OtherAllowances:  amount(e.other),
			},
		})
	}
	return out
}
