package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromEnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", `
DB_DRIVER=memory
JWT_SECRET_KEY=file-secret
JWT_ACCESS_EXPIRATION_TIME=30m
PAYROLL_WORKER_LIMIT=3
PAYROLL_PF_RATE=10.5
CORS_ALLOWED_ORIGINS=https://a.example, https://b.example
`)
	t.Setenv("APP_PORT", "9090")
	// Environment wins over the file.
	t.Setenv("JWT_SECRET_KEY", "env-secret")

	cfg, err := Load(envFile)

	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiration)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 3, cfg.Payroll.WorkerLimit)
	assert.True(t, cfg.Payroll.ProvidentFund.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, cfg.Payroll.Insurance.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSAllowedOrigins)
}

func TestLoad_MissingEnvFileIsTolerated(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, StorageLocal, cfg.Storage.Type)
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without password": {"DB_DRIVER": "postgres", "JWT_SECRET_KEY": "s"},
		"missing secret":            {"DB_DRIVER": "memory"},
		"zero workers":              {"DB_DRIVER": "memory", "JWT_SECRET_KEY": "s", "PAYROLL_WORKER_LIMIT": "0"},
		"negative rate":             {"DB_DRIVER": "memory", "JWT_SECRET_KEY": "s", "PAYROLL_INSURANCE_RATE": "-1"},
		"bad rate":                  {"DB_DRIVER": "memory", "JWT_SECRET_KEY": "s", "PAYROLL_PF_RATE": "twelve"},
		"unknown driver":            {"DB_DRIVER": "sqlite", "JWT_SECRET_KEY": "s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
			assert.Error(t, err)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5433, Name: "payroll", SSLMode: "disable"}}
	assert.Equal(t, "postgres://u:p@db:5433/payroll?sslmode=disable", cfg.DatabaseURL())
}

func TestLoadDatabase_NeedsNoSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_CONNS", "4")

	db, err := LoadDatabase(filepath.Join(t.TempDir(), "absent.env"))

	require.NoError(t, err)
	assert.Equal(t, "db.internal", db.Host)
	assert.Equal(t, int32(4), db.MaxConns)
	assert.Contains(t, db.URL(), "@db.internal:5432/")
}

func TestLoadPolicy(t *testing.T) {
	path := writeFile(t, "policy.yaml", `
roles:
  hr: [payroll.generate, payroll.view.all]
  auditor: [payroll.view.all]
deductions:
  provident_fund_rate: 11
  insurance_rate: "0.75"
  professional_tax:
    mode: slab
    slabs:
      - up_to: 15000
        amount: 0
      - up_to: 30000
        amount: 150
      - amount: 200
`)

	policy, err := LoadPolicy(path)
	require.NoError(t, err)

	roles := policy.RolePermissions()
	assert.Len(t, roles, 2)
	assert.Equal(t, []user.Permission{user.PermissionPayrollViewAll}, roles["auditor"])

	cfg := &Config{Payroll: PayrollConfig{ProvidentFund: decimal.NewFromInt(12), OvertimeRate: decimal.NewFromInt(50)}}
	settings, err := policy.ApplyDeductions(cfg.DefaultSettings())
	require.NoError(t, err)
	assert.True(t, settings.ProvidentFundRate.Equal(decimal.NewFromInt(11)))
	assert.True(t, settings.InsuranceRate.Equal(decimal.RequireFromString("0.75")))
	assert.True(t, settings.OvertimeRatePerHour.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, payroll.TaxModeSlab, settings.ProfessionalTax.Mode)
	require.Len(t, settings.ProfessionalTax.Slabs, 3)
	assert.Nil(t, settings.ProfessionalTax.Slabs[2].UpTo)
	assert.True(t, settings.ProfessionalTax.Slabs[1].UpTo.Equal(decimal.NewFromInt(30000)))
}

func TestLoadPolicy_EmptyPathUsesDefaults(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, user.DefaultRolePermissions, policy.RolePermissions())

	base := payroll.PayrollSettings{ProvidentFundRate: decimal.NewFromInt(12)}
	got, err := policy.ApplyDeductions(base)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestLoadPolicy_RejectsBadSlabs(t *testing.T) {
	path := writeFile(t, "policy.yaml", `
deductions:
  professional_tax:
    mode: slab
    slabs:
      - amount: 100
      - up_to: 1000
        amount: 0
`)
	policy, err := LoadPolicy(path)
	require.NoError(t, err)

	_, err = policy.ApplyDeductions(payroll.PayrollSettings{})
	assert.Error(t, err)
}

func TestLoadPolicy_ShippedExample(t *testing.T) {
	policy, err := LoadPolicy(filepath.Join("..", "..", "config", "policy.example.yaml"))
	require.NoError(t, err)

	gate := user.NewGate(policy.RolePermissions())
	assert.True(t, gate.HasPermission(user.RoleAccountant, user.PermissionPayrollPay))
	assert.False(t, gate.HasPermission(user.RoleManager, user.PermissionPayrollPay))
	assert.True(t, gate.HasPermission(user.RoleAdmin, user.PermissionPayrollSettingsManage))

	settings, err := policy.ApplyDeductions(payroll.PayrollSettings{})
	require.NoError(t, err)
	assert.Equal(t, payroll.TaxModeSlab, settings.ProfessionalTax.Mode)
	assert.Len(t, settings.ProfessionalTax.Slabs, 3)
}
