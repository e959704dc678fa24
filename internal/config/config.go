package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	StorageLocal  = "local"
	StorageMemory = "memory"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Storage  StorageConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	Version            string
	LogLevel           string
	CORSAllowedOrigins []string
}

type StorageConfig struct {
	Type     string
	BasePath string
}

// PayrollConfig carries generation limits and the default deduction rules
// used until settings are saved.
type PayrollConfig struct {
	WorkerLimit     int
	ProvidentFund   decimal.Decimal
	Insurance       decimal.Decimal
	OvertimeRate    decimal.Decimal
	ProfessionalTax decimal.Decimal
	PolicyFile      string
	CompanyName     string
	Currency        string
}

// Load reads .env files (missing files are fine) and then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	config := &Config{}

	db, err := databaseFromEnv()
	if err != nil {
		return nil, err
	}
	config.Database = db

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		Version:            getEnv("APP_VERSION", "dev"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	config.Storage = StorageConfig{
		Type:     strings.ToLower(getEnv("STORAGE_TYPE", StorageLocal)),
		BasePath: getEnv("STORAGE_BASE_PATH", "./storage"),
	}

	// Payroll configuration
	workerLimit, err := strconv.Atoi(getEnv("PAYROLL_WORKER_LIMIT", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_WORKER_LIMIT: %w", err)
	}

	config.Payroll = PayrollConfig{
		WorkerLimit: workerLimit,
		PolicyFile:  getEnv("PAYROLL_POLICY_FILE", ""),
		CompanyName: getEnv("PAYSLIP_COMPANY_NAME", "CMLabs HRIS"),
		Currency:    getEnv("PAYSLIP_CURRENCY", ""),
	}
	rates := []struct {
		key      string
		fallback string
		dst      *decimal.Decimal
	}{
		{"PAYROLL_PF_RATE", "12", &config.Payroll.ProvidentFund},
		{"PAYROLL_INSURANCE_RATE", "1", &config.Payroll.Insurance},
		{"PAYROLL_OVERTIME_RATE", "0", &config.Payroll.OvertimeRate},
		{"PAYROLL_PROFESSIONAL_TAX", "0", &config.Payroll.ProfessionalTax},
	}
	for _, r := range rates {
		v, err := decimal.NewFromString(getEnv(r.key, r.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", r.key, err)
		}
		*r.dst = v
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadDatabase reads only the database settings. Tools that never serve
// requests use it so they do not need the API secrets.
func LoadDatabase(envFiles ...string) (DatabaseConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return DatabaseConfig{}, fmt.Errorf("failed to load env file: %w", err)
	}
	return databaseFromEnv()
}

func databaseFromEnv() (DatabaseConfig, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	return DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverPostgres, DriverMemory)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}
	if c.Storage.Type != StorageLocal && c.Storage.Type != StorageMemory {
		return fmt.Errorf("STORAGE_TYPE must be %q or %q", StorageLocal, StorageMemory)
	}
	if c.Payroll.WorkerLimit <= 0 {
		return fmt.Errorf("PAYROLL_WORKER_LIMIT must be positive")
	}
	for name, v := range map[string]decimal.Decimal{
		"PAYROLL_PF_RATE":          c.Payroll.ProvidentFund,
		"PAYROLL_INSURANCE_RATE":   c.Payroll.Insurance,
		"PAYROLL_OVERTIME_RATE":    c.Payroll.OvertimeRate,
		"PAYROLL_PROFESSIONAL_TAX": c.Payroll.ProfessionalTax,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return c.Database.URL()
}

func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

// DefaultSettings are the deduction rules used before any settings are saved.
func (c *Config) DefaultSettings() payroll.PayrollSettings {
	return payroll.PayrollSettings{
		ProvidentFundRate:   c.Payroll.ProvidentFund,
		InsuranceRate:       c.Payroll.Insurance,
		OvertimeRatePerHour: c.Payroll.OvertimeRate,
		ProfessionalTax: payroll.ProfessionalTaxPolicy{
			Mode:       payroll.TaxModeFlat,
			FlatAmount: c.Payroll.ProfessionalTax,
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
