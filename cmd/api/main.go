package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"github.com/go-chi/httplog/v3"
)

const shutdownTimeout = 15 * time.Second

type repositories struct {
	payroll    payroll.PayrollRepository
	employee   employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	level := parseLevel(cfg.App.LogLevel)
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	if err := run(cfg, logger, level); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, level slog.Level) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := config.LoadPolicy(cfg.Payroll.PolicyFile)
	if err != nil {
		return err
	}
	defaults, err := policy.ApplyDeductions(cfg.DefaultSettings())
	if err != nil {
		return err
	}

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case config.StorageLocal:
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
	case config.StorageMemory:
		fileStorage = storage.NewMemoryStorage()
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	gate := user.NewGate(policy.RolePermissions())
	hub := sse.NewHub(0)

	payrollSvc := payrollService.NewPayrollService(
		repos.payroll,
		repos.employee,
		repos.attendance,
		gate,
		fileStorage,
		payslip.NewRenderer(cfg.Payroll.CompanyName, cfg.Payroll.Currency),
		payrollService.Options{
			Defaults:    defaults,
			WorkerLimit: cfg.Payroll.WorkerLimit,
			Progress:    payrollService.NewHubProgress(hub),
		},
	)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:             logger,
			LogLevel:           level,
			CORSAllowedOrigins: cfg.App.CORSAllowedOrigins,
		},
		JWTService,
		gate,
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewEventsHandler(hub, JWTService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "db_driver", cfg.Database.Driver, "storage", cfg.Storage.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.Database.Driver == config.DriverMemory {
		employees := memory.NewEmployeeRepository(fixtures.DemoDirectory()...)
		slog.Warn("Using in-memory storage, data is lost on restart")
		return repositories{
			payroll:    memory.NewPayrollRepository(employees),
			employee:   employees,
			attendance: memory.NewAttendanceRepository(),
			close:      func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return repositories{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	return repositories{
		payroll:    postgresql.NewPayrollRepository(db),
		employee:   postgresql.NewEmployeeRepository(db),
		attendance: postgresql.NewAttendanceRepository(db),
		close:      db.Close,
	}, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
