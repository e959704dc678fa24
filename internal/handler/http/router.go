package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger             *slog.Logger
	LogLevel           slog.Level
	CORSAllowedOrigins []string
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, gate *user.Gate, payrollHandler PayrollHandler, eventsHandler EventsHandler) *chi.Mux {
	r := chi.NewRouter()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// EventSource clients authenticate with a short-lived SSE token
		r.Get("/payroll/events", eventsHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Post("/events/token", eventsHandler.GetSSEToken)

				// Generation
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(gate, user.PermissionPayrollGenerate))
					r.Get("/eligible-employees", payrollHandler.ListEligibleEmployees)
					r.Get("/generation-summary", payrollHandler.GetGenerationSummary)
					r.Post("/generate", payrollHandler.GeneratePayroll)
				})

				r.Route("/settings", func(r chi.Router) {
					r.Get("/", payrollHandler.GetSettings)
					r.Put("/", payrollHandler.UpdateSettings)
				})

				r.Patch("/bulk/status", payrollHandler.BulkUpdateStatus)

				r.Get("/", payrollHandler.ListPayrollRecords)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPayrollRecord)
					r.Patch("/status", payrollHandler.UpdateStatus)
					r.Get("/download", payrollHandler.DownloadPayslip)
				})
			})
		})
	})
	return r
}
