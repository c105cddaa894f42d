package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/worktime-go/internal/config"
	"github.com/cmlabs-hris/worktime-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(cfg config.AppConfig, JWTService jwt.Service, attendanceHandler AttendanceHandler, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.Name),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			// Authenticated with the short-lived stream token in the query string
			r.Get("/stream", attendanceHandler.Stream)

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

				r.Get("/stream-token", attendanceHandler.StreamToken)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
					r.Post("/clock-in", attendanceHandler.ClockIn)
					r.Post("/clock-out", attendanceHandler.ClockOut)
					r.Post("/break-start", attendanceHandler.StartBreak)
					r.Post("/break-end", attendanceHandler.EndBreak)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Get("/today", attendanceHandler.GetToday)
					r.Get("/my", attendanceHandler.GetMyAttendance)
				})

				// Manager and owner
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/today/{employeeID}", attendanceHandler.GetEmployeeToday)
					r.Get("/records", attendanceHandler.List)
					r.Get("/records/{id}", attendanceHandler.Get)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionReportsView))
					r.Get("/summary", attendanceHandler.Summary)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCorrect))
					r.Delete("/records/{id}", attendanceHandler.Delete)
					r.Delete("/records/{id}/events/{eventID}", attendanceHandler.DeleteEvent)
				})

				// Owner only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionReportsExport))
					r.Get("/export.csv", attendanceHandler.Export)
				})
			})
		})
	})
	return r
}
