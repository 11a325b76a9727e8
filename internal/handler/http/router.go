package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/cmlabs-hris/attendance-console/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/jwt"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	// Logger receives request logs. An ECS-formatted JSON logger on stdout is
	// used when nil.
	Logger *slog.Logger
}

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Admin      AdminHandler
	Events     EventsHandler
}

func NewRouter(JWTService jwt.Service, opts RouterOptions, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			ReplaceAttr: logFormat.ReplaceAttr,
		})).With(
			slog.String("app", "attendance-console"),
			slog.String("version", opts.Version),
			slog.String("env", opts.Env),
		)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(middleware.StripQueryToken)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Post("/auth/login", h.Auth.Login)

		// EventSource cannot send headers, so the stream also takes ?token=
		r.Group(func(r chi.Router) {
			r.Use(middleware.StreamVerifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/events", h.Events.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.Attendance.Panel)
				r.Get("/history", h.Attendance.History)
				r.Get("/attempts", h.Attendance.Attempts)

				r.Post("/intent/confirm", h.Attendance.ConfirmIntent)
				r.Post("/intent/dismiss", h.Attendance.DismissIntent)

				r.Put("/justification", h.Attendance.EditJustification)
				r.Post("/justification/confirm", h.Attendance.ConfirmJustification)
				r.Post("/justification/cancel", h.Attendance.CancelJustification)

				r.Post("/{action}", h.Attendance.Request)
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Get("/", h.Leave.ListMyRequests)
				r.Post("/", h.Leave.CreateRequest)
				r.Get("/employees", h.Leave.ListEmployees)
				r.Put("/{id}", h.Leave.UpdateRequest)
				r.Delete("/{id}", h.Leave.DeleteRequest)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/attendances", func(r chi.Router) {
					r.Get("/", h.Admin.ListAttendances)
					r.Get("/today", h.Admin.TodayAttendances)
					r.Patch("/bulk-status", h.Admin.BulkUpdateAttendanceStatus)
					r.Get("/{id}", h.Admin.GetAttendance)
					r.Patch("/{id}/status", h.Admin.UpdateAttendanceStatus)
				})

				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.Admin.ListUsers)
					r.Post("/", h.Admin.CreateUser)
					r.Put("/{id}", h.Admin.UpdateUser)
					r.Delete("/{id}", h.Admin.DeleteUser)
				})

				r.Get("/settings", h.Admin.GetSettings)
				r.Put("/settings", h.Admin.UpdateSettings)

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", h.Admin.ListNotifications)
					r.Patch("/read-all", h.Admin.MarkAllNotificationsRead)
					r.Patch("/{id}/read", h.Admin.MarkNotificationRead)
				})

				r.Route("/leave-requests", func(r chi.Router) {
					r.Get("/", h.Admin.ListLeaveRequests)
					r.Patch("/{id}/approve", h.Admin.ApproveLeaveRequest)
					r.Patch("/{id}/reject", h.Admin.RejectLeaveRequest)
				})
			})
		})
	})
	return r
}
