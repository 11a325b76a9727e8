package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-console/internal/config"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attempt"
	appHTTP "github.com/cmlabs-hris/attendance-console/internal/handler/http"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-console/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-console/internal/repository/postgresql"
	adminService "github.com/cmlabs-hris/attendance-console/internal/service/admin"
	serviceAuth "github.com/cmlabs-hris/attendance-console/internal/service/auth"
	"github.com/cmlabs-hris/attendance-console/internal/service/console"
	leaveService "github.com/cmlabs-hris/attendance-console/internal/service/leave"
	"github.com/cmlabs-hris/attendance-console/internal/workflow"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	})).With(
		slog.String("app", "attendance-console"),
		slog.String("version", version),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := workflow.ParsePolicy(cfg.Fraud.PrecheckPolicy)
	if err != nil {
		slog.Error("Invalid pre-check policy", "error", err)
		os.Exit(1)
	}

	var attemptRepo attempt.Repository
	switch cfg.Journal.Driver {
	case config.JournalDriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolSize{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			slog.Error("Error connecting to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			slog.Error("Failed to prepare attempt journal schema", "error", err)
			os.Exit(1)
		}
		attemptRepo = postgresql.NewAttemptRepository(db)
	default:
		attemptRepo = memory.NewAttemptRepository()
	}

	client := apiclient.NewClient(cfg.Backend)
	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	hub := sse.NewHub()

	consoleService := console.NewService(console.Options{
		Gateway:  client,
		Journal:  attemptRepo,
		Hub:      hub,
		Policy:   policy,
		Location: cfg.Location(),
	})
	authService := serviceAuth.NewAuthService(client, JWTService)
	leaveSvc := leaveService.NewLeaveService(client)
	adminSvc := adminService.NewAdminService(client)

	scheduler := cron.NewScheduler()
	cron.NewConsoleJobs(attemptRepo, consoleService, cfg.Journal.Retention, cfg.App.SessionIdleTTL).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(JWTService, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Env:            cfg.App.Env,
		Version:        version,
	}, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authService),
		Attendance: appHTTP.NewAttendanceHandler(consoleService),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Admin:      appHTTP.NewAdminHandler(adminSvc),
		Events:     appHTTP.NewEventsHandler(hub),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr, "journal", cfg.Journal.Driver, "policy", policy)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
