package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/logger"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/notify"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	correctionService "github.com/cmlabs-hris/attendance-backend-go/internal/service/correction"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, logCloser, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		App:     cfg.App.Name,
		Version: cfg.App.Version,
		Env:     cfg.App.Env,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	if err := i18n.Init("en"); err != nil {
		return fmt.Errorf("loading locales: %w", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applied, err := database.NewMigrator(db).Apply(ctx, func(msg string) { slog.Info(msg) })
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	slog.Info("Database ready", "migrations_applied", applied)

	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	correctionRepo := postgresql.NewCorrectionRequestRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("initializing jwt: %w", err)
	}

	hub := sse.NewHub(16)
	defer hub.Close()

	notifiers := notify.Multi{notify.NewHub(hub)}
	if cfg.Notification.SlackToken != "" {
		notifiers = append(notifiers, notify.NewSlack(cfg.Notification.SlackToken, notify.SlackOption{
			ChannelID: cfg.Notification.SlackChannelID,
		}))
		slog.Info("Slack notifications enabled", "channel", cfg.Notification.SlackChannelID)
	}

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, transactor, cfg.Policies)
	correctionSvc := correctionService.NewCorrectionService(
		correctionRepo,
		attendanceRepo,
		userRepo,
		transactor,
		cfg.Policies,
		notifiers,
	)

	scheduler := cron.NewScheduler()
	cron.NewCorrectionJobs(correctionSvc, cfg.Notification.ReminderAfter, cfg.Notification.ReminderEvery).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		log,
		cfg.App.AllowedOrigins,
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc, correctionSvc),
		appHTTP.NewCorrectionHandler(correctionSvc),
		appHTTP.NewEventHandler(hub, JWTService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	// Streams only end when the hub closes
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
