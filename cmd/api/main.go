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

	"github.com/cmlabs-hris/worktime-backend/internal/config"
	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	appHTTP "github.com/cmlabs-hris/worktime-backend/internal/handler/http"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/cron"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/database"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend/internal/repository/postgresql"
	worktimeService "github.com/cmlabs-hris/worktime-backend/internal/service/worktime"
)

var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(os.Getenv("LOG_LEVEL")),
	})))

	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	txManager := postgresql.NewTxManager(db)
	scheduleRepo := postgresql.NewWorkScheduleRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	ceilingRepo := postgresql.NewGroupCeilingRepository(db)
	alertRepo := postgresql.NewComplianceAlertRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)

	worktimeSvc := worktimeService.NewWorktimeService(
		txManager,
		scheduleRepo,
		attendanceRepo,
		ceilingRepo,
		alertRepo,
		employeeRepo,
		worktimeService.Config{
			DefaultThresholds: worktime.Thresholds{
				PlanToleranceMinutes:       cfg.Worktime.PlanToleranceMinutes,
				PermittedToleranceMinutes:  cfg.Worktime.PermittedToleranceMinutes,
				PlanToDateToleranceMinutes: cfg.Worktime.PlanToDateToleranceMinutes,
			},
			DefaultComplementaryCapMinutes: cfg.Worktime.DailyComplementaryCapMinutes,
			SweepConcurrency:               cfg.Worktime.SweepConcurrency,
			Location:                       cfg.Location(),
		},
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	worktimeHandler := appHTTP.NewWorktimeHandler(worktimeSvc)
	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: cfg.App.CORSOrigins,
		Env:            cfg.App.Env,
		Version:        version,
		LogOutput:      os.Stdout,
	}, JWTService, worktimeHandler)

	scheduler := cron.NewScheduler()
	if cfg.Worktime.SweepEnabled {
		complianceJobs := cron.NewComplianceJobs(employeeRepo, worktimeSvc, cfg.Location())
		complianceJobs.RegisterJobs(scheduler, cfg.Worktime.SweepInterval)
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", srv.Addr, "env", cfg.App.Env, "timezone", cfg.App.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
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
