// Package main is the entry point for the expense oracle service.
// It serves spending forecasts, anomaly alerts, health scores and autonomous
// budget actions over HTTP, and re-runs the decision pipeline on a schedule.
//
// Startup order:
//   - Load configuration from environment variables (.env supported)
//   - Initialize logging
//   - Wire databases, repositories, estimators and services via the DI container
//   - Start the cron scheduler (unless disabled)
//   - Start the HTTP server and wait for SIGINT/SIGTERM
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expenseoracle/oracle/internal/config"
	"github.com/expenseoracle/oracle/internal/di"
	"github.com/expenseoracle/oracle/internal/scheduler"
	"github.com/expenseoracle/oracle/internal/server"
	"github.com/expenseoracle/oracle/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Bool("autonomy_enabled", cfg.AutonomyEnabled).
		Msg("Starting expense oracle")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	// Closing flushes WAL checkpoints for both databases
	defer container.Close()

	var sched *scheduler.Scheduler
	var jobRunner server.JobRunner
	if cfg.Scheduling.Enabled {
		sched = scheduler.New(log)
		if err := di.ScheduleJobs(sched, jobs, cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule jobs")
		}
		sched.Start()
		jobRunner = sched
	} else {
		log.Info().Msg("Scheduler disabled")
	}

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Jobs:      jobRunner,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Let a running pipeline finish before the databases close
	if sched != nil {
		sched.Stop()
		log.Info().Msg("Scheduler stopped")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
