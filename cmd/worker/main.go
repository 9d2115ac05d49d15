package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/app"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/attendance"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/calendar"
	jobmetrics "github.com/mahesh42646/SkylithAdmin-sub001/internal/jobs"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/leave"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/db"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/users"
	"github.com/mahesh42646/SkylithAdmin-sub001/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	location, err := cfg.Location()
	if err != nil {
		logger.Error("load timezone", slog.String("tz", cfg.AttendanceTimezone), slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	usersRepo := users.NewRepository(pool)
	leaveRepo := leave.NewRepository(pool)
	calendarRepo := calendar.NewRepository(pool)
	attendanceRepo := attendance.NewRepository(pool)

	finalizer := attendance.NewFinalizer(attendanceRepo, usersRepo, leaveRepo, calendarRepo, logger, cfg.AttendanceUserBudget)
	metrics := jobmetrics.NewMetrics(nil)
	finalizeJob := jobs.NewAttendanceFinalizeJob(finalizer, location, logger, metrics)

	finalizeTask, err := jobs.NewAttendanceFinalizeTask(jobs.AttendanceFinalizePayload{})
	if err != nil {
		logger.Error("build finalize task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Location:  location,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAttendanceFinalize, Handler: finalizeJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// A failed run is picked up by the next scheduled one, so no retries.
			{Spec: cfg.AttendanceCron, Task: finalizeTask, Options: []asynq.Option{asynq.MaxRetry(0)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
