package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/app"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/attendance"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/auth"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/calendar"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/leave"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/observability"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/cache"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/db"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/roles"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/shared"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/users"
	"github.com/mahesh42646/SkylithAdmin-sub001/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "skylith_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool)
	approvalRecorder := shared.NewApprovalRecorder(dbpool, logger)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rolesRepo := roles.NewRepository(dbpool)
	usersRepo := users.NewRepository(dbpool)
	principalCache := users.NewPrincipalCache(redisClient, cfg.PermissionCacheTTL)
	usersService := users.NewService(usersRepo, rolesRepo, principalCache, logger)
	rolesService := roles.NewService(rolesRepo, usersService, auditLogger, logger)

	if err := rolesService.SeedBuiltinRoles(ctx); err != nil {
		logger.Error("seed builtin roles", slog.Any("error", err))
		os.Exit(1)
	}

	rbacMiddleware := rbac.Middleware{Resolver: usersService, Logger: logger}

	rolesHandler := roles.NewHandler(logger, rolesService, rbacMiddleware)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)
	permissionsHandler := rbac.NewPermissionsHandler(rbacMiddleware)

	leaveRepo := leave.NewRepository(dbpool)
	leaveService := leave.NewService(leaveRepo, approvalRecorder, auditLogger, logger)
	leaveHandler := leave.NewHandler(logger, leaveService, rbacMiddleware)

	calendarRepo := calendar.NewRepository(dbpool)
	calendarService := calendar.NewService(calendarRepo, auditLogger, logger)
	calendarHandler := calendar.NewHandler(logger, calendarService, rbacMiddleware)

	attendanceRepo := attendance.NewRepository(dbpool)
	attendanceService := attendance.NewService(attendanceRepo, location, logger)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, rbacMiddleware)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		RBACMiddleware:     rbacMiddleware,
		AuthHandler:        authHandler,
		RolesHandler:       rolesHandler,
		UsersHandler:       usersHandler,
		LeaveHandler:       leaveHandler,
		AttendanceHandler:  attendanceHandler,
		CalendarHandler:    calendarHandler,
		PermissionsHandler: permissionsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
