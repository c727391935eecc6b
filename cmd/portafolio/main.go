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

	"github.com/portafolio-docente/portafolio-docente/internal/academics/cycles"
	"github.com/portafolio-docente/portafolio-docente/internal/academics/subjects"
	"github.com/portafolio-docente/portafolio-docente/internal/app"
	"github.com/portafolio-docente/portafolio-docente/internal/assignment"
	"github.com/portafolio-docente/portafolio-docente/internal/auth"
	"github.com/portafolio-docente/portafolio-docente/internal/documents"
	"github.com/portafolio-docente/portafolio-docente/internal/importer"
	"github.com/portafolio-docente/portafolio-docente/internal/platform/cache"
	"github.com/portafolio-docente/portafolio-docente/internal/platform/db"
	"github.com/portafolio-docente/portafolio-docente/internal/rbac"
	"github.com/portafolio-docente/portafolio-docente/internal/reports"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
	"github.com/portafolio-docente/portafolio-docente/internal/users"
	"github.com/portafolio-docente/portafolio-docente/jobs"
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

	auditLogger := shared.NewAuditLogger(dbpool)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	assignmentRepo := assignment.NewRepository(dbpool)
	assignmentService := assignment.NewService(assignmentRepo, usersService, auditLogger, logger)

	tokens := auth.NewTokenCodec(cfg.JWTSecret, "portafolio-docente", cfg.JWTTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, assignmentService, tokens, logger)
	authHandler := auth.NewHandler(logger, authService)

	resolver := rbac.NewResolver(assignmentService)
	gate := rbac.Middleware{
		Logger:   logger,
		Tokens:   tokens,
		Users:    usersService,
		Store:    assignmentService,
		Resolver: resolver,
	}
	rolesHandler := assignment.NewHandler(logger, assignmentService, gate)

	cyclesRepo := cycles.NewRepository(dbpool)
	cyclesService := cycles.NewService(cyclesRepo)
	cyclesHandler := cycles.NewHandler(logger, cyclesService)

	subjectsRepo := subjects.NewRepository(dbpool)
	subjectsService := subjects.NewService(subjectsRepo)
	subjectsHandler := subjects.NewHandler(logger, subjectsService)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsRepo := reports.NewRepository(dbpool)
	reportsService := reports.NewService(reportsRepo, reportCache)
	reportsHandler := reports.NewHandler(logger, reportsService, gate)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("report cache subscribe", slog.Any("error", err))
	}

	documentsRepo := documents.NewRepository(dbpool)
	documentsService := documents.NewService(documentsRepo, auditLogger, reportCache, logger)
	documentsHandler := documents.NewHandler(logger, documentsService, gate)

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()
	importerService := importer.NewService(usersRepo, assignmentService, queueClient, redisClient, logger)
	importerHandler := importer.NewHandler(logger, importerService, gate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		RolesHandler:     rolesHandler,
		CyclesHandler:    cyclesHandler,
		SubjectsHandler:  subjectsHandler,
		DocumentsHandler: documentsHandler,
		ReportsHandler:   reportsHandler,
		ImporterHandler:  importerHandler,
		JobHandler:       jobHandler,
		RBAC:             gate,
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
