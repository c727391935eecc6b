package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/portafolio-docente/portafolio-docente/internal/app"
	"github.com/portafolio-docente/portafolio-docente/internal/assignment"
	"github.com/portafolio-docente/portafolio-docente/internal/importer"
	"github.com/portafolio-docente/portafolio-docente/internal/platform/cache"
	"github.com/portafolio-docente/portafolio-docente/internal/platform/db"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
	"github.com/portafolio-docente/portafolio-docente/internal/users"
	"github.com/portafolio-docente/portafolio-docente/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	auditLogger := shared.NewAuditLogger(pool)
	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	assignmentRepo := assignment.NewRepository(pool)
	assignmentService := assignment.NewService(assignmentRepo, usersService, auditLogger, logger)

	// The worker never enqueues, it only consumes.
	importerService := importer.NewService(usersRepo, assignmentService, nil, redisClient, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeRosterImport, Handler: importerService.HandleTask},
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
