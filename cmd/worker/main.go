package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-front/internal/app"
	"github.com/meridian-erp/meridian-front/internal/catalog"
	"github.com/meridian-erp/meridian-front/internal/erp"
	platformcache "github.com/meridian-erp/meridian-front/internal/platform/cache"
	"github.com/meridian-erp/meridian-front/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if cfg.WarmupUser == "" {
		logger.Info("no warmup service account configured, worker idle exit")
		return
	}

	redisClient, err := platformcache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	client := erp.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)
	cache := catalog.NewCache(redisClient, cfg.CatalogTTL)
	catalog.RegisterLoaders(cache, client)

	warmup := &jobs.CatalogWarmupJob{
		Cache:    cache,
		Client:   client,
		Username: cfg.WarmupUser,
		Password: cfg.WarmupPassword,
		Logger:   logger,
	}

	warmupTask, err := jobs.NewCatalogWarmupTask(jobs.CatalogWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCatalogWarmup, Handler: warmup.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting", slog.String("cron", cfg.WarmupCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
