package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridian-erp/meridian-front/internal/app"
	"github.com/meridian-erp/meridian-front/internal/auth"
	"github.com/meridian-erp/meridian-front/internal/catalog"
	"github.com/meridian-erp/meridian-front/internal/compose"
	"github.com/meridian-erp/meridian-front/internal/dashboard"
	"github.com/meridian-erp/meridian-front/internal/draft"
	"github.com/meridian-erp/meridian-front/internal/erp"
	platformcache "github.com/meridian-erp/meridian-front/internal/platform/cache"
	"github.com/meridian-erp/meridian-front/internal/session"
	"github.com/meridian-erp/meridian-front/internal/syncer"
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

	sessions := session.NewManager(redisClient, "meridian_session", cfg.SessionTTL, cfg.IsProduction())
	registry := draft.NewRegistry()
	sync := syncer.NewSyncer(client, cache, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessions,
		AuthHandler:      auth.NewHandler(logger, client),
		CatalogHandler:   catalog.NewHandler(logger, cache, client),
		ComposeHandler:   compose.NewHandler(logger, cache, registry, sync),
		DashboardHandler: dashboard.NewHandler(logger, cache, client),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr), slog.String("upstream", cfg.APIBaseURL))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
