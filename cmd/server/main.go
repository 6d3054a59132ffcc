package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/crud_template/internal/auth"
	"github.com/Skotchmaster/crud_template/internal/cache"
	"github.com/Skotchmaster/crud_template/internal/config"
	"github.com/Skotchmaster/crud_template/internal/db"
	"github.com/Skotchmaster/crud_template/internal/events"
	"github.com/Skotchmaster/crud_template/internal/httpserver"
	"github.com/Skotchmaster/crud_template/internal/logging"
	authmw "github.com/Skotchmaster/crud_template/internal/middleware/auth"
	"github.com/Skotchmaster/crud_template/internal/search"
	"github.com/Skotchmaster/crud_template/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	ctx := logging.IntoContext(context.Background(), logger)

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_open_failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx, gdb); err != nil {
		logger.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenManager(cfg.AppSecret, cfg.AccessTTL, cfg.RefreshTTL)
	authSvc := auth.NewService(auth.NewPasswordHasher(cfg.AppSecret, auth.DefaultArgon2Params), tokens)

	publisher := events.New(cfg.KafkaBrokers, events.DefaultTopic)
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("events_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	users := &httpserver.UserHTTP{Auth: authSvc, Events: publisher}

	if cfg.ESURL != "" {
		es, err := search.NewClient(ctx, search.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword}, logger)
		if err != nil {
			logger.Error("search_init_failed", "error", err)
			os.Exit(1)
		}
		idx := search.NewIndex(es, cfg.ESIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.Error("search_index_failed", "index", cfg.ESIndex, "error", err)
			os.Exit(1)
		}
		users.Index = idx
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("cache_disabled", "reason", "redis unreachable", "error", err)
		} else {
			users.Cache = cache.NewViewCache[transport.UserRead](rdb, "user", cfg.CacheTTL)
		}
	}

	e := httpserver.New(httpserver.Options{
		Logger:      logger,
		DB:          gdb,
		CORSOrigins: cfg.CORSAllowOrigins,
		GzipLevel:   cfg.GzipLevel,
	}, &httpserver.Deps{
		Prefix:      cfg.APIPrefix,
		UserHandler: users,
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc, Events: publisher},
		TokenAuth:   authmw.New(tokens),
		Ready: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis_close_failed", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_failed", "error", err)
	}

	logger.Info("shutdown_complete")
}
