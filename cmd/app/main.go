package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wa-cart/internal/analytics"
	"wa-cart/internal/cache"
	"wa-cart/internal/cart"
	"wa-cart/internal/config"
	"wa-cart/internal/httpserver"
	"wa-cart/internal/intent"
	"wa-cart/internal/logging"
	"wa-cart/internal/metrics"
	"wa-cart/internal/order"
	"wa-cart/internal/repo"
	"wa-cart/internal/settings"
	"wa-cart/internal/wa"
	"wa-cart/migrations"

	"github.com/joho/godotenv"
)

const nonceLifetime = 24 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.AppEnv)
	logger.Info("starting wa-cart", "env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	var repository repo.Repository
	if cfg.DatabaseURL != "" {
		repository, err = repo.New(ctx, cfg.DatabaseURL, cfg.DatabaseSchema, logger)
	} else {
		repository, err = repo.NewSQLite(ctx, cfg.SQLitePath, logger)
	}
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer repository.Close()

	if err := repository.RunMigrations(ctx, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrated")

	redisClient := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		UseTLS:   cfg.RedisTLS,
	}, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("failed closing redis", "error", err)
		}
	}()
	if err := redisClient.Ping(ctx); err != nil {
		logger.Warn("redis ping failed", "error", err)
	}

	settingsService := settings.NewService(repository, redisClient, cfg.SettingsTTL, logger)
	if err := settingsService.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	cartStore := cart.NewStore(redisClient, repository, cfg.CartTTL, logger)
	orderService := order.NewService(repository, logger)
	recorder := analytics.NewRecorder(repository, logger, metricRegistry)
	nonces := intent.NewNonceIssuer(cfg.NonceSecret, nonceLifetime)

	var notifier intent.Notifier
	if cfg.WhatsAppStorePath != "" {
		waNotifier, err := wa.NewNotifier(ctx, wa.Config{
			StorePath:   cfg.WhatsAppStorePath,
			LogLevel:    cfg.WhatsAppLogLevel,
			OperatorJID: cfg.WhatsAppOperatorJID,
			Metrics:     metricRegistry,
		}, logger)
		if err != nil {
			return fmt.Errorf("init whatsapp notifier: %w", err)
		}
		defer waNotifier.Close()

		go func() {
			if err := waNotifier.Start(ctx); err != nil {
				logger.Error("whatsapp notifier stopped", "error", err)
			}
		}()
		notifier = waNotifier
	}

	processor := intent.NewProcessor(settingsService, cartStore, orderService, repository, recorder, notifier, nonces, logger, metricRegistry)

	httpSrv := httpserver.New(cfg.HTTPListenAddr, logger, metricRegistry, httpserver.Dependencies{
		Processor: processor,
		Nonces:    nonces,
		Carts:     cartStore,
		Settings:  settingsService,
		Analytics: recorder,
	}, cfg.PublicBasePath)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	return nil
}
