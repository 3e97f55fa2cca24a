// Package main is the entry point for the gateway.
// It loads configuration, connects PostgreSQL, Redis and (optionally)
// RabbitMQ, wires the services and serves the HTTP API until signalled.
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

	"mpesagw/internal/config"
	"mpesagw/internal/handlers"
	"mpesagw/internal/logger"
	"mpesagw/internal/middleware"
	"mpesagw/internal/repositories"
	"mpesagw/internal/repositories/cache"
	"mpesagw/internal/routes"
	"mpesagw/internal/services/b2c"
	"mpesagw/internal/services/c2b"
	"mpesagw/internal/services/fetch"
	"mpesagw/internal/services/mpesa"
	"mpesagw/internal/services/notification"
	"mpesagw/internal/services/reconcile"
	"mpesagw/internal/services/stk"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()

	log, err := logger.New(config.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(log); err != nil {
		log.Error("application failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger) error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repositories.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Warn("failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("connected to database", zap.String("host", cfg.Database.Host))
	go logPoolStats(ctx, db, log)

	cacheService := cache.NewCacheService(cache.NewRedisClient(cfg.Redis))
	defer func() {
		if err := cacheService.Close(); err != nil {
			log.Warn("failed to close redis connection", zap.Error(err))
		}
	}()
	if err := cacheService.HealthCheck(ctx); err != nil {
		return err
	}

	publisher, closePublisher, err := newPublisher(cfg.AMQPURL, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	mpesaLog := logger.Mpesa(log)
	httpClient := &http.Client{Timeout: cfg.Mpesa.Timeout}
	tokens := mpesa.NewTokenSource(cfg.Mpesa.BaseURL, httpClient, cacheService, mpesaLog)
	provider := mpesa.NewClient(cfg.Mpesa.BaseURL, httpClient, tokens, mpesaLog)

	stkRepo := repositories.NewSTKPaymentRepository(db)
	b2cRepo := repositories.NewB2CTransactionRepository(db)
	c2bRepo := repositories.NewC2BConfirmationRepository(db)

	stkService := stk.NewService(provider, stkRepo, stk.Config{
		Credentials: mpesa.Credentials{ConsumerKey: cfg.Mpesa.ConsumerKey, ConsumerSecret: cfg.Mpesa.ConsumerSecret},
		Shortcode:   cfg.Mpesa.Shortcode,
		Passkey:     cfg.Mpesa.Passkey,
		CallbackURL: cfg.Mpesa.CallbackURL,
		CountryCode: cfg.CountryCode,
	}, mpesaLog)
	b2cService := b2c.NewService(provider, b2c.Config{
		Credentials:        mpesa.Credentials{ConsumerKey: cfg.B2C.ConsumerKey, ConsumerSecret: cfg.B2C.ConsumerSecret},
		Shortcode:          cfg.B2C.Shortcode,
		InitiatorName:      cfg.B2C.InitiatorName,
		SecurityCredential: cfg.B2C.SecurityCredential,
		ResultURL:          cfg.B2C.ResultURL,
		TimeoutURL:         cfg.B2C.TimeoutURL,
		CountryCode:        cfg.CountryCode,
	}, mpesaLog)
	c2bService := c2b.NewService(provider, mpesaLog)
	reconcileService := reconcile.NewService(stkRepo, b2cRepo, c2bRepo, publisher, cfg.CountryCode, mpesaLog)
	fetchService := fetch.NewService(stkRepo, c2bRepo, b2cRepo, cacheService, mpesaLog)

	auth := middleware.NewAuthMiddleware(cfg.JWTSecret, log)
	if !auth.Enabled() {
		log.Warn("API_JWT_SECRET is empty, merchant endpoints are unauthenticated")
	}

	app := fiber.New(fiber.Config{
		AppName:               "mpesa-gateway",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.Mpesa.Timeout + 5*time.Second,
		IdleTimeout:           120 * time.Second,
		BodyLimit:             1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,HEAD,OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Handlers{
		Auth:     auth,
		STK:      handlers.NewSTKHandler(stkService, log),
		B2C:      handlers.NewB2CHandler(b2cService, log),
		C2B:      handlers.NewC2BHandler(c2bService, log),
		Callback: handlers.NewCallbackHandler(reconcileService, mpesaLog),
		Fetch:    handlers.NewFetchHandler(fetchService, log),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": handlers.PingFunc(func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}),
			"redis": handlers.PingFunc(cacheService.HealthCheck),
		}),
	})

	errChan := make(chan error, 1)
	go func() {
		log.Info("gateway started", zap.String("port", cfg.Port), zap.String("mpesa_env", cfg.Mpesa.Environment))
		if err := app.Listen(":" + cfg.Port); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown gracefully: %w", err)
	}

	log.Info("gateway stopped gracefully")
	return nil
}

// newPublisher connects RabbitMQ when configured and falls back to logging.
func newPublisher(amqpURL string, log *zap.Logger) (notification.Publisher, func(), error) {
	if amqpURL == "" {
		log.Info("AMQP_URL not set, payment events are only logged")
		return notification.NewLogPublisher(log), func() {}, nil
	}

	publisher, err := notification.NewRabbitPublisher(amqpURL)
	if err != nil {
		return nil, nil, errors.New("failed to connect to rabbitmq: " + err.Error())
	}
	return publisher, publisher.Close, nil
}

func logPoolStats(ctx context.Context, db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := sqlDB.Stats()
			log.Debug("db pool stats",
				zap.Int("open", stats.OpenConnections),
				zap.Int("idle", stats.Idle),
				zap.Int("in_use", stats.InUse),
				zap.Int64("wait_count", stats.WaitCount),
				zap.Duration("wait_duration", stats.WaitDuration))
		}
	}
}
