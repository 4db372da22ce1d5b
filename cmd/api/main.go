package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fotf/subscription-system/internal/api"
	"github.com/fotf/subscription-system/internal/core/service"
	"github.com/fotf/subscription-system/internal/infrastructure/config"
	mongodb "github.com/fotf/subscription-system/internal/infrastructure/db/mongo"
	redisdb "github.com/fotf/subscription-system/internal/infrastructure/db/redis"
	"github.com/fotf/subscription-system/internal/infrastructure/worker"
	"github.com/fotf/subscription-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        Subscription API
// @version      1.0
// @description  Subscription-commerce backend: authentication, catalog, and subscription management.
// @BasePath     /api
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet; write the failure directly and bail.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index setup failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Repositories and services ---
	accountRepo := mongodb.NewAccountRepository(db)
	productRepo := mongodb.NewProductRepository(db)
	subscriptionRepo := mongodb.NewSubscriptionRepository(db)

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(accountRepo, tokenService, log)
	productService := service.NewProductService(productRepo, redisdb.NewCatalogCache(rdb), log)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, productRepo, log)

	// Best-effort: a failure here is logged inside and must not stop startup.
	_ = service.EnsureBootstrapAdmin(ctx, accountRepo, log)

	expirer := worker.NewExpirer(subscriptionService, cfg.ExpirerInterval, log)
	expirer.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		Accounts:      accountRepo,
		Auth:          authService,
		Tokens:        tokenService,
		Products:      productService,
		Subscriptions: subscriptionService,
		Mongo:         db,
		Redis:         rdb,
		Logger:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
