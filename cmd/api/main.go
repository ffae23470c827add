package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/impulsa-app/impulsa-backend/api"
	"github.com/impulsa-app/impulsa-backend/api/routes"
	"github.com/impulsa-app/impulsa-backend/internal/documents"
	"github.com/impulsa-app/impulsa-backend/internal/donations"
	"github.com/impulsa-app/impulsa-backend/internal/favorites"
	"github.com/impulsa-app/impulsa-backend/internal/payments"
	"github.com/impulsa-app/impulsa-backend/internal/projects"
	gatewaywebhook "github.com/impulsa-app/impulsa-backend/internal/webhooks/gateway"
	"github.com/impulsa-app/impulsa-backend/pkg/config"
	"github.com/impulsa-app/impulsa-backend/pkg/db"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
	"github.com/impulsa-app/impulsa-backend/pkg/metrics"
	"github.com/impulsa-app/impulsa-backend/pkg/migrate"
	"github.com/impulsa-app/impulsa-backend/pkg/qrcode"
	"github.com/impulsa-app/impulsa-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	projectsService, err := projects.NewService(projects.ServiceParams{
		Repo:      projects.NewRepository(dbClient.DB()),
		Tx:        dbClient,
		Documents: documents.NewStore(dbClient.DB()),
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create projects service", err)
		os.Exit(1)
	}

	donationsService, err := donations.NewService(donations.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create donations service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:     payments.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		QR:       qrcode.NewRenderer(cfg.QR),
		Logger:   logg,
		Metrics:  settlementMetrics,
		Provider: cfg.Gateway.Provider,
		Currency: enums.CurrencyPEN,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	favoritesService, err := favorites.NewService(favorites.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create favorites service", err)
		os.Exit(1)
	}

	gatewayGuard, err := gatewaywebhook.NewIdempotencyGuard(redisClient, cfg.Gateway.IdempotencyTTL, cfg.Gateway.Provider)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	gatewayService, err := gatewaywebhook.NewService(gatewaywebhook.ServiceParams{
		Repo:       gatewaywebhook.NewRepository(dbClient.DB()),
		Settlement: paymentsService,
		Guard:      gatewayGuard,
		Logger:     logg,
		Metrics:    settlementMetrics,
		Source:     cfg.Gateway.Provider,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		registry,
		projectsService,
		donationsService,
		paymentsService,
		favoritesService,
		gatewayService,
	)

	server := api.NewServer(cfg, handler)
	if port := os.Getenv("PORT"); port != "" {
		server.Addr = ":" + port
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(ctx, "starting api server")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
