package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andreshurtado/reparalo-backend/api/routes"
	"github.com/andreshurtado/reparalo-backend/internal/catalog"
	"github.com/andreshurtado/reparalo-backend/internal/drawer"
	"github.com/andreshurtado/reparalo-backend/internal/ledger"
	"github.com/andreshurtado/reparalo-backend/internal/loyalty"
	"github.com/andreshurtado/reparalo-backend/internal/payment"
	"github.com/andreshurtado/reparalo-backend/internal/settlement"
	"github.com/andreshurtado/reparalo-backend/internal/workorder"
	"github.com/andreshurtado/reparalo-backend/pkg/config"
	"github.com/andreshurtado/reparalo-backend/pkg/db"
	"github.com/andreshurtado/reparalo-backend/pkg/logger"
	"github.com/andreshurtado/reparalo-backend/pkg/metrics"
	"github.com/andreshurtado/reparalo-backend/pkg/migrate"
	"github.com/andreshurtado/reparalo-backend/pkg/outbox"
	"github.com/andreshurtado/reparalo-backend/pkg/redis"
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
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	publisher := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	drawerService, err := drawer.NewService(dbClient, drawer.NewRepository(dbClient.DB()), publisher)
	if err != nil {
		logg.Error(context.Background(), "failed to create drawer service", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	loyaltyService, err := loyalty.NewService(loyalty.NewRepository(dbClient.DB()), publisher)
	if err != nil {
		logg.Error(context.Background(), "failed to create loyalty service", err)
		os.Exit(1)
	}

	workOrderService, err := workorder.NewService(workorder.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create work order service", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(
		dbClient,
		settlement.NewRepository(dbClient.DB()),
		drawerService,
		catalogRepo,
		ledgerService,
		loyaltyService,
		workOrderService,
		publisher,
		redisClient,
		checkoutMetrics,
		logg,
		cfg.Checkout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	paymentValidator := payment.NewValidator(cfg.Checkout)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			catalogService,
			drawerService,
			workOrderService,
			settlementService,
			paymentValidator,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
