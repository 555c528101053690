package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wholesail/wholesail-backend/api/routes"
	"github.com/wholesail/wholesail-backend/internal/alerts"
	"github.com/wholesail/wholesail-backend/internal/customers"
	"github.com/wholesail/wholesail-backend/internal/inventory"
	"github.com/wholesail/wholesail-backend/internal/ordernumber"
	"github.com/wholesail/wholesail-backend/internal/orders"
	"github.com/wholesail/wholesail-backend/pkg/config"
	"github.com/wholesail/wholesail-backend/pkg/db"
	"github.com/wholesail/wholesail-backend/pkg/fees"
	"github.com/wholesail/wholesail-backend/pkg/logger"
	"github.com/wholesail/wholesail-backend/pkg/metrics"
	"github.com/wholesail/wholesail-backend/pkg/migrate"
	"github.com/wholesail/wholesail-backend/pkg/outbox"
	"github.com/wholesail/wholesail-backend/pkg/redis"
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

	promRegistry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(promRegistry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	alertsEngine := alerts.NewEngine(alerts.NewRepository(dbClient.DB()), outboxService, logg, orderMetrics)
	allocator := ordernumber.NewAllocator(ordernumber.NewRepository(dbClient.DB()))
	feeCalc := fees.NewCalculatorFromConfig(int64(cfg.Fees.PercentBps), cfg.Fees.Fixed)

	customersService, err := customers.NewService(customers.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create customers service", err)
		os.Exit(1)
	}

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, alertsEngine, outboxService, logg, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		inventoryRepo,
		allocator,
		alertsEngine,
		customersService,
		feeCalc,
		dbClient,
		outboxService,
		logg,
		orderMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

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
			promRegistry,
			ordersService,
			inventoryService,
			customersService,
			alertsEngine,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
