package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quintero-labs/shopcore-backend/api/routes"
	"github.com/quintero-labs/shopcore-backend/internal/attributes"
	"github.com/quintero-labs/shopcore-backend/internal/cart"
	"github.com/quintero-labs/shopcore-backend/internal/customers"
	"github.com/quintero-labs/shopcore-backend/internal/products"
	"github.com/quintero-labs/shopcore-backend/internal/validation"
	"github.com/quintero-labs/shopcore-backend/pkg/cache"
	"github.com/quintero-labs/shopcore-backend/pkg/config"
	"github.com/quintero-labs/shopcore-backend/pkg/db"
	"github.com/quintero-labs/shopcore-backend/pkg/logger"
	"github.com/quintero-labs/shopcore-backend/pkg/metrics"
	"github.com/quintero-labs/shopcore-backend/pkg/migrate"
	"github.com/quintero-labs/shopcore-backend/pkg/pubsub"
	"github.com/quintero-labs/shopcore-backend/pkg/redis"
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

	var events cart.EventPublisher
	if cfg.Eventing.Enabled {
		publisher, err := pubsub.NewPublisher(context.Background(), cfg.Eventing, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		events = publisher
	}

	productRepo := products.NewRepository(dbClient.DB())
	customerRepo := customers.NewRepository(dbClient.DB())
	itemRepo := cart.NewItemRepository(dbClient.DB())

	materializer, err := attributes.NewMaterializer(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create attribute materializer", err)
		os.Exit(1)
	}

	cartCache, err := cache.NewRedisCache(redisClient, cfg.Cart.CacheTTL, func() any {
		return &[]cart.OrganizedItem{}
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart cache", err)
		os.Exit(1)
	}

	cartMetrics := metrics.NewCartMetrics(prometheus.DefaultRegisterer)

	cartService, err := cart.NewService(cart.Deps{
		Items:        itemRepo,
		Catalog:      productRepo,
		Customers:    customerRepo,
		Validator:    validation.NewCartValidator(cfg.Cart),
		Materializer: materializer,
		Organizer:    cart.NewOrganizer(materializer, logg, cartMetrics),
		Cache:        cartCache,
		Events:       events,
		Logger:       logg,
		Metrics:      cartMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, cartService, customerRepo, productRepo),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
