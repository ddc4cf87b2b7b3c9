package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bikurim/procurement-backend/api/routes"
	"github.com/bikurim/procurement-backend/internal/assistant"
	"github.com/bikurim/procurement-backend/internal/bootstrap"
	"github.com/bikurim/procurement-backend/internal/categories"
	"github.com/bikurim/procurement-backend/internal/dashboard"
	"github.com/bikurim/procurement-backend/internal/discrepancies"
	"github.com/bikurim/procurement-backend/internal/forecast"
	"github.com/bikurim/procurement-backend/internal/inventory"
	"github.com/bikurim/procurement-backend/internal/pricing"
	"github.com/bikurim/procurement-backend/internal/products"
	"github.com/bikurim/procurement-backend/internal/receiving"
	"github.com/bikurim/procurement-backend/internal/shoppinglists"
	"github.com/bikurim/procurement-backend/internal/suppliers"
	"github.com/bikurim/procurement-backend/internal/users"
	"github.com/bikurim/procurement-backend/internal/warehouses"
	"github.com/bikurim/procurement-backend/pkg/config"
	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/gemini"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/metrics"
	"github.com/bikurim/procurement-backend/pkg/outbox"
	"github.com/bikurim/procurement-backend/pkg/redis"
)

func main() {
	rt, err := bootstrap.Start(context.Background(), "api")
	if err != nil {
		bootstrap.Exit("api", "startup failed", err)
	}
	cfg, logg := rt.Config, rt.Logger
	ctx, stop := rt.SignalContext()
	defer stop()

	// without redis the API still serves; idempotency replay and the AI
	// rate limit are off
	redisClient, err := rt.Redis(ctx, false)
	if err != nil {
		rt.Fail(ctx, "redis unavailable", err)
	}

	services, err := buildServices(cfg, logg, rt.DB, redisClient, rt.Registry)
	if err != nil {
		rt.Fail(ctx, "wire services", err)
	}

	server := &http.Server{
		Addr:              listenAddr(cfg.App.Port),
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(cfg, logg, routes.Infra{
			DB:             rt.DB,
			Redis:          redisClient,
			HTTPMetrics:    metrics.NewHTTPMetrics(rt.Registry),
			MetricsHandler: promhttp.HandlerFor(rt.Registry, promhttp.HandlerOpts{Registry: rt.Registry}),
		}, services),
	}
	ctx = logg.WithField(ctx, "addr", server.Addr)

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "api.listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			rt.Fail(ctx, "api server stopped", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "api.draining")
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
	_ = rt.Close()
}

// listenAddr honours PORT, which the hosting platform sets, over the
// configured port.
func listenAddr(configured string) string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":" + configured
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, registry prometheus.Registerer) (routes.Services, error) {
	conn := dbClient.DB()
	emitter := outbox.NewEmitter(outbox.NewRepository(conn), logg)

	categoryService, err := categories.NewService(categories.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	userService, err := users.NewService(users.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	pricingService, err := pricing.NewService(pricing.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	supplierService, err := suppliers.NewService(suppliers.NewRepository(conn), dbClient, logg)
	if err != nil {
		return routes.Services{}, err
	}
	productService, err := products.NewService(products.NewRepository(conn), pricingService)
	if err != nil {
		return routes.Services{}, err
	}
	warehouseService, err := warehouses.NewService(warehouses.NewRepository(conn), userService)
	if err != nil {
		return routes.Services{}, err
	}
	inventoryService, err := inventory.NewService(inventory.NewRepository(conn), dbClient, emitter, logg)
	if err != nil {
		return routes.Services{}, err
	}
	listService, err := shoppinglists.NewService(shoppinglists.NewRepository(conn), dbClient, pricingService, emitter, logg)
	if err != nil {
		return routes.Services{}, err
	}
	receivingService, err := receiving.NewService(receiving.NewRepository(conn), dbClient, emitter, logg)
	if err != nil {
		return routes.Services{}, err
	}
	discrepancyService, err := discrepancies.NewService(discrepancies.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	forecastService, err := forecast.NewService(forecast.NewRepository(conn), forecast.Options{
		DefaultDays:       cfg.Forecast.DefaultDays,
		RiskThresholdDays: cfg.Forecast.RiskThresholdDays,
	})
	if err != nil {
		return routes.Services{}, err
	}
	dashboardService, err := dashboard.NewService(dashboard.NewRepository(conn), forecastService, logg)
	if err != nil {
		return routes.Services{}, err
	}

	assistantService, err := buildAssistant(cfg, logg, redisClient, listService, registry)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Categories:    categoryService,
		Users:         userService,
		Suppliers:     supplierService,
		Products:      productService,
		Warehouses:    warehouseService,
		Inventory:     inventoryService,
		ShoppingLists: listService,
		Receiving:     receivingService,
		Discrepancies: discrepancyService,
		Dashboard:     dashboardService,
		Assistant:     assistantService,
	}, nil
}

// buildAssistant always returns a service; without an API key its calls
// answer with a dependency error instead of the routes disappearing.
func buildAssistant(cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, orders shoppinglists.Service, registry prometheus.Registerer) (*assistant.Service, error) {
	opts := assistant.Options{CommentaryTTL: cfg.Gemini.CommentaryTTL}

	var cache assistantCache
	if redisClient != nil {
		cache = redisClient
	}

	client, err := gemini.NewClient(cfg.Gemini, gemini.WithMetrics(metrics.NewAIMetrics(registry)))
	if err != nil {
		logg.Warn(logg.WithField(context.Background(), "reason", err.Error()), "gemini client disabled")
		return assistant.NewService(nil, cache, orders, opts, logg)
	}
	return assistant.NewService(client, cache, orders, opts, logg)
}

type assistantCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}
