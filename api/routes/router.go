package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bikurim/procurement-backend/api/controllers"
	listcontrollers "github.com/bikurim/procurement-backend/api/controllers/shoppinglists"
	"github.com/bikurim/procurement-backend/api/middleware"
	"github.com/bikurim/procurement-backend/internal/assistant"
	"github.com/bikurim/procurement-backend/internal/categories"
	"github.com/bikurim/procurement-backend/internal/dashboard"
	"github.com/bikurim/procurement-backend/internal/discrepancies"
	"github.com/bikurim/procurement-backend/internal/inventory"
	"github.com/bikurim/procurement-backend/internal/products"
	"github.com/bikurim/procurement-backend/internal/receiving"
	"github.com/bikurim/procurement-backend/internal/shoppinglists"
	"github.com/bikurim/procurement-backend/internal/suppliers"
	"github.com/bikurim/procurement-backend/internal/users"
	"github.com/bikurim/procurement-backend/internal/warehouses"
	"github.com/bikurim/procurement-backend/pkg/config"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/metrics"
	"github.com/bikurim/procurement-backend/pkg/redis"
)

// Infra carries the shared clients the router needs. Nil fields disable the
// features built on them.
type Infra struct {
	DB             controllers.Pinger
	Redis          *redis.Client
	PubSub         controllers.Pinger
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

type Services struct {
	Categories    categories.Service
	Users         users.Service
	Suppliers     suppliers.Service
	Products      products.Service
	Warehouses    warehouses.Service
	Inventory     inventory.Service
	ShoppingLists shoppinglists.Service
	Receiving     receiving.Service
	Discrepancies discrepancies.Service
	Dashboard     dashboard.Service
	Assistant     *assistant.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()

	// typed nils must not leak into the middleware interfaces
	var (
		idempotencyStore middleware.IdempotencyStore
		rateStore        middleware.RateLimiter
	)
	if infra.Redis != nil {
		idempotencyStore = infra.Redis
		rateStore = infra.Redis
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Logging(logg),
	)
	if infra.HTTPMetrics != nil {
		r.Use(middleware.Metrics(infra.HTTPMetrics))
	}

	readiness := readinessChecks(infra)
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, readiness))
	})
	if infra.MetricsHandler != nil {
		r.Handle("/metrics", infra.MetricsHandler)
	}

	idempotent := middleware.Idempotency(idempotencyStore, logg, middleware.IdempotencyPolicy{TTL: 24 * time.Hour})
	receiptKey := middleware.Idempotency(idempotencyStore, logg, middleware.IdempotencyPolicy{TTL: 7 * 24 * time.Hour, RequireKey: true})
	aiPolicy := middleware.NewRateLimitPolicy("ai", cfg.RateLimit.AIWindow, cfg.RateLimit.AILimit)
	var (
		scanner     controllers.DeliveryNoteScanner
		commentator controllers.ForecastCommentator
		drafter     controllers.SupplierEmailDrafter
	)
	if svc.Assistant != nil {
		scanner, commentator, drafter = svc.Assistant, svc.Assistant, svc.Assistant
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.MaxBodyBytes(cfg.App.MaxBodyBytes))

		r.Get("/health", controllers.HealthReady(cfg.App.Env, logg, readiness))
		r.Get("/categories", controllers.CategoryList(svc.Categories, logg))
		r.Get("/users", controllers.UserList(svc.Users, logg))

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.SupplierList(svc.Suppliers, logg))
			r.Post("/", controllers.SupplierCreate(svc.Suppliers, logg))
			r.Route("/{supplierId}", func(r chi.Router) {
				r.Get("/", controllers.SupplierGet(svc.Suppliers, logg))
				r.Patch("/", controllers.SupplierUpdate(svc.Suppliers, logg))
				r.Delete("/", controllers.SupplierDelete(svc.Suppliers, logg))
				r.Post("/products", controllers.SupplierUpsertPrice(svc.Suppliers, logg))
				r.Delete("/products/{productId}", controllers.SupplierDeletePrice(svc.Suppliers, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svc.Products, logg))
			r.Post("/", controllers.ProductCreate(svc.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(svc.Products, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(svc.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(svc.Products, logg))
		})

		r.Route("/shopping-lists", func(r chi.Router) {
			r.Get("/", listcontrollers.List(svc.ShoppingLists, logg))
			r.Post("/", listcontrollers.Create(svc.ShoppingLists, logg))
			r.Route("/{listId}", func(r chi.Router) {
				r.Get("/", listcontrollers.Get(svc.ShoppingLists, logg))
				r.Patch("/", listcontrollers.Update(svc.ShoppingLists, logg))
				r.Delete("/", listcontrollers.Delete(svc.ShoppingLists, logg))
				r.With(idempotent).Post("/duplicate", listcontrollers.Duplicate(svc.ShoppingLists, logg))
				r.Get("/suppliers-for-product/{productId}", listcontrollers.SuppliersForProduct(svc.ShoppingLists, logg))
				r.Get("/by-supplier", listcontrollers.BySupplier(svc.ShoppingLists, logg))
				r.Get("/items", listcontrollers.ListItems(svc.ShoppingLists, logg))
				r.With(idempotent).Post("/items", listcontrollers.AddItem(svc.ShoppingLists, logg))
				r.Patch("/items/{itemId}", listcontrollers.UpdateItem(svc.ShoppingLists, logg))
				r.Delete("/items/{itemId}", listcontrollers.RemoveItem(svc.ShoppingLists, logg))
				r.With(middleware.RateLimit(aiPolicy, rateStore, logg)).
					Post("/email-drafts", controllers.SupplierEmailDrafts(drafter, logg))
			})
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.WarehouseList(svc.Warehouses, logg))
			r.Post("/", controllers.WarehouseCreate(svc.Warehouses, logg))
			r.Get("/alerts", controllers.LowStockAlerts(svc.Inventory, logg))
			r.Route("/{warehouseId}", func(r chi.Router) {
				r.Get("/", controllers.WarehouseGet(svc.Warehouses, logg))
				r.Patch("/", controllers.WarehouseUpdate(svc.Warehouses, logg))
				r.Delete("/", controllers.WarehouseDelete(svc.Warehouses, logg))
				r.Get("/inventory", controllers.WarehouseInventory(svc.Inventory, logg))
				r.Patch("/inventory/{productId}", controllers.WarehouseSetMinQuantity(svc.Inventory, logg))
				r.Get("/movements", controllers.WarehouseMovements(svc.Inventory, logg))
				r.With(idempotent).Post("/movements", controllers.WarehouseRecordMovement(svc.Inventory, logg))
				r.Get("/alerts", controllers.WarehouseAlerts(svc.Inventory, logg))
				r.Get("/expected-deliveries", controllers.WarehouseExpectedDeliveries(svc.Warehouses, logg))
				r.With(receiptKey).Post("/receipts", controllers.WarehouseReceipt(svc.Receiving, logg))
			})
		})

		r.Route("/receipt-discrepancy-alerts", func(r chi.Router) {
			r.Get("/", controllers.DiscrepancyAlertList(svc.Discrepancies, logg))
			r.Patch("/{alertId}/read", controllers.DiscrepancyAlertMarkRead(svc.Discrepancies, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", controllers.DashboardOverview(svc.Dashboard, logg))
			r.Get("/kpis", controllers.DashboardKPIs(svc.Dashboard, logg))
			r.Get("/inventory", controllers.DashboardInventory(svc.Dashboard, logg))
			r.Get("/alerts", controllers.DashboardAlerts(svc.Dashboard, logg))
			r.Get("/forecast", controllers.DashboardForecast(svc.Dashboard, logg))
			r.With(middleware.RateLimit(aiPolicy, rateStore, logg)).
				Post("/forecast/gemini", controllers.ForecastCommentary(commentator, logg))
		})

		r.With(middleware.RateLimit(aiPolicy, rateStore, logg)).
			Post("/scan-delivery-note", controllers.ScanDeliveryNote(scanner, logg))
	})

	return r
}

func readinessChecks(infra Infra) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if infra.DB != nil {
		checks["postgres"] = infra.DB
	}
	if infra.Redis != nil {
		checks["redis"] = infra.Redis
	}
	if infra.PubSub != nil {
		checks["pubsub"] = infra.PubSub
	}
	return checks
}
