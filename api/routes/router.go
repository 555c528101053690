package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wholesail/wholesail-backend/api/controllers"
	"github.com/wholesail/wholesail-backend/api/middleware"
	"github.com/wholesail/wholesail-backend/internal/alerts"
	"github.com/wholesail/wholesail-backend/internal/customers"
	"github.com/wholesail/wholesail-backend/internal/inventory"
	"github.com/wholesail/wholesail-backend/internal/orders"
	"github.com/wholesail/wholesail-backend/pkg/config"
	"github.com/wholesail/wholesail-backend/pkg/logger"
	pkgredis "github.com/wholesail/wholesail-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *pkgredis.Client,
	promRegistry *prometheus.Registry,
	ordersService orders.Service,
	inventoryService inventory.Service,
	customersService customers.Service,
	alertsEngine *alerts.Engine,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisClient,
		}))
	})
	r.Get("/healthz", controllers.HealthLive(cfg))

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.TenantContext(logg),
			middleware.Idempotency(redisClient, logg),
		)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Get("/{orderID}", controllers.OrderDetail(ordersService, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/resolve", controllers.ResolveCustomer(customersService, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Post("/movements", controllers.RecordStockMovement(inventoryService, logg))
			r.Get("/movements", controllers.ListStockMovements(inventoryService, logg))

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", controllers.ListStockAlerts(alertsEngine, logg))
				r.Post("/{alertID}/resolve", controllers.ResolveStockAlert(alertsEngine, logg))
				r.Post("/{alertID}/read", controllers.ReadStockAlert(alertsEngine, logg))
			})
		})
	})

	return r
}
