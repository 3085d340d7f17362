package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andreshurtado/reparalo-backend/api/controllers"
	"github.com/andreshurtado/reparalo-backend/api/middleware"
	"github.com/andreshurtado/reparalo-backend/internal/catalog"
	"github.com/andreshurtado/reparalo-backend/internal/drawer"
	"github.com/andreshurtado/reparalo-backend/internal/payment"
	"github.com/andreshurtado/reparalo-backend/internal/settlement"
	"github.com/andreshurtado/reparalo-backend/internal/workorder"
	"github.com/andreshurtado/reparalo-backend/pkg/config"
	"github.com/andreshurtado/reparalo-backend/pkg/db"
	"github.com/andreshurtado/reparalo-backend/pkg/logger"
	"github.com/andreshurtado/reparalo-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redis.Pinger,
	registry *prometheus.Registry,
	catalogService catalog.Service,
	drawerService drawer.Service,
	workOrderService workorder.Service,
	settlementService settlement.Service,
	paymentValidator *payment.Validator,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogProducts(catalogService, logg))
			r.Get("/services", controllers.CatalogServices(catalogService, logg))
		})

		r.Route("/drawer", func(r chi.Router) {
			r.Get("/today", controllers.DrawerToday(drawerService, logg))
			r.Post("/open", controllers.DrawerOpen(drawerService, logg))
			r.Post("/{sessionId}/close", controllers.DrawerClose(drawerService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/quote", controllers.CheckoutQuote(catalogService, paymentValidator, cfg.Checkout, logg))
			r.Post("/settle", controllers.CheckoutSettle(settlementService, catalogService, paymentValidator, cfg.Checkout, logg))
		})

		r.Get("/sales/{saleId}", controllers.SaleDetail(settlementService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderId}", controllers.OrderDetail(workOrderService, logg))
			r.Get("/{orderId}/events", controllers.OrderEvents(workOrderService, logg))
		})
	})

	return r
}
