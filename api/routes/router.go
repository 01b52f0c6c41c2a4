package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenmile-app/greenmile-backend/api/controllers"
	"github.com/greenmile-app/greenmile-backend/api/middleware"
	"github.com/greenmile-app/greenmile-backend/internal/orders"
	"github.com/greenmile-app/greenmile-backend/internal/promotions"
	"github.com/greenmile-app/greenmile-backend/pkg/config"
	"github.com/greenmile-app/greenmile-backend/pkg/logger"
)

// NewRouter wires the HTTP surface: health probes, the Prometheus scrape
// endpoint, the public promotion catalog, and the per-user cart routes.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP, redisP controllers.Pinger,
	registry *prometheus.Registry,
	catalog promotions.Catalog,
	ordersSvc orders.Service,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/locations/{locationID}/promotions", controllers.PromotionsForLocation(catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(ordersSvc, logg))
				r.Post("/items", controllers.CartAddLineItem(ordersSvc, logg))
				r.Delete("/items/{lineItemID}", controllers.CartRemoveLineItem(ordersSvc, logg))
				r.Put("/items/{lineItemID}/quantity", controllers.CartSetQuantity(ordersSvc, logg))
				r.Put("/fulfillment", controllers.CartSetFulfillment(ordersSvc, logg))
				r.Post("/coupons", controllers.CartAddCoupon(ordersSvc, logg))
				r.Delete("/coupons/{promotionID}", controllers.CartRemoveCoupon(ordersSvc, logg))
				r.Post("/submit", controllers.CartSubmit(ordersSvc, logg))
				r.Post("/cancel", controllers.CartCancel(ordersSvc, logg))
			})
		})
	})

	return r
}
