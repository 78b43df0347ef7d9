package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quintero-labs/shopcore-backend/api/controllers"
	cartcontrollers "github.com/quintero-labs/shopcore-backend/api/controllers/cart"
	"github.com/quintero-labs/shopcore-backend/api/middleware"
	cartsvc "github.com/quintero-labs/shopcore-backend/internal/cart"
	"github.com/quintero-labs/shopcore-backend/pkg/config"
	"github.com/quintero-labs/shopcore-backend/pkg/db"
	"github.com/quintero-labs/shopcore-backend/pkg/logger"
	"github.com/quintero-labs/shopcore-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	cartService cartsvc.Service,
	customers cartcontrollers.CustomerLoader,
	products cartcontrollers.ProductLoader,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/", cartcontrollers.Fetch(cartService, customers, logg))
		r.Get("/count", cartcontrollers.Count(cartService, customers, logg))
		r.Post("/items", cartcontrollers.AddItem(cartService, customers, products, logg))
		r.Patch("/items/{itemID}", cartcontrollers.UpdateQuantity(cartService, customers, logg))
		r.Delete("/items/{itemID}", cartcontrollers.DeleteItem(cartService, customers, logg))
		r.Delete("/", cartcontrollers.Clear(cartService, customers, logg))
		r.Post("/migrate", cartcontrollers.Migrate(cartService, customers, logg))
	})

	return r
}
