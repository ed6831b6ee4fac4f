package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abastecio/abastecio-backend/api/controllers"
	"github.com/abastecio/abastecio-backend/api/middleware"
	customersvc "github.com/abastecio/abastecio-backend/internal/customers"
	ledgersvc "github.com/abastecio/abastecio-backend/internal/ledger"
	ordersvc "github.com/abastecio/abastecio-backend/internal/orders"
	productsvc "github.com/abastecio/abastecio-backend/internal/products"
	"github.com/abastecio/abastecio-backend/pkg/config"
	"github.com/abastecio/abastecio-backend/pkg/logger"
	"github.com/abastecio/abastecio-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        controllers.Pinger
	Redis     *redis.Client
	Registry  *prometheus.Registry
	Products  productsvc.Service
	Customers customersvc.Service
	Orders    ordersvc.Service
	Ledger    ledgersvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	writePolicy := middleware.NewWriteRateLimitPolicy(
		"write",
		cfg.RateLimit.WriteWindow,
		cfg.RateLimit.WriteIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if deps.Redis != nil {
			r.Use(middleware.Idempotency(deps.Redis, logg))
			r.Use(middleware.WriteRateLimit(writePolicy, deps.Redis, logg))
		}

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Post("/", controllers.CreateProduct(deps.Products, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.Products, logg))
			r.Put("/{productID}", controllers.UpdateProduct(deps.Products, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(deps.Customers, logg))
			r.Post("/", controllers.CreateCustomer(deps.Customers, logg))
			r.Route("/{customerID}", func(r chi.Router) {
				r.Get("/", controllers.GetCustomerDetail(deps.Customers, logg))
				r.Put("/", controllers.UpdateCustomer(deps.Customers, logg))
				r.Get("/orders", controllers.ListCustomerOrders(deps.Orders, logg))
				r.Get("/ledger", controllers.ListCustomerLedger(deps.Ledger, logg))
				r.Post("/adjustments", controllers.AdjustCustomerDebt(deps.Ledger, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.RecordOrder(deps.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(deps.Orders, logg))
		})
	})

	return r
}
