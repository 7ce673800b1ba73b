package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storefront/backend/api/controllers"
	"github.com/storefront/backend/api/middleware"
	authsvc "github.com/storefront/backend/internal/auth"
	"github.com/storefront/backend/internal/cart"
	"github.com/storefront/backend/internal/catalog"
	"github.com/storefront/backend/internal/customers"
	"github.com/storefront/backend/internal/orders"
	"github.com/storefront/backend/internal/reviews"
	"github.com/storefront/backend/internal/tags"
	"github.com/storefront/backend/pkg/auth/session"
	"github.com/storefront/backend/pkg/config"
	"github.com/storefront/backend/pkg/logger"
	"github.com/storefront/backend/pkg/metrics"
)

// ViewHistoryPermission gates access to another customer's order history.
const ViewHistoryPermission = "customers:view_history"

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the router mounts.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       pinger
	RedisPinger    pinger
	SessionManager sessionManager
	HTTPMetrics    *metrics.HTTPMetrics

	AuthService     authsvc.Service
	CatalogService  catalog.Service
	CartService     cart.Service
	OrderService    orders.Service
	CustomerService customers.Service
	ReviewService   reviews.Service
	TagService      tags.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}
	r.Use(middleware.CORS(cfg.App.CORSOrigins))

	if deps.HTTPMetrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.HTTPMetrics.Handler())
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DBPinger, deps.RedisPinger, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))
	})

	requireAuth := middleware.Auth(cfg.JWT, deps.SessionManager, logg)
	requireStaff := middleware.RequireStaff(logg)

	r.Route("/api/v1", func(r chi.Router) {
		// catalog reads and reviews stay open to anonymous clients
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.CatalogService, logg))
			r.Get("/{id}", controllers.GetProduct(deps.CatalogService, logg))

			r.Route("/{product_id}/reviews", func(r chi.Router) {
				r.Get("/", controllers.ListProductReviews(deps.ReviewService, logg))
				r.Post("/", controllers.CreateProductReview(deps.ReviewService, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireStaff)
				r.Post("/", controllers.CreateProduct(deps.CatalogService, logg))
				r.Put("/{id}", controllers.UpdateProduct(deps.CatalogService, logg))
				r.Delete("/{id}", controllers.DeleteProduct(deps.CatalogService, logg))
			})
		})

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", controllers.ListCollections(deps.CatalogService, logg))
			r.Get("/{id}", controllers.GetCollection(deps.CatalogService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireStaff)
				r.Post("/", controllers.CreateCollection(deps.CatalogService, logg))
				r.Put("/{id}", controllers.UpdateCollection(deps.CatalogService, logg))
				r.Delete("/{id}", controllers.DeleteCollection(deps.CatalogService, logg))
			})
		})

		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", controllers.ListPromotions(deps.CatalogService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireStaff)
				r.Post("/", controllers.CreatePromotion(deps.CatalogService, logg))
				r.Delete("/{id}", controllers.DeletePromotion(deps.CatalogService, logg))
			})
		})

		// carts are anonymous by design; the id is the only credential
		r.Route("/carts", func(r chi.Router) {
			r.Post("/", controllers.CreateCart(deps.CartService, logg))
			r.Get("/{id}", controllers.GetCart(deps.CartService, logg))
			r.Delete("/{id}", controllers.DeleteCart(deps.CartService, logg))

			r.Route("/{cart_id}/items", func(r chi.Router) {
				r.Get("/", controllers.ListCartItems(deps.CartService, logg))
				r.Post("/", controllers.AddCartItem(deps.CartService, logg))
				r.Patch("/{item_id}", controllers.UpdateCartItem(deps.CartService, logg))
				r.Delete("/{item_id}", controllers.RemoveCartItem(deps.CartService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.ListOrders(deps.OrderService, logg))
			r.Post("/", controllers.PlaceOrder(deps.OrderService, logg))
			r.Get("/{id}", controllers.GetOrder(deps.OrderService, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", controllers.GetMe(deps.CustomerService, logg))
			r.Put("/me", controllers.UpdateMe(deps.CustomerService, logg))
			r.Get("/me/addresses", controllers.ListAddresses(deps.CustomerService, logg))
			r.Post("/me/addresses", controllers.AddAddress(deps.CustomerService, logg))

			r.With(middleware.RequirePermission(ViewHistoryPermission, logg)).
				Get("/{id}/history", controllers.GetCustomerHistory(deps.OrderService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireStaff)
				r.Get("/", controllers.ListCustomers(deps.CustomerService, logg))
				r.Get("/{id}", controllers.GetCustomer(deps.CustomerService, logg))
				r.Put("/{id}/membership", controllers.SetCustomerMembership(deps.CustomerService, logg))
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", controllers.ListTags(deps.TagService, logg))
			r.Get("/{kind}/{entity_id}", controllers.ListEntityTags(deps.TagService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireStaff)
				r.Post("/{kind}/{entity_id}", controllers.AttachTag(deps.TagService, logg))
				r.Delete("/{kind}/{entity_id}", controllers.DetachTag(deps.TagService, logg))
			})
		})
	})

	return r
}
