package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nearbuyhq/nearbuy-backend/api/controllers"
	"github.com/nearbuyhq/nearbuy-backend/api/middleware"
	"github.com/nearbuyhq/nearbuy-backend/internal/auth"
	"github.com/nearbuyhq/nearbuy-backend/internal/inventory"
	"github.com/nearbuyhq/nearbuy-backend/internal/items"
	"github.com/nearbuyhq/nearbuy-backend/internal/search"
	"github.com/nearbuyhq/nearbuy-backend/internal/shops"
	"github.com/nearbuyhq/nearbuy-backend/pkg/config"
	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/metrics"
	"github.com/nearbuyhq/nearbuy-backend/pkg/redis"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         *redis.Client
	Authenticator *auth.Authenticator
	AuthService   *auth.Service
	Shops         *shops.Service
	Items         *items.Service
	Inventory     *inventory.Service
	Search        *search.Client
}

// NewRouter assembles the HTTP surface: public catalog reads, session-gated
// vendor mutations, and the auth endpoints.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger
	session := cfg.Session

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		metrics.Middleware,
	)

	vendorOnly := middleware.RequireRoles(d.Authenticator, session.CookieName, logg,
		enums.RoleVendor, enums.RoleAdmin, enums.RoleSuperAdmin)
	anySession := middleware.RequireRoles(d.Authenticator, session.CookieName, logg)

	// Rate limiting needs the shared counter store; without one the auth
	// endpoints run unthrottled (local dev, tests).
	throttle := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if d.Redis == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, d.Redis, logg)
	}
	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	readiness := map[string]controllers.Pinger{"database": d.DB}
	if d.Redis != nil {
		readiness["redis"] = d.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(throttle(signupPolicy)).
			Post("/signup", controllers.SignupUser(d.AuthService, session, logg))
		r.With(throttle(signupPolicy)).
			Post("/signup/vendor", controllers.SignupVendor(d.AuthService, session, logg))
		r.With(throttle(signupPolicy)).
			Post("/signup/contributor", controllers.SignupContributor(d.AuthService, session, logg))
		r.With(throttle(loginPolicy)).
			Post("/login", controllers.Login(d.AuthService, session, logg))
		r.Post("/logout", controllers.Logout(d.AuthService, session, logg))
		r.Get("/status", controllers.Status(d.AuthService, session, logg))
	})

	r.Route("/api/v1/shops", func(r chi.Router) {
		r.Get("/{shopID}", controllers.ShopGet(d.Shops, logg))
		r.Get("/{shopID}/items", controllers.ItemListByShop(d.Items, logg))
		r.Get("/{shopID}/inventory", controllers.InventoryListByShop(d.Inventory, logg))
		r.Get("/{shopID}/inventory/{itemID}", controllers.InventoryGet(d.Inventory, logg))

		r.Group(func(r chi.Router) {
			r.Use(vendorOnly)
			r.Post("/", controllers.ShopCreate(d.Shops, logg))
			r.Patch("/{shopID}", controllers.ShopUpdate(d.Shops, logg))
			r.Delete("/{shopID}", controllers.ShopDelete(d.Shops, logg))
			r.Post("/{shopID}/items", controllers.ItemCreate(d.Items, logg))
			r.Post("/{shopID}/inventory/{itemID}", controllers.InventoryCreate(d.Inventory, logg))
			r.Patch("/{shopID}/inventory/{itemID}", controllers.InventoryUpdate(d.Inventory, logg))
			r.Delete("/{shopID}/inventory/{itemID}", controllers.InventoryDelete(d.Inventory, logg))
		})
	})

	r.With(anySession).Get("/api/v1/me/shops", controllers.ShopListMine(d.Shops, logg))

	r.Route("/api/v1/items", func(r chi.Router) {
		r.Get("/", controllers.ItemList(d.Items, logg))
		r.Get("/by-name/{itemName}", controllers.ItemGetByName(d.Items, logg))

		r.Group(func(r chi.Router) {
			r.Use(vendorOnly)
			r.Patch("/{itemID}", controllers.ItemUpdate(d.Items, logg))
			r.Delete("/{itemID}", controllers.ItemDelete(d.Items, logg))
		})
	})

	r.Get("/api/v1/search/nearby", controllers.SearchNearby(d.Search, logg))

	return r
}
