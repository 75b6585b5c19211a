package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"

	_ "github.com/aussiebroadwan/storefront/api/sandbox" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService    *service.AuthService
	CatalogService *service.CatalogService
	AddressService *service.AddressService
	CartService    *service.CartService
	OrderService   *service.OrderService
	PaymentService *service.PaymentService
	AdminService   *service.AdminService

	// ExposeOTP and CookieSecure are passed through to the auth handler.
	ExposeOTP    bool
	CookieSecure bool
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerCatalog()
	r.registerAddresses()
	r.registerCart()
	r.registerOrders()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Storefront Sandbox API
//	@version		0.1.0
//	@description	Local stand-in for the storefront backend. Catalog, cart, orders and manual payment verification.
//	@description
//	@description				Access tokens are short lived EdDSA JWTs. The refresh token travels in an HttpOnly cookie scoped to /api/auth/.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/storefront
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed wraps h with token verification and a per-user limit.
func (r *Router) authed(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

// admin is authed plus the admin claim.
func (r *Router) admin(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAdmin(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:  r.AuthService,
		ExposeOTP:    r.ExposeOTP,
		CookieSecure: r.CookieSecure,
	}

	// Credential endpoints are limited by address plus the submitted email
	// so one client cannot brute force many accounts.
	r.Mux.Handle("POST /api/auth/login/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /api/auth/register/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/verify-otp/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyOTP),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// Refresh and logout authenticate with the cookie, not a bearer token.
	r.Mux.Handle("POST /api/auth/token/refresh/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/logout/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/profile/{$}", r.authed(h.HandleProfile, httpx.LenientLimit))
}

func (r *Router) registerCatalog() {
	h := &CatalogHandler{CatalogService: r.CatalogService}

	public := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.PublicLimit))
	}

	r.Mux.Handle("GET /api/products/{$}", public(h.HandleListProducts))
	r.Mux.Handle("GET /api/products/{id}/{$}", public(h.HandleGetProduct))
	r.Mux.Handle("GET /api/products/categories/{$}", public(h.HandleListCategories))
	r.Mux.Handle("GET /api/products/categories/{id}/{$}", public(h.HandleGetCategory))

	r.Mux.Handle("POST /api/products/{$}", r.admin(h.HandleCreateProduct))
	r.Mux.Handle("PUT /api/products/{id}/{$}", r.admin(h.HandleUpdateProduct))
	r.Mux.Handle("DELETE /api/products/{id}/{$}", r.admin(h.HandleDeleteProduct))
	r.Mux.Handle("POST /api/products/categories/{$}", r.admin(h.HandleCreateCategory))
	r.Mux.Handle("PUT /api/products/categories/{id}/{$}", r.admin(h.HandleUpdateCategory))
	r.Mux.Handle("DELETE /api/products/categories/{id}/{$}", r.admin(h.HandleDeleteCategory))
}

func (r *Router) registerAddresses() {
	h := &AddressHandler{AddressService: r.AddressService}

	r.Mux.Handle("GET /api/profile/addresses/{$}", r.authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /api/profile/addresses/{$}", r.authed(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/profile/addresses/{id}/{$}", r.authed(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /api/profile/addresses/{id}/{$}", r.authed(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /api/profile/addresses/{id}/{$}", r.authed(h.HandleDelete, httpx.ModerateLimit))
}

func (r *Router) registerCart() {
	h := &CartHandler{CartService: r.CartService}

	r.Mux.Handle("GET /api/orders/cart/{$}", r.authed(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("POST /api/orders/cart/add/{$}", r.authed(h.HandleAdd, httpx.LenientLimit))
	r.Mux.Handle("PUT /api/orders/cart/update/{id}/{$}", r.authed(h.HandleUpdate, httpx.LenientLimit))
	r.Mux.Handle("DELETE /api/orders/cart/remove/{id}/{$}", r.authed(h.HandleRemove, httpx.LenientLimit))
}

func (r *Router) registerOrders() {
	h := &OrderHandler{OrderService: r.OrderService}
	p := &PaymentHandler{PaymentService: r.PaymentService}

	r.Mux.Handle("GET /api/orders/order/{$}", r.authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /api/orders/order/create/{$}", r.authed(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("POST /api/orders/order/direct-purchase/{$}", r.authed(h.HandleDirectPurchase, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/orders/order/{number}/{$}", r.authed(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("GET /api/orders/order/{number}/status/{$}", r.authed(h.HandleStatus, httpx.LenientLimit))
	r.Mux.Handle("POST /api/orders/order/{number}/cancel/{$}", r.authed(h.HandleCancel, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/orders/payment/methods/{$}", r.authed(h.HandlePaymentMethods, httpx.LenientLimit))

	// Uploads are large; keep the per-user budget tight.
	r.Mux.Handle("POST /api/orders/payment/verify/{number}/{$}", r.authed(p.HandleVerify, httpx.StrictLimit))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{AdminService: r.AdminService}
	p := &PaymentHandler{PaymentService: r.PaymentService}

	r.Mux.Handle("GET /api/admin/orders/manage/{$}", r.admin(h.HandleList))
	r.Mux.Handle("GET /api/admin/orders/manage/pending/{$}", r.admin(h.HandlePending))
	r.Mux.Handle("GET /api/admin/orders/manage/{number}/{$}", r.admin(h.HandleGet))
	r.Mux.Handle("PATCH /api/admin/orders/manage/{number}/status/{$}", r.admin(h.HandleUpdateStatus))
	r.Mux.Handle("GET /api/admin/payments/screenshots/{id}/{$}", r.admin(p.HandleScreenshot))
}

func (r *Router) registerSystem() {
	// Monitoring may poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
