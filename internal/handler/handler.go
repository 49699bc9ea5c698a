// Package handler exposes the order service over HTTP with JSON bodies.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/joki-boost/internal/domain/auth"
	"github.com/xenking/joki-boost/internal/domain/ladder"
	"github.com/xenking/joki-boost/internal/domain/order"
	"github.com/xenking/joki-boost/internal/domain/pricing"
)

// DefaultCookieName names the admin session cookie.
const DefaultCookieName = "joki_session"

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// CookieName overrides DefaultCookieName.
	CookieName string
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
	// ManagerOptions are applied to every per-request order.Manager.
	ManagerOptions []order.Option
}

// Handler serves the catalog, quoting, ordering and admin endpoints.
type Handler struct {
	catalog  *ladder.Catalog
	engine   *pricing.Engine
	orders   order.Repository
	auth     auth.Authenticator
	sessions *auth.SessionStore

	cookieName   string
	secureCookie bool
	managerOpts  []order.Option
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	engine *pricing.Engine,
	orders order.Repository,
	authn auth.Authenticator,
	sessions *auth.SessionStore,
) *Handler {
	cookie := cfg.CookieName
	if cookie == "" {
		cookie = DefaultCookieName
	}
	return &Handler{
		catalog:      engine.Catalog(),
		engine:       engine,
		orders:       orders,
		auth:         authn,
		sessions:     sessions,
		cookieName:   cookie,
		secureCookie: cfg.SecureCookie,
		managerOpts:  cfg.ManagerOptions,
	}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", h.GetCatalog)
	mux.HandleFunc("POST /api/quote", h.Quote)
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)

	mux.HandleFunc("POST /api/admin/login", h.Login)
	mux.HandleFunc("POST /api/admin/logout", h.Logout)

	mux.Handle("GET /api/orders", h.requireAdmin(h.ListOrders))
	mux.Handle("DELETE /api/orders/{id}", h.requireAdmin(h.DeleteOrder))
	mux.Handle("PATCH /api/orders/{id}", h.requireAdmin(h.UpdateOrder))
	mux.Handle("GET /api/stats", h.requireAdmin(h.Stats))
}

// manager builds a request-scoped order manager. Managers are not shared
// between requests.
func (h *Handler) manager(ctx context.Context) *order.Manager {
	return order.NewManager(ctx, h.orders, h.engine, h.managerOpts...)
}
