package transport

import (
	"net/http"

	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	Product *ProductHandler
	Cart    *CartHandler
	Order   *OrderHandler
	Payment *PaymentHandler
	Admin   *AdminHandler
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTP.Total.Inc()
		next.ServeHTTP(w, r)
	})
}

// NewRouter assembles the API surface. Auth runs per route group, not
// globally, so the catalog stays public.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(countRequests)
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelope{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			h.Auth.Routes(r, middleware.RequireAuth)
		})
		r.Route("/products", func(r chi.Router) {
			h.Product.Routes(r, middleware.RequireAuth, middleware.RequireAdmin)
		})
		r.Route("/cart", func(r chi.Router) {
			h.Cart.Routes(r, middleware.RequireAuth)
		})
		r.Route("/orders", func(r chi.Router) {
			h.Order.Routes(r, middleware.RequireAuth, middleware.RequireAdmin)
		})
		r.Route("/payment", func(r chi.Router) {
			h.Payment.Routes(r, middleware.RequireAuth, middleware.RequireAdmin)
		})
		r.Route("/admin", func(r chi.Router) {
			h.Admin.Routes(r, middleware.RequireAuth, middleware.RequireAdmin)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found")
	})

	return r
}
