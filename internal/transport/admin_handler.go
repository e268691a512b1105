package transport

import (
	"net/http"

	"storefront-be/internal/metrics"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	stats metrics.Repository
}

func NewAdminHandler(stats metrics.Repository) *AdminHandler {
	return &AdminHandler{stats: stats}
}

func (h *AdminHandler) Routes(r chi.Router, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	r.Use(requireAuth, requireAdmin)
	r.Get("/dashboard", h.dashboard)
}

func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.DashboardStats(r.Context())
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, "Dashboard stats retrieved", envelope{
		"stats": stats,
		"requests": envelope{
			"total":  metrics.HTTP.Total.Load(),
			"errors": metrics.HTTP.Errors.Load(),
		},
	})
}
