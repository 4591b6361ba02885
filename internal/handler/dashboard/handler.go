package dashboard

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	dashboardService "github.com/jagmag/crm-backend/internal/service/dashboard"
	"github.com/jagmag/crm-backend/pkg/utils"
)

// Handler serves the aggregated dashboard payload.
type Handler struct {
	dashboards *dashboardService.Service
}

func New(dashboards *dashboardService.Service) *Handler {
	return &Handler{dashboards: dashboards}
}

// RegisterRoutes registers the dashboard route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleGet)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboards.Build(r.Context())
	if err != nil {
		log.Printf("[dashboard] conversations load failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load conversations")
		return
	}

	utils.RespondJSON(w, http.StatusOK, metrics)
}
