package customer

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	customerService "github.com/jagmag/crm-backend/internal/service/customer"
	"github.com/jagmag/crm-backend/pkg/utils"
)

// Handler serves customer detail lookups.
type Handler struct {
	customers *customerService.Service
}

func New(customers *customerService.Service) *Handler {
	return &Handler{customers: customers}
}

// RegisterRoutes registers the customer route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/customer", h.handleGet)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	profileKey := r.URL.Query().Get("profile_key")
	if profileKey == "" {
		// user_id is the legacy alias the frontend still sends.
		profileKey = r.URL.Query().Get("user_id")
	}
	if profileKey == "" {
		utils.RespondError(w, http.StatusBadRequest, "Missing profile_key")
		return
	}

	view, err := h.customers.Get(r.Context(), profileKey)
	if err != nil {
		if errors.Is(err, customerService.ErrProfileKeyRequired) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[customer] profile fetch failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load customer profile")
		return
	}

	utils.RespondJSON(w, http.StatusOK, view)
}
