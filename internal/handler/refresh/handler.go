package refresh

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jagmag/crm-backend/internal/service/connector"
	"github.com/jagmag/crm-backend/pkg/utils"
)

// Handler triggers the connector knowledge refresh.
type Handler struct {
	client *connector.Client
}

func New(client *connector.Client) *Handler {
	return &Handler{client: client}
}

// RegisterRoutes registers the refresh route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/refresh-data", h.handleRefresh)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !h.client.Configured() {
		utils.RespondError(w, http.StatusInternalServerError, "Server configuration missing")
		return
	}

	log.Printf("[refresh] starting AI data refresh")
	summary, err := h.client.Refresh(r.Context())
	if err != nil {
		log.Printf("[refresh] refresh failed: %v", err)
		body := map[string]any{
			"success": false,
			"error":   err.Error(),
			"phase":   nil,
			"status":  nil,
		}
		var phaseErr *connector.PhaseError
		if errors.As(err, &phaseErr) {
			body["phase"] = phaseErr.Phase
			if phaseErr.Status != 0 {
				body["status"] = phaseErr.Status
			}
		}
		utils.RespondJSON(w, http.StatusInternalServerError, body)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Refresh completed: %d policies, %d pages, %d products", summary.Policies, summary.Pages, summary.Products),
		"summary": summary,
	})
}
