package auth

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	authService "github.com/jagmag/crm-backend/internal/service/auth"
	"github.com/jagmag/crm-backend/pkg/utils"
)

// Handler exposes the login endpoint that exchanges the operator
// password for a bearer token.
type Handler struct {
	tokens   *authService.Service
	password string
}

// New creates the login handler.
func New(tokens *authService.Service, password string) *Handler {
	return &Handler{tokens: tokens, password: password}
}

// RegisterRoutes registers the login route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "Password is required")
		return
	}

	if subtle.ConstantTimeCompare([]byte(payload.Password), []byte(h.password)) != 1 {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := h.tokens.Issue("crm-user", 0)
	if err != nil {
		// Most likely a missing secret; never echo configuration
		// detail to the caller.
		log.Printf("[auth] token issuance failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"message": "Login successful",
	})
}
