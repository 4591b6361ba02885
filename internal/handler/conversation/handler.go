package conversation

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	model "github.com/jagmag/crm-backend/internal/model/conversation"
	conversationService "github.com/jagmag/crm-backend/internal/service/conversation"
	"github.com/jagmag/crm-backend/pkg/utils"
)

// Handler serves the paged conversation feed.
type Handler struct {
	reader *conversationService.Reader
}

// New creates the conversation feed handler.
func New(reader *conversationService.Reader) *Handler {
	return &Handler{reader: reader}
}

// RegisterRoutes registers the feed route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/conversations", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.reader.Read(r.Context(), q)
	if err != nil {
		if errors.Is(err, conversationService.ErrInvalidOrder) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Internal operator tool: surfacing the store detail beats
		// hiding it.
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, page)
}

// parseQuery validates pagination parameters before anything touches
// the store; a bad bound aborts the request rather than degrading into
// an unfiltered query.
func parseQuery(values url.Values) (model.Query, error) {
	q := model.Query{
		Limit:    conversationService.DefaultLimit,
		UserID:   values.Get("user_id"),
		Channel:  values.Get("channel"),
		MemoryID: values.Get("memory_id"),
	}

	if raw := values.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.Limit = n
		}
	}

	switch order := strings.ToLower(values.Get("order")); order {
	case "":
	case "asc":
		q.Order = model.OrderAsc
	case "desc":
		q.Order = model.OrderDesc
	default:
		return model.Query{}, fmt.Errorf("invalid order %q: must be asc or desc", order)
	}

	var err error
	if q.Since, err = parseTimeParam(values, "since"); err != nil {
		return model.Query{}, err
	}
	if q.Before, err = parseTimeParam(values, "before"); err != nil {
		return model.Query{}, err
	}

	return q, nil
}

func parseTimeParam(values url.Values, key string) (*time.Time, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: expected RFC 3339 timestamp", key, raw)
	}
	return &t, nil
}
