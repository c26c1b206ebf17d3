package handlers

import (
	"net/http"
	"strconv"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/apperr"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/services"
)

// EventHandler serves the activity history.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// History returns events newest-first. Optional query parameters: type, limit.
func (h *EventHandler) History(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHistoryFilter(r)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	events, err := h.service.History(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, "Failed to retrieve history")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func parseHistoryFilter(r *http.Request) (services.HistoryFilter, error) {
	var filter services.HistoryFilter
	q := r.URL.Query()

	if t := q.Get("type"); t != "" {
		filter.Type = models.EventType(t)
		if !filter.Type.Valid() {
			return filter, apperr.Invalid("unknown event type " + strconv.Quote(t))
		}
	}
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			return filter, apperr.Invalid("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
