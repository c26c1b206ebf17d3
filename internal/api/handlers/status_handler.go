package handlers

import (
	"net/http"
	"time"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/monitoring"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/services"
)

// StatusHandler reports process health for operators.
type StatusHandler struct {
	events  services.EventServiceProvider
	stats   monitoring.StatsProvider
	started time.Time
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(events services.EventServiceProvider, stats monitoring.StatsProvider, started time.Time) *StatusHandler {
	return &StatusHandler{events: events, stats: stats, started: started}
}

type statusResponse struct {
	Status        string                   `json:"status"`
	UptimeSeconds int64                    `json:"uptimeSeconds"`
	Events        int                      `json:"events"`
	Process       *monitoring.ProcessStats `json:"process,omitempty"`
}

// Status reports uptime, the size of the activity log and process resource usage.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}

	n, err := h.events.Count(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to count events")
		return
	}
	resp.Events = n

	if h.stats != nil {
		if ps, err := h.stats.ProcessStats(); err == nil {
			resp.Process = &ps
		} else {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
