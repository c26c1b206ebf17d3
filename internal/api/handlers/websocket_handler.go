package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/apperr"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
	ws "github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/websocket"
)

// WebSocketHandler streams newly recorded events to websocket clients.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same policy as the REST CORS configuration: any origin.
		return true
	},
}

// Serve upgrades the connection and subscribes it to the live history feed. The
// optional type query parameter limits the feed to one event type.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("type")
	if topic != "" && !models.EventType(topic).Valid() {
		writeError(w, r, apperr.Invalid("unknown event type "+topic), "")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, topic)
	if !h.hub.Join(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go func() {
		client.ReadPump()
		h.hub.Leave(client)
	}()
}
