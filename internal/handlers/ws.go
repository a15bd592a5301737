package handlers

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/damione1/pokersync/internal/security"
	"github.com/damione1/pokersync/internal/services"
)

// WSHandler upgrades HTTP requests to WebSocket connections and hands them
// to the coordinator. Room membership is negotiated over the socket via the
// join-room event, not the URL, so a single endpoint serves all rooms.
type WSHandler struct {
	hub         *services.Hub
	coordinator *services.Coordinator
	origins     *security.OriginValidator
}

func NewWSHandler(hub *services.Hub, coordinator *services.Coordinator, origins *security.OriginValidator) *WSHandler {
	return &WSHandler{
		hub:         hub,
		coordinator: coordinator,
		origins:     origins,
	}
}

func (h *WSHandler) Handle() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := websocket.Accept(w, r, h.origins.GetAcceptOptions())
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "")

		connID := uuid.New().String()
		client := services.NewClient(conn, h.hub, h.coordinator, connID)

		// Blocks until the connection drops; the read pump delivers the
		// disconnect to the coordinator on the way out.
		client.Run()
	}
}
