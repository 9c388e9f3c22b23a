package http

import (
	"log"
	"net/http"

	"deck-game-service/internal/app"
	"github.com/gorilla/websocket"
)

// PlayHandler is an interactive console over websockets for driving a
// session by hand: each inbound frame is one turn event, each outbound
// frame the resulting prompt. It runs the same event loop as the webhook.
type PlayHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewPlayHandler(service *app.GameService) *PlayHandler {
	return &PlayHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServePlay upgrades GET /play?playerId=... and relays turns until the
// client disconnects or the game session ends.
func (h *PlayHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var inbound turnEvent
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		reply := h.service.HandleEvent(r.Context(), playerID, resolveEvent(inbound))
		if err := conn.WriteJSON(turnResponse{
			Prompt:       reply.Prompt,
			Reprompt:     reply.Reprompt,
			SessionEnded: reply.EndSession,
		}); err != nil {
			log.Printf("ws write error: %v", err)
			break
		}
		if reply.EndSession {
			break
		}
	}
}
