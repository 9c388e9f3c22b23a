package http

import (
	"encoding/json"
	"net/http"

	"deck-game-service/internal/app"
)

// TurnHandler is the webhook boundary with the voice platform: one
// resolved event in, one prompt out. Each request is a complete turn;
// the handler holds no state between requests.
type TurnHandler struct {
	service *app.GameService
}

func NewTurnHandler(service *app.GameService) *TurnHandler {
	return &TurnHandler{service: service}
}

type turnRequest struct {
	PlayerID string    `json:"playerId"`
	Event    turnEvent `json:"event"`
}

type turnEvent struct {
	Type   string `json:"type"`
	Answer string `json:"answer,omitempty"`
}

type turnResponse struct {
	Prompt       string `json:"prompt"`
	Reprompt     string `json:"reprompt,omitempty"`
	SessionEnded bool   `json:"sessionEnded"`
}

// ServeTurn handles POST /turn.
func (h *TurnHandler) ServeTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid turn payload", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	reply := h.service.HandleEvent(r.Context(), req.PlayerID, resolveEvent(req.Event))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(turnResponse{
		Prompt:       reply.Prompt,
		Reprompt:     reply.Reprompt,
		SessionEnded: reply.EndSession,
	})
}

// resolveEvent maps wire event types onto the service's event set.
// Anything unrecognized becomes the fallback event rather than an error;
// the game always answers with guidance.
func resolveEvent(ev turnEvent) app.Event {
	switch app.EventType(ev.Type) {
	case app.EventLaunch, app.EventStart, app.EventAnswer, app.EventContinueYes,
		app.EventContinueNo, app.EventHelp, app.EventStop, app.EventSessionEnded:
		return app.Event{Type: app.EventType(ev.Type), Answer: ev.Answer}
	default:
		return app.Event{Type: app.EventUnknown}
	}
}
