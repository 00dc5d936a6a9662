package consultation

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"medical-intake/internal/intake"
)

const (
	liveWriteWait  = 10 * time.Second
	liveReadLimit  = 64 << 10
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
)

// LiveEvent is a server-to-client frame on the live interview socket.
type LiveEvent struct {
	Type      string            `json:"type"` // "questions" or "error"
	Questions []intake.Question `json:"questions,omitempty"`
	Complete  bool              `json:"complete,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// HandleLive upgrades to a WebSocket on which every client frame is a
// MessageRequest and every reply a LiveEvent. The engine session is the
// same one used by the REST endpoints.
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.GetConsultation(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to load consultation")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "consultation_id", id, "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(liveReadLimit)
	conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(livePingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
					return
				}
			}
		}
	}()

	h.logger.Info("live interview connected", "consultation_id", id)
	for {
		var req MessageRequest
		if err := conn.ReadJSON(&req); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) || websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("live interview read ended", "consultation_id", id, "error", err)
			}
			return
		}

		event := LiveEvent{Type: "questions"}
		turn, err := h.svc.ProcessPatientMessage(r.Context(), id, req.Text, req.ChecklistStep)
		if err != nil {
			h.logger.Error("live interview processing failed", "consultation_id", id, "error", err)
			event = LiveEvent{Type: "error", Error: err.Error()}
		} else {
			event.Questions = turn.Questions
			event.Complete = turn.Complete
		}

		conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Debug("live interview write failed", "consultation_id", id, "error", err)
			return
		}
	}
}
