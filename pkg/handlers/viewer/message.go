package viewer

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/perf-tools/report-lens/pkg/services/sources"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Sender identity is checked by the message gate, not by the socket
	// handshake.
	CheckOrigin: func(*http.Request) bool { return true },
}

type wireMessage struct {
	LHResults json.RawMessage `json:"lhresults"`
}

type wireAck struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// Messages is the cross-client message channel. The connecting client
// states its identity with the `sender` query parameter; only messages from
// the recognized opener reach intake, everything else is dropped without
// effect. When this viewer was opened by another client, a one-shot ready
// signal is sent as soon as the channel is up.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	sender := r.URL.Query().Get("sender")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if h.opener != "" && sender == h.opener {
		if err := conn.WriteJSON(wireAck{Type: "ready"}); err != nil {
			logger.Err(err).Msg("failed to signal readiness to opener")
			return
		}
	}

	for {
		var msg wireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("message channel closed")
			}
			return
		}

		err := h.svc.OnMessage(ctx, sources.Message{
			Sender:    sender,
			LHResults: msg.LHResults,
		})
		ack := wireAck{Type: "ack"}
		if err != nil {
			ack.Error = err.Error()
		}
		if err := conn.WriteJSON(ack); err != nil {
			logger.Debug().Err(err).Msg("failed to write message ack")
			return
		}
	}
}
