package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"quizboard-service/internal/app"
	"quizboard-service/internal/auth"
	"quizboard-service/internal/domain"
)

// WSHandler streams leaderboard snapshots to connected clients.
type WSHandler struct {
	hub      *app.LeaderboardHub
	ranker   *app.LeaderboardRanker
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

func NewWSHandler(hub *app.LeaderboardHub, ranker *app.LeaderboardRanker, log logrus.FieldLogger) *WSHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WSHandler{
		hub:    hub,
		ranker: ranker,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and pushes a "leaderboard" message on every recorded score.
// Clients may send {"type":"history"} to receive their own recent attempts.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	updates, cancel, err := h.hub.Subscribe(r.Context())
	if err != nil {
		h.log.WithError(err).Error("leaderboard subscribe failed")
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	h.pump(r.Context(), conn, user.ID, updates)
}

// wsConn is the part of *websocket.Conn the pump uses.
type wsConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
}

// pump runs one connection until the client goes away or writes start failing.
func (h *WSHandler) pump(ctx context.Context, conn wsConn, userID string, updates <-chan domain.Leaderboard) {
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write failed")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// reply gives up once the writer has stopped, so a dead connection never blocks reads.
	reply := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var msg outboundMessage[any]
		switch inbound.Type {
		case "history":
			history, err := h.ranker.History(ctx, userID, 0)
			if err != nil {
				msg = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "history unavailable"}}
			} else {
				msg = outboundMessage[any]{Type: "history", Payload: history}
			}
		default:
			msg = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
		if !reply(msg) {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
