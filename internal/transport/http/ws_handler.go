package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"seminar-results-service/internal/app"
	"seminar-results-service/internal/domain"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.ResultsService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ResultsService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type string `json:"type"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS streams the results of ?round= or ?period= to the client: the
// current ranking on connect, the frozen ranking once frozen, and a fresh
// ranking on every "refresh" message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	key, ok := feedKey(r)
	if !ok {
		http.Error(w, "exactly one of round or period is required", http.StatusBadRequest)
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case rows, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "results", Payload: rows}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "refresh":
			rows, err := h.service.Results(r.Context(), key)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "results", Payload: rows}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func feedKey(r *http.Request) (domain.SnapshotKey, bool) {
	round, period := r.URL.Query().Get("round"), r.URL.Query().Get("period")
	if (round == "") == (period == "") {
		return domain.SnapshotKey{}, false
	}
	key := domain.SnapshotKey{Kind: domain.KindRound}
	raw := round
	if period != "" {
		key.Kind, raw = domain.KindPeriod, period
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return domain.SnapshotKey{}, false
	}
	key.ID = id
	return key, true
}

