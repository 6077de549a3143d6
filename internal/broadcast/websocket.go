package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"songvote/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Dispatcher applies inbound client events.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind string, payload json.RawMessage) (*session.Snapshot, error)
}

type WSOptions struct {
	// AllowedOrigins lists accepted Origin hosts; "*" or empty accepts any.
	AllowedOrigins []string
	// EventRate and EventBurst bound inbound events per connection.
	EventRate  rate.Limit
	EventBurst int
}

// WSHandler upgrades clients to WebSocket and joins them to the hub.
// Inbound events are fire-and-forget: invalid or rate-limited events are
// dropped without a reply.
type WSHandler struct {
	hub        *Hub
	dispatcher Dispatcher
	upgrader   websocket.Upgrader
	opts       WSOptions
	logger     *slog.Logger
}

func NewWSHandler(hub *Hub, dispatcher Dispatcher, opts WSOptions, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.EventRate == 0 {
		opts.EventRate = 5
	}
	if opts.EventBurst <= 0 {
		opts.EventBurst = 10
	}
	h := &WSHandler{hub: hub, dispatcher: dispatcher, opts: opts, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, u.Host) {
			return true
		}
	}
	return false
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	sub := h.hub.Subscribe()
	logger := h.logger.With("subscriber", sub.ID)
	logger.Debug("websocket client connected")

	go h.writePump(conn, sub)
	h.readPump(r.Context(), conn, sub, logger)

	h.hub.Unsubscribe(sub)
	logger.Debug("websocket client disconnected")
}

func (h *WSHandler) readPump(ctx context.Context, conn *websocket.Conn, sub *Subscriber, logger *slog.Logger) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	limiter := rate.NewLimiter(h.opts.EventRate, h.opts.EventBurst)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", "error", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("dropping malformed message", "error", err)
			continue
		}
		if !limiter.Allow() {
			logger.Debug("dropping rate limited event", "event", msg.Event)
			continue
		}
		if _, err := h.dispatcher.Dispatch(ctx, msg.Event, msg.Data); err != nil {
			logger.Debug("dropping rejected event", "event", msg.Event, "error", err)
		}
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case frame, ok := <-sub.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame.Envelope); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
