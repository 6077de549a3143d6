package broadcast

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"songvote/internal/session"
)

type SnapshotSource interface {
	Snapshot() *session.Snapshot
}

// SSEHandler streams broadcasts as Server-Sent Events for read-only displays.
type SSEHandler struct {
	hub       *Hub
	source    SnapshotSource
	logger    *slog.Logger
	KeepAlive time.Duration
}

func NewSSEHandler(hub *Hub, source SnapshotSource, logger *slog.Logger) *SSEHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEHandler{hub: hub, source: source, logger: logger, KeepAlive: 25 * time.Second}
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	fmt.Fprintf(w, ": connected\n\n")

	// current state first, so the display does not wait for the next change
	if frame, err := Encode(session.Event{Kind: session.EventUpdate, Snapshot: h.source.Snapshot()}); err == nil {
		writeSSE(w, frame)
	}
	flusher.Flush()
	h.logger.Debug("SSE client connected", "subscriber", sub.ID)

	ticker := time.NewTicker(h.KeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("SSE client disconnected", "subscriber", sub.ID)
			return
		case frame, ok := <-sub.Frames():
			if !ok {
				return
			}
			writeSSE(w, frame)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, f Frame) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Event, f.Data)
}
