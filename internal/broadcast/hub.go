package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"songvote/internal/metrics"
	"songvote/internal/session"
)

// Message is the envelope used in both directions on the socket.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Frame is one encoded event, ready for any transport.
type Frame struct {
	Event string
	// Data is the JSON payload alone (SSE data line).
	Data []byte
	// Envelope is the full Message (WebSocket text frame).
	Envelope []byte
}

type Subscriber struct {
	ID   string
	send chan Frame
}

func (s *Subscriber) Frames() <-chan Frame {
	return s.send
}

// Hub keeps the set of live subscribers and fans every event out to all of
// them. Its lock is independent of the session lock.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	bufferSize  int
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		bufferSize:  32,
		logger:      logger,
	}
}

func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{
		ID:   uuid.NewString(),
		send: make(chan Frame, h.bufferSize),
	}
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	n := len(h.subscribers)
	h.mu.Unlock()
	metrics.SetSubscribers(n)
	return s
}

// Unsubscribe removes s and closes its channel. Calling it twice is harmless.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[s]; ok {
		delete(h.subscribers, s)
		close(s.send)
	}
	n := len(h.subscribers)
	h.mu.Unlock()
	metrics.SetSubscribers(n)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish implements session.Publisher. Delivery is at most once: a
// subscriber whose buffer is full misses the frame and catches up with
// update_request.
func (h *Hub) Publish(ev session.Event) {
	frame, err := Encode(ev)
	if err != nil {
		h.logger.Error("encode broadcast", "event", ev.Kind, "error", err)
		return
	}
	metrics.IncBroadcast(string(ev.Kind))

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subscribers {
		select {
		case s.send <- frame:
		default:
			metrics.IncDroppedFrame()
			h.logger.Debug("subscriber buffer full, frame dropped", "subscriber", s.ID, "event", ev.Kind)
		}
	}
}

func Encode(ev session.Event) (Frame, error) {
	var payload any = struct{}{}
	if ev.Snapshot != nil {
		payload = ev.Snapshot
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	env, err := json.Marshal(Message{Event: string(ev.Kind), Data: data})
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: string(ev.Kind), Data: data, Envelope: env}, nil
}
