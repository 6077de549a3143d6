package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownEvent = errors.New("unknown event")

// Handler applies one inbound event. A nil snapshot means nothing was broadcast.
type Handler func(ctx context.Context, c *Coordinator, payload json.RawMessage) (*Snapshot, error)

// Dispatcher routes inbound socket events to coordinator operations.
type Dispatcher struct {
	coord    *Coordinator
	handlers map[string]Handler
}

func NewDispatcher(c *Coordinator) *Dispatcher {
	return &Dispatcher{
		coord: c,
		handlers: map[string]Handler{
			"vote":           handleVote,
			"update_request": handleUpdateRequest,
		},
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, kind string, payload json.RawMessage) (*Snapshot, error) {
	h, ok := d.handlers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
	return h(ctx, d.coord, payload)
}

type votePayload struct {
	DeviceID string `json:"deviceId"`
	SongID   string `json:"songId"`
}

func handleVote(ctx context.Context, c *Coordinator, payload json.RawMessage) (*Snapshot, error) {
	var p votePayload
	if len(payload) == 0 {
		return nil, ErrMissingDeviceID
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode vote: %w", err)
	}
	return c.CastVote(ctx, p.DeviceID, p.SongID)
}

func handleUpdateRequest(ctx context.Context, c *Coordinator, _ json.RawMessage) (*Snapshot, error) {
	return c.Resync(ctx), nil
}
