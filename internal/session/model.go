package session

import (
	"context"

	"songvote/internal/domain/playback"
	"songvote/internal/domain/vote"
)

type EventKind string

const (
	EventUpdate       EventKind = "update"
	EventSessionReset EventKind = "session_reset"
)

// Snapshot is the aggregated view sent to every client after a change.
type Snapshot struct {
	Counts   map[string]int      `json:"counts"`
	ByDevice map[string][]string `json:"byDevice"`
	States   map[string]string   `json:"states"`
}

// Event is one broadcast. Snapshot is nil for EventSessionReset.
type Event struct {
	Kind     EventKind
	Snapshot *Snapshot
}

// Publisher fans events out to subscribers. Publish must not block.
type Publisher interface {
	Publish(ev Event)
}

// Persister mirrors the session into durable storage.
type Persister interface {
	SaveVotes(ctx context.Context, b *vote.Ballot) error
	SaveStates(ctx context.Context, s *playback.States) error
}

// Loader reads the durable copy back.
type Loader interface {
	LoadVotes(ctx context.Context) *vote.Ballot
	LoadStates(ctx context.Context) *playback.States
}

func newSnapshot(b *vote.Ballot, s *playback.States) *Snapshot {
	t := vote.Aggregate(b)
	return &Snapshot{
		Counts:   t.Counts,
		ByDevice: t.ByDevice,
		States:   s.Map(),
	}
}
