package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"songvote/internal/domain/playback"
	"songvote/internal/domain/vote"
	"songvote/internal/metrics"
)

var (
	ErrMissingDeviceID = errors.New("deviceId is required")
	ErrMissingSongID   = errors.New("songId is required")
)

// Coordinator owns the live session. Every mutation runs under mu: the
// change, the persist call and the publish happen as one step, so subscribers
// receive snapshots in mutation order and never see a half-applied swap.
type Coordinator struct {
	mu        sync.Mutex
	votes     *vote.Ballot
	states    *playback.States
	persister Persister
	publisher Publisher
	logger    *slog.Logger
}

func NewCoordinator(votes *vote.Ballot, states *playback.States, persister Persister, publisher Publisher, logger *slog.Logger) *Coordinator {
	if votes == nil {
		votes = vote.NewBallot()
	}
	if states == nil {
		states = playback.NewStates()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		votes:     votes,
		states:    states,
		persister: persister,
		publisher: publisher,
		logger:    logger,
	}
}

// CastVote records a device's vote. A repeated identical vote returns a nil
// snapshot and neither persists nor broadcasts.
func (c *Coordinator) CastVote(ctx context.Context, deviceID, songID string) (*Snapshot, error) {
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}
	if songID == "" {
		return nil, ErrMissingSongID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.votes.Cast(deviceID, songID) {
		return nil, nil
	}
	metrics.IncVote()
	c.persistVotes(ctx)

	snap := newSnapshot(c.votes, c.states)
	c.publish(Event{Kind: EventUpdate, Snapshot: snap})
	return snap, nil
}

// AdvancePlayback marks songID as now playing and returns it. Advancing to
// the song that is already playing succeeds without a broadcast.
func (c *Coordinator) AdvancePlayback(ctx context.Context, songID string) (string, *Snapshot, error) {
	if songID == "" {
		return "", nil, ErrMissingSongID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.states.Advance(songID) {
		return songID, newSnapshot(c.votes, c.states), nil
	}
	c.persistStates(ctx)

	snap := newSnapshot(c.votes, c.states)
	c.publish(Event{Kind: EventUpdate, Snapshot: snap})
	return songID, snap, nil
}

// ResetSession clears votes and playback history, then broadcasts an empty
// update followed by a session_reset.
func (c *Coordinator) ResetSession(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.votes.Clear()
	c.states.Reset()
	c.persistVotes(ctx)
	c.persistStates(ctx)

	snap := newSnapshot(c.votes, c.states)
	c.publish(Event{Kind: EventUpdate, Snapshot: snap})
	c.publish(Event{Kind: EventSessionReset})
	c.logger.Info("session reset")
	return snap, nil
}

// Resync broadcasts the current snapshot to everyone without changing state.
func (c *Coordinator) Resync(ctx context.Context) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := newSnapshot(c.votes, c.states)
	c.publish(Event{Kind: EventUpdate, Snapshot: snap})
	return snap
}

// Reload replaces the live session with the durable copy and broadcasts it.
func (c *Coordinator) Reload(ctx context.Context, l Loader) *Snapshot {
	votes := l.LoadVotes(ctx)
	states := l.LoadStates(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.votes = votes
	c.states = states
	snap := newSnapshot(c.votes, c.states)
	c.publish(Event{Kind: EventUpdate, Snapshot: snap})
	c.logger.Info("session reloaded from durable state", "votes", votes.Len(), "states", states.Len())
	return snap
}

func (c *Coordinator) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return newSnapshot(c.votes, c.states)
}

// Votes returns a copy of the raw device → song ballot.
func (c *Coordinator) Votes() *vote.Ballot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.votes.Clone()
}

func (c *Coordinator) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return vote.Aggregate(c.votes).Counts
}

func (c *Coordinator) NowPlaying() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states.NowPlaying()
}

// Flush writes both documents regardless of pending changes. Used on shutdown.
func (c *Coordinator) Flush(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persistVotes(ctx)
	c.persistStates(ctx)
}

// persist* hand the persister a private copy, so a write-behind persister
// can encode it after the lock is released.
func (c *Coordinator) persistVotes(ctx context.Context) {
	if c.persister == nil {
		return
	}
	if err := c.persister.SaveVotes(ctx, c.votes.Clone()); err != nil {
		c.logger.Error("persist votes failed", "error", err)
	}
}

func (c *Coordinator) persistStates(ctx context.Context) {
	if c.persister == nil {
		return
	}
	if err := c.persister.SaveStates(ctx, c.states.Clone()); err != nil {
		c.logger.Error("persist song states failed", "error", err)
	}
}

func (c *Coordinator) publish(ev Event) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(ev)
}
