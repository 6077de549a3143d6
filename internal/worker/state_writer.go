package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"songvote/internal/domain/playback"
	"songvote/internal/domain/vote"
)

type Saver interface {
	SaveVotes(ctx context.Context, b *vote.Ballot) error
	SaveStates(ctx context.Context, s *playback.States) error
}

// StateWriter persists session documents behind the coordinator's back.
// Only the newest pending copy of each document is kept: documents are
// replaced whole, so intermediate versions never need to reach storage.
type StateWriter struct {
	saver  Saver
	logger *slog.Logger

	mu     sync.Mutex
	votes  *vote.Ballot
	states *playback.States

	wake chan struct{}
	done chan struct{}

	FlushTimeout time.Duration
}

func NewStateWriter(saver Saver, logger *slog.Logger) *StateWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateWriter{
		saver:        saver,
		logger:       logger,
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		FlushTimeout: 10 * time.Second,
	}
}

// SaveVotes queues b and returns immediately.
func (w *StateWriter) SaveVotes(_ context.Context, b *vote.Ballot) error {
	w.mu.Lock()
	w.votes = b
	w.mu.Unlock()
	w.signal()
	return nil
}

// SaveStates queues s and returns immediately.
func (w *StateWriter) SaveStates(_ context.Context, s *playback.States) error {
	w.mu.Lock()
	w.states = s
	w.mu.Unlock()
	w.signal()
	return nil
}

func (w *StateWriter) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run writes queued documents until ctx is canceled, then flushes what is left.
func (w *StateWriter) Run(ctx context.Context) {
	w.logger.Info("state writer started")
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.FlushTimeout)
			w.flush(flushCtx)
			cancel()
			w.logger.Info("state writer stopped")
			return
		case <-w.wake:
			// a wake racing shutdown is left to the final flush
			if ctx.Err() != nil {
				continue
			}
			w.flush(ctx)
		}
	}
}

// Done is closed once Run has flushed and returned.
func (w *StateWriter) Done() <-chan struct{} {
	return w.done
}

func (w *StateWriter) flush(ctx context.Context) {
	w.mu.Lock()
	votes, states := w.votes, w.states
	w.votes, w.states = nil, nil
	w.mu.Unlock()

	if votes != nil {
		if err := w.saver.SaveVotes(ctx, votes); err != nil {
			w.logger.Error("write-behind votes failed", "error", err)
			if ctx.Err() != nil {
				w.requeue(votes, nil)
			}
		}
	}
	if states != nil {
		if err := w.saver.SaveStates(ctx, states); err != nil {
			w.logger.Error("write-behind song states failed", "error", err)
			if ctx.Err() != nil {
				w.requeue(nil, states)
			}
		}
	}
}

// requeue puts back documents whose write was cut short by shutdown, unless
// a newer copy has been queued since.
func (w *StateWriter) requeue(votes *vote.Ballot, states *playback.States) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if votes != nil && w.votes == nil {
		w.votes = votes
	}
	if states != nil && w.states == nil {
		w.states = states
	}
}
