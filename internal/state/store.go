package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"songvote/internal/domain/playback"
	"songvote/internal/domain/vote"
	"songvote/internal/metrics"
)

const (
	VotesDocument  = "votes"
	StatesDocument = "song_states"
)

var ErrNotFound = errors.New("document not found")

// DocumentRepository stores named JSON documents. Write replaces the stored
// copy as a whole: a reader sees either the previous or the new document.
type DocumentRepository interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, body []byte) error
}

// Store is the durable mirror of the live session.
type Store struct {
	repo   DocumentRepository
	logger *slog.Logger
}

func NewStore(repo DocumentRepository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{repo: repo, logger: logger}
}

// LoadVotes never fails: a missing or unreadable document yields an empty ballot.
func (s *Store) LoadVotes(ctx context.Context) *vote.Ballot {
	b := vote.NewBallot()
	if !s.load(ctx, VotesDocument, b) {
		return vote.NewBallot()
	}
	return b
}

func (s *Store) SaveVotes(ctx context.Context, b *vote.Ballot) error {
	return s.save(ctx, VotesDocument, b)
}

// LoadStates never fails: a missing or unreadable document yields no played songs.
func (s *Store) LoadStates(ctx context.Context) *playback.States {
	st := playback.NewStates()
	if !s.load(ctx, StatesDocument, st) {
		return playback.NewStates()
	}
	return st
}

func (s *Store) SaveStates(ctx context.Context, st *playback.States) error {
	return s.save(ctx, StatesDocument, st)
}

// Ping checks that the repository answers; a missing document counts as healthy.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.repo.Read(ctx, VotesDocument); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (s *Store) load(ctx context.Context, name string, into json.Unmarshaler) bool {
	data, err := s.repo.Read(ctx, name)
	if errors.Is(err, ErrNotFound) {
		s.logger.Info("state document missing, starting empty", "document", name)
		return false
	}
	if err != nil {
		metrics.IncStoreError(name, "read")
		s.logger.Warn("state document unreadable, starting empty", "document", name, "error", err)
		return false
	}
	if len(data) == 0 {
		return false
	}
	if err := into.UnmarshalJSON(data); err != nil {
		metrics.IncStoreError(name, "decode")
		s.logger.Warn("state document corrupt, starting empty", "document", name, "error", err)
		return false
	}
	return true
}

func (s *Store) save(ctx context.Context, name string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.repo.Write(ctx, name, data); err != nil {
		metrics.IncStoreError(name, "write")
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
