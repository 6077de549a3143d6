package repository

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"songvote/internal/platform/database"
	"songvote/internal/repository/file"
	"songvote/internal/repository/gcs"
	"songvote/internal/repository/sqlstore"
	"songvote/internal/retry"
	"songvote/internal/state"
)

// Options selects and configures a document backend.
type Options struct {
	// StateURL is a directory path, file://dir, postgres://..., sqlite://path or gs://bucket/prefix.
	StateURL           string
	GCSCredentialsFile string
	WriteAttempts      int
	WriteBaseDelay     time.Duration
}

// Opened is a ready document repository plus whatever must be closed on shutdown.
type Opened struct {
	Repo   state.DocumentRepository
	Closer io.Closer
	// Remote is true for network backends, where write-behind persistence is preferred.
	Remote bool
	Kind   string
}

func Open(ctx context.Context, opts Options) (*Opened, error) {
	kind, target := classify(opts.StateURL)
	switch kind {
	case "file":
		repo, err := file.NewDocumentRepo(target)
		if err != nil {
			return nil, err
		}
		return &Opened{Repo: repo, Closer: io.NopCloser(nil), Kind: kind}, nil

	case "sql":
		driver, dsn, err := database.DriverFromURL(target)
		if err != nil {
			return nil, err
		}
		db, err := database.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db connect error: %w", err)
		}
		repo := sqlstore.NewDocumentRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("migrate session_documents: %w", err)
		}
		return &Opened{Repo: withRetry(repo, opts), Closer: repo, Remote: driver == "pgx", Kind: driver}, nil

	case "gcs":
		u, err := url.Parse(target)
		if err != nil {
			return nil, err
		}
		repo, err := gcs.New(ctx, u.Host, u.Path, opts.GCSCredentialsFile)
		if err != nil {
			return nil, err
		}
		return &Opened{Repo: withRetry(repo, opts), Closer: repo, Remote: true, Kind: kind}, nil
	}
	return nil, fmt.Errorf("unsupported STATE_URL %q", opts.StateURL)
}

func classify(raw string) (kind, target string) {
	switch {
	case raw == "":
		return "file", "data"
	case strings.HasPrefix(raw, "file://"):
		return "file", strings.TrimPrefix(raw, "file://")
	case strings.HasPrefix(raw, "gs://"):
		return "gcs", raw
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"),
		strings.HasPrefix(raw, "sqlite://"), strings.HasPrefix(raw, "sqlite3://"):
		return "sql", raw
	case strings.Contains(raw, "://"):
		return "unknown", raw
	}
	return "file", raw
}

type retryingRepo struct {
	inner     state.DocumentRepository
	attempts  int
	baseDelay time.Duration
}

func withRetry(inner state.DocumentRepository, opts Options) state.DocumentRepository {
	attempts := opts.WriteAttempts
	if attempts <= 0 {
		attempts = 3
	}
	delay := opts.WriteBaseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &retryingRepo{inner: inner, attempts: attempts, baseDelay: delay}
}

func (r *retryingRepo) Read(ctx context.Context, name string) ([]byte, error) {
	return r.inner.Read(ctx, name)
}

func (r *retryingRepo) Write(ctx context.Context, name string, body []byte) error {
	return retry.DoWithRetry(ctx, r.attempts, r.baseDelay, func() error {
		return r.inner.Write(ctx, name, body)
	})
}
