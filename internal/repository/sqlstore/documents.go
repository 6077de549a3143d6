package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"songvote/internal/state"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_documents (
    name       TEXT PRIMARY KEY,
    body       TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// DocumentRepo stores state documents as rows of session_documents.
// The SQL is shared by the pgx and sqlite3 drivers.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *DocumentRepo) Read(ctx context.Context, name string) ([]byte, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM session_documents WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, state.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (r *DocumentRepo) Write(ctx context.Context, name string, body []byte) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO session_documents (name, body, updated_at)
        VALUES ($1, $2, CURRENT_TIMESTAMP)
        ON CONFLICT (name) DO UPDATE
        SET body = excluded.body,
            updated_at = excluded.updated_at
    `, name, string(body))
	return err
}

func (r *DocumentRepo) Close() error {
	return r.db.Close()
}
