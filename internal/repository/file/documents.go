package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"songvote/internal/state"
)

// DocumentRepo keeps each document in <dir>/<name>.json.
type DocumentRepo struct {
	dir string
}

func NewDocumentRepo(dir string) (*DocumentRepo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &DocumentRepo{dir: dir}, nil
}

func (r *DocumentRepo) Path(name string) string {
	return filepath.Join(r.dir, name+".json")
}

func (r *DocumentRepo) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(r.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, state.ErrNotFound
	}
	return data, err
}

// Write goes through a temp file in the same directory followed by a rename,
// so a crash leaves either the old or the new document on disk.
func (r *DocumentRepo) Write(ctx context.Context, name string, body []byte) error {
	tmp, err := os.CreateTemp(r.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.Path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
