package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/navspec/internal/store"
)

const (
	// DirName is created under the project root.
	DirName  = ".navspec"
	FileName = "preferences.json"
)

// Repository keeps preferences in <root>/.navspec/preferences.json.
type Repository struct {
	path string
}

// New creates the .navspec directory under root when missing.
func New(root string) (*Repository, error) {
	dir := filepath.Join(root, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return &Repository{path: filepath.Join(dir, FileName)}, nil
}

func (r *Repository) Name() string { return "file" }

// Path is the preferences file location.
func (r *Repository) Path() string { return r.path }

func (r *Repository) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save replaces the file atomically.
func (r *Repository) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), FileName+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
