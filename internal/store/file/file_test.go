package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/navspec/internal/store"
)

func TestRepository(t *testing.T) {
	root := t.TempDir()
	repo, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if want := filepath.Join(root, ".navspec", "preferences.json"); repo.Path() != want {
		t.Errorf("Path() = %s, want %s", repo.Path(), want)
	}
	if _, err := repo.Load(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}

	if err := repo.Save(ctx, []byte(`{"theme":"dark"}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := repo.Load(ctx)
	if err != nil || string(data) != `{"theme":"dark"}` {
		t.Errorf("Load() = %s, %v", data, err)
	}

	entries, err := os.ReadDir(filepath.Join(root, ".navspec"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only preferences.json, found %d entries", len(entries))
	}
}

func TestRepositoryCancelled(t *testing.T) {
	repo, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Save(ctx, []byte("{}")); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() error = %v, want context.Canceled", err)
	}
}
