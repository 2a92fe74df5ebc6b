// Package store persists user preferences behind a small repository
// interface with a JSON file and a Redis implementation.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/MrSnakeDoc/navspec/internal/domain"
	"github.com/MrSnakeDoc/navspec/internal/logger"
)

// ErrNotFound is returned by a Repository that holds no preferences yet.
var ErrNotFound = errors.New("preferences not found")

// Repository stores the raw preference document.
type Repository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Name() string
}

// Preferences serializes access to the single preference document.
type Preferences struct {
	repo   Repository
	logger logger.Logger

	mu sync.Mutex
}

// NewPreferences wraps repo.
func NewPreferences(repo Repository, log logger.Logger) *Preferences {
	return &Preferences{repo: repo, logger: log}
}

// Backend names the underlying repository ("file", "redis").
func (p *Preferences) Backend() string { return p.repo.Name() }

// Get returns the stored preferences. A missing or unreadable document
// yields the defaults.
func (p *Preferences) Get(ctx context.Context) (domain.UserPreferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.get(ctx)
}

// Merge applies a partial update and persists the result.
// On error nothing is written.
func (p *Preferences) Merge(ctx context.Context, patch map[string]json.RawMessage) (domain.UserPreferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, err := p.get(ctx)
	if err != nil {
		return domain.UserPreferences{}, err
	}

	next, err := domain.MergePreferences(current, patch)
	if err != nil {
		return current, err
	}

	if err := p.put(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

func (p *Preferences) get(ctx context.Context) (domain.UserPreferences, error) {
	data, err := p.repo.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return domain.DefaultPreferences(), nil
	}
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("failed to load preferences from %s: %w", p.repo.Name(), err)
	}

	prefs, err := domain.DecodePreferences(data)
	if err != nil {
		p.logger.Warn("stored preferences are corrupt, using defaults",
			logger.String("backend", p.repo.Name()),
			logger.Error(err))
		return domain.DefaultPreferences(), nil
	}
	return prefs, nil
}

func (p *Preferences) put(ctx context.Context, prefs domain.UserPreferences) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := p.repo.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save preferences to %s: %w", p.repo.Name(), err)
	}
	return nil
}
