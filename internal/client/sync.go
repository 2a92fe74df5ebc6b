package client

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/navspec/internal/domain"
	"github.com/MrSnakeDoc/navspec/internal/logger"
)

// PreferenceWriter persists the full preference object remotely.
type PreferenceWriter interface {
	SavePreferences(ctx context.Context, prefs domain.UserPreferences) error
}

// Syncer pushes preference snapshots to the backend.
//
// Writes are best-effort and unordered: no retry, no versioning, and when two
// writes overlap whichever completes last decides the remote copy. Local
// state is never rolled back.
type Syncer struct {
	writer PreferenceWriter
	logger logger.Logger
	wg     sync.WaitGroup
}

// NewSyncer creates a syncer writing through w.
func NewSyncer(w PreferenceWriter, log logger.Logger) *Syncer {
	return &Syncer{writer: w, logger: log}
}

// Synchronize writes a snapshot of prefs in the background. Failures are
// logged and dropped.
func (s *Syncer) Synchronize(ctx context.Context, prefs domain.UserPreferences) {
	snapshot := prefs.Clone()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.SynchronizeWait(ctx, snapshot)
	}()
}

// SynchronizeWait writes prefs and returns once the backend answered. The
// error is logged before being returned.
func (s *Syncer) SynchronizeWait(ctx context.Context, prefs domain.UserPreferences) error {
	if err := s.writer.SavePreferences(ctx, prefs); err != nil {
		s.logger.Warn("failed to save preferences",
			logger.String("active_config", prefs.ActiveConfig),
			logger.Error(err))
		return err
	}

	s.logger.Debug("preferences saved",
		logger.String("active_config", prefs.ActiveConfig),
		logger.Int("recent_links", len(prefs.RecentLinks)))
	return nil
}

// Wait blocks until every background write has finished.
func (s *Syncer) Wait() {
	s.wg.Wait()
}
