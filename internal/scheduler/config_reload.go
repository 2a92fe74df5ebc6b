package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/navspec/internal/index"
	"github.com/MrSnakeDoc/navspec/internal/logger"
	"github.com/MrSnakeDoc/navspec/internal/sources/navspec"
)

// ConfigSource scans the configuration directory.
type ConfigSource interface {
	LoadAll() (navspec.Snapshot, error)
}

// ConfigReloader keeps the memory index in sync with the config directory.
// A reload happens on start, every interval, and whenever the trigger
// channel fires (manual reload endpoint, file watcher).
type ConfigReloader struct {
	source   ConfigSource
	index    *index.MemoryIndex
	logger   logger.Logger
	interval time.Duration
	trigger  <-chan struct{}

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewConfigReloader creates a new config reloader
func NewConfigReloader(
	source ConfigSource,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	trigger <-chan struct{},
) *ConfigReloader {
	return &ConfigReloader{
		source:   source,
		index:    idx,
		logger:   log,
		interval: interval,
		trigger:  trigger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start loads the directory once, then keeps reloading in the background.
func (cr *ConfigReloader) Start(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer close(cr.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cr.reloadAndLog(ctx)
			case <-cr.trigger:
				cr.logger.Info("reload triggered")
				cr.reloadAndLog(ctx)
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader and waits for an in-flight reload to finish.
// It must only be called after a successful Start.
func (cr *ConfigReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
	<-cr.done
}

// Reload scans the directory and replaces the index content.
func (cr *ConfigReloader) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	snap, err := cr.source.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load configurations: %w", err)
	}

	for name, err := range snap.Errors {
		cr.logger.Warn("skipping invalid configuration",
			logger.String("config", name),
			logger.Error(err))
	}

	cr.index.Replace(snap.Names, snap.Configs, snap.Errors)

	cr.logger.Info("configurations reloaded",
		logger.Int("count", len(snap.Configs)),
		logger.Int("invalid", len(snap.Errors)),
		logger.Strings("names", snap.Names))
	return nil
}

func (cr *ConfigReloader) reloadAndLog(ctx context.Context) {
	if err := cr.Reload(ctx); err != nil {
		cr.logger.Error("failed to reload configurations", logger.Error(err))
	}
}
