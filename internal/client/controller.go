package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/navspec/internal/domain"
	"github.com/MrSnakeDoc/navspec/internal/logger"
	"github.com/MrSnakeDoc/navspec/internal/render"
)

const (
	titleSuffix = " - navspec Dashboard"

	loadFailedMessage  = "Failed to load dashboard configuration"
	crashMessage       = "Failed to initialize dashboard"
	preferencesComing  = "Preferences panel coming in v2!"
	defaultEventBuffer = 64
)

// ErrNotRunning is returned by Snapshot once the controller has stopped.
var ErrNotRunning = errors.New("controller is not running")

// Controller drives the dashboard: it loads preferences and configurations,
// reacts to input and paints the surface.
//
// All state lives on the goroutine running Run. Input methods only enqueue
// events, so handlers never nest. Remote calls run on their own goroutines
// and report back through the same queue.
type Controller struct {
	backend Backend
	surface Surface
	syncer  *Syncer
	logger  logger.Logger

	events chan event
	done   chan struct{}

	// Owned by the Run goroutine.
	ctx     context.Context
	state   State
	gen     uint64 // bumped on every (re)start, stale generations are ignored
	seq     uint64 // last issued configuration load
	applied uint64 // last configuration load applied to the state
}

// NewController wires a controller. Nothing happens until Run.
func NewController(backend Backend, surface Surface, log logger.Logger) *Controller {
	return &Controller{
		backend: backend,
		surface: surface,
		syncer:  NewSyncer(backend, log),
		logger:  log,
		events:  make(chan event, defaultEventBuffer),
		done:    make(chan struct{}),
	}
}

// Run starts the session and processes events until ctx is cancelled.
// It waits for in-flight preference writes before returning.
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	defer close(c.done)
	defer c.syncer.Wait()

	c.start()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.events:
			c.dispatch(ev)
		}
	}
}

// SwitchConfig selects another configuration.
func (c *Controller) SwitchConfig(name string) { c.post(switchConfig{name: name}) }

// ActivateLink records that the user followed the named link.
func (c *Controller) ActivateLink(name string) { c.post(activateLink{name: name}) }

// KeyPress handles a keyboard chord.
func (c *Controller) KeyPress(k Key) { c.post(keyPress{key: k}) }

// OpenPreferences handles the preferences trigger.
func (c *Controller) OpenPreferences() { c.post(openPreferences{}) }

// Reload restarts the session from scratch, as a full page reload would.
// It is the only way out of PhaseFailed.
func (c *Controller) Reload() { c.post(reload{}) }

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	select {
	case c.events <- snapshotRequest{reply: reply}:
	case <-c.done:
		return State{}, ErrNotRunning
	case <-ctx.Done():
		return State{}, ctx.Err()
	}

	select {
	case s := <-reply:
		return s, nil
	case <-c.done:
		return State{}, ErrNotRunning
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// dispatch runs one handler inside a failure boundary: a panic ends in the
// error panel instead of killing the session.
func (c *Controller) dispatch(ev event) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("handler panic: %v", r)
			c.logger.Error("dashboard handler crashed",
				logger.String("event", fmt.Sprintf("%T", ev)),
				logger.Error(err))
			c.fail(err, crashMessage)
		}
	}()

	switch e := ev.(type) {
	case prefsLoaded:
		c.onPrefsLoaded(e)
	case configLoaded:
		c.onConfigLoaded(e)
	case switchConfig:
		c.onSwitchConfig(e)
	case activateLink:
		c.onActivateLink(e)
	case keyPress:
		c.onKeyPress(e)
	case openPreferences:
		c.onOpenPreferences()
	case reload:
		c.logger.Info("reloading dashboard")
		c.start()
	case snapshotRequest:
		e.reply <- c.state.clone()
	}
}

// start enters PhaseInitializing and fetches preferences.
func (c *Controller) start() {
	c.gen++
	c.applied = c.seq // anything in flight belongs to the previous session
	c.state = State{Phase: PhaseInitializing}
	c.surface.SetMain(render.Loading)

	gen, ctx := c.gen, c.ctx
	go func() {
		uc, err := c.backend.LoadPreferences(ctx)
		c.post(prefsLoaded{gen: gen, config: uc, err: err})
	}()
}

func (c *Controller) onPrefsLoaded(e prefsLoaded) {
	if e.gen != c.gen {
		return
	}

	if e.err != nil {
		// Not critical: the dashboard still loads the backend default.
		c.logger.Warn("failed to load user config", logger.Error(e.err))
	} else {
		c.state.Prefs = e.config.Preferences
		c.state.Available = e.config.AvailableConfigs
		if c.state.Prefs == nil {
			c.logger.Warn("backend returned no preferences")
		}
		c.surface.SetSelector(selectorOptions(c.state.Available, c.state.ActiveConfig()))
	}

	c.loadConfig("", nil)
}

// loadConfig fetches a configuration in the background. before, when set,
// runs on the same goroutine ahead of the fetch.
func (c *Controller) loadConfig(name string, before func(ctx context.Context)) {
	c.seq++
	seq, gen, ctx := c.seq, c.gen, c.ctx

	go func() {
		if before != nil {
			before(ctx)
		}
		cfg, err := c.backend.LoadConfig(ctx, name)
		c.post(configLoaded{gen: gen, seq: seq, name: name, config: cfg, err: err})
	}()
}

func (c *Controller) onConfigLoaded(e configLoaded) {
	if e.gen != c.gen || e.seq <= c.applied {
		c.logger.Debug("discarding stale configuration",
			logger.String("config", e.name),
			logger.Uint64("seq", e.seq),
			logger.Uint64("applied", c.applied))
		return
	}
	c.applied = e.seq

	if e.err != nil {
		c.logger.Error("failed to load dashboard",
			logger.String("config", e.name),
			logger.Error(e.err))
		c.fail(e.err, loadFailedMessage)
		return
	}

	cfg := e.config
	c.state.Config = &cfg
	c.state.Phase = PhaseReady
	c.state.Err = nil
	c.paint()
}

func (c *Controller) paint() {
	cfg := c.state.Config
	if cfg == nil {
		return
	}
	c.surface.SetTitle(cfg.Metadata.Name + titleSuffix)
	c.surface.SetHeader(cfg.Metadata.Name)
	c.surface.SetMain(render.Dashboard(*cfg, c.state.Prefs))
}

func (c *Controller) fail(err error, message string) {
	c.state.Phase = PhaseFailed
	c.state.Err = err
	c.surface.SetMain(render.ErrorPanel(message))
}

func (c *Controller) ready(what string) bool {
	if c.state.Phase == PhaseReady {
		return true
	}
	c.logger.Debug("ignoring input outside ready state",
		logger.String("input", what),
		logger.String("phase", c.state.Phase.String()))
	return false
}

func (c *Controller) onSwitchConfig(e switchConfig) {
	if !c.ready("switch") {
		return
	}
	c.logger.Info("switching configuration", logger.String("config", e.name))

	// The selection sticks even if the load below fails.
	var save func(ctx context.Context)
	if c.state.Prefs != nil {
		prefs := domain.SetActiveConfig(*c.state.Prefs, e.name)
		c.state.Prefs = &prefs
		snapshot := prefs.Clone()
		save = func(ctx context.Context) { _ = c.syncer.SynchronizeWait(ctx, snapshot) }
	} else {
		c.logger.Warn("preferences not loaded, selection will not be saved",
			logger.String("config", e.name))
	}

	c.loadConfig(e.name, save)
}

func (c *Controller) onActivateLink(e activateLink) {
	if !c.ready("activate") {
		return
	}
	if c.state.Prefs == nil {
		c.logger.Warn("preferences not loaded, link activation not recorded",
			logger.String("link", e.name))
		return
	}

	prefs := domain.RecordLinkActivation(*c.state.Prefs, e.name)
	c.state.Prefs = &prefs
	c.logger.Info("opening link", logger.String("link", e.name))
	c.syncer.Synchronize(c.ctx, prefs)
}

func (c *Controller) onKeyPress(e keyPress) {
	if !c.ready("key") {
		return
	}
	switch ShortcutFor(e.key) {
	case ShortcutSearch:
		c.logger.Debug("search shortcut pressed")
	case ShortcutRefresh:
		c.logger.Info("refreshing dashboard", logger.String("config", c.state.ActiveConfig()))
		c.loadConfig(c.state.ActiveConfig(), nil)
	}
}

func (c *Controller) onOpenPreferences() {
	if !c.ready("preferences") {
		return
	}
	c.surface.Notify(preferencesComing)
}

type event any

type (
	prefsLoaded struct {
		gen    uint64
		config domain.UserConfig
		err    error
	}
	configLoaded struct {
		gen    uint64
		seq    uint64
		name   string
		config domain.Configuration
		err    error
	}
	switchConfig    struct{ name string }
	activateLink    struct{ name string }
	keyPress        struct{ key Key }
	openPreferences struct{}
	reload          struct{}
	snapshotRequest struct{ reply chan State }
)
