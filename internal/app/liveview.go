package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/navspec/internal/client"
	"github.com/MrSnakeDoc/navspec/internal/config"
	"github.com/MrSnakeDoc/navspec/internal/liveview"
	"github.com/MrSnakeDoc/navspec/internal/logger"
)

const liveViewShutdownTimeout = 5 * time.Second

// LiveView runs a dashboard controller against a remote backend and serves
// it to the browser.
type LiveView struct {
	cfg        *config.LiveView
	logger     logger.Logger
	document   *liveview.Document
	controller *client.Controller
	server     *liveview.Server
}

func NewLiveView(cfg *config.LiveView, loggerClient logger.Logger) (*LiveView, error) {
	remote, err := client.NewRemote(cfg.ServerURL, nil)
	if err != nil {
		return nil, err
	}

	hub := liveview.NewHub(loggerClient.Named("hub"))
	doc := liveview.NewDocument(hub)
	ctrl := client.NewController(remote, doc, loggerClient.Named("controller"))

	return &LiveView{
		cfg:        cfg,
		logger:     loggerClient,
		document:   doc,
		controller: ctrl,
		server:     liveview.NewServer(cfg.Listen, doc, hub, ctrl, loggerClient),
	}, nil
}

// Document is the surface the controller paints on.
func (l *LiveView) Document() *liveview.Document { return l.document }

func (l *LiveView) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.server.Addr(), err)
	}
	return l.RunListener(ctx, ln)
}

// RunListener runs the controller and serves the page on ln until ctx is
// done. Pending preference writes are flushed before it returns.
func (l *LiveView) RunListener(ctx context.Context, ln net.Listener) error {
	l.logger.Info("opening dashboard", logger.String("backend", l.cfg.ServerURL))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return l.controller.Run(gctx)
	})

	g.Go(func() error {
		if err := l.server.Serve(ln); err != nil {
			return fmt.Errorf("live view server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), liveViewShutdownTimeout)
		defer cancel()
		return l.server.Stop(shutdownCtx)
	})

	return g.Wait()
}
