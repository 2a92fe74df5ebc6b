package liveview

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/navspec/internal/logger"
)

// Server serves the live view of one controller.
type Server struct {
	http   *http.Server
	hub    *Hub
	logger logger.Logger
}

func NewServer(addr string, doc *Document, hub *Hub, input Input, log logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(doc, input, log),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		hub:    hub,
		logger: log,
	}
}

func (s *Server) Addr() string { return s.http.Addr }

// Start listens on the configured address and serves until Stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("live view listening", logger.String("url", "http://"+ln.Addr().String()))
	err := s.http.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop disconnects the pages, then shuts the server down. Websockets are
// hijacked connections that Shutdown does not wait for.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("live view shutting down...")
	s.hub.Close()
	return s.http.Shutdown(ctx)
}
