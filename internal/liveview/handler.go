package liveview

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/navspec/internal/client"
	"github.com/MrSnakeDoc/navspec/internal/httpserver/mw"
	"github.com/MrSnakeDoc/navspec/internal/logger"
)

const (
	maxEventBody = 4 << 10

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Input is what the page can ask of the controller.
type Input interface {
	SwitchConfig(name string)
	ActivateLink(name string)
	KeyPress(k client.Key)
	OpenPreferences()
	Reload()
}

var _ Input = (*client.Controller)(nil)

type handler struct {
	doc      *Document
	input    Input
	logger   logger.Logger
	upgrader websocket.Upgrader
}

// NewHandler serves the page, its websocket and the input endpoints.
func NewHandler(doc *Document, input Input, log logger.Logger) http.Handler {
	h := &handler{
		doc:    doc,
		input:  input,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mw.Log(log))

	r.Get("/", h.page)
	r.Get("/state", h.state)
	r.Get("/ws", h.serveWS)

	r.Route("/events", func(r chi.Router) {
		r.Post("/switch", h.switchConfig)
		r.Post("/activate", h.activateLink)
		r.Post("/key", h.keyPress)
		r.Post("/preferences", h.openPreferences)
		r.Post("/retry", h.retry)
	})
	return r
}

func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := writePage(&buf, h.doc.View()); err != nil {
		h.logger.Error("failed to render page", logger.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.doc.View())
}

type switchRequest struct {
	Config string `json:"config"`
}

type activateRequest struct {
	Link string `json:"link"`
}

func (h *handler) switchConfig(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Config = strings.TrimSpace(req.Config)
	if req.Config == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "config is required"})
		return
	}
	h.input.SwitchConfig(req.Config)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) activateLink(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Link == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "link is required"})
		return
	}
	h.input.ActivateLink(req.Link)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) keyPress(w http.ResponseWriter, r *http.Request) {
	var k client.Key
	if !h.decode(w, r, &k) {
		return
	}
	h.input.KeyPress(k)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) openPreferences(w http.ResponseWriter, r *http.Request) {
	h.input.OpenPreferences()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) retry(w http.ResponseWriter, r *http.Request) {
	h.input.Reload()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err == nil {
		err = json.Unmarshal(body, out)
	}
	if err != nil {
		h.logger.Debug("rejecting malformed event",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event body"})
		return false
	}
	return true
}

// serveWS streams patches to one page until either side goes away.
func (h *handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logger.Error(err))
		return
	}

	log := h.logger.With(logger.String("remote_ip", r.RemoteAddr))
	log.Debug("live view page connected")
	defer log.Debug("live view page disconnected")

	s := newSubscriber()
	view := h.doc.subscribe(s)
	defer h.doc.unsubscribe(s)

	go h.readPump(conn, s)
	h.writePump(conn, s, view)
}

// readPump only watches for close frames and pongs. Pages talk back over
// the /events endpoints.
func (h *handler) readPump(conn *websocket.Conn, s *subscriber) {
	defer h.doc.unsubscribe(s)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read", logger.Error(err))
			}
			return
		}
	}
}

func (h *handler) writePump(conn *websocket.Conn, s *subscriber, view View) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	first, err := json.Marshal(Patch{Op: "view", Snapshot: &view})
	if err != nil {
		h.logger.Error("failed to encode view", logger.Error(err))
		return
	}
	if err := h.write(conn, websocket.TextMessage, first); err != nil {
		return
	}

	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				_ = h.write(conn, websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := h.write(conn, websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := h.write(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *handler) write(conn *websocket.Conn, kind int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(kind, data); err != nil {
		h.logger.Debug("websocket write", logger.Error(err))
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
