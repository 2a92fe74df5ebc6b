package liveview

import (
	"sync"

	"github.com/goccy/go-json"

	"github.com/MrSnakeDoc/navspec/internal/logger"
)

// sendBuffer is how many patches a page may lag behind before it is dropped.
const sendBuffer = 32

type subscriber struct {
	send chan []byte
	once sync.Once
}

func newSubscriber() *subscriber {
	return &subscriber{send: make(chan []byte, sendBuffer)}
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// Hub fans patches out to every connected page.
type Hub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	logger logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		logger: log,
	}
}

// Broadcast never blocks: a page whose buffer is full is disconnected and
// gets a fresh snapshot when it reconnects.
func (h *Hub) Broadcast(p Patch) {
	msg, err := json.Marshal(p)
	if err != nil {
		h.logger.Error("failed to encode patch", logger.String("op", p.Op), logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.send <- msg:
		default:
			h.logger.Warn("dropping slow live view client")
			delete(h.subs, s)
			s.close()
		}
	}
}

// Len returns the number of connected pages.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every page.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		delete(h.subs, s)
		s.close()
	}
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.close()
}
