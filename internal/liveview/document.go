// Package liveview hosts a dashboard controller behind a browser page.
//
// A Document is the controller's rendering surface. Every change is kept as
// the current view and pushed to connected pages over a websocket; browser
// input comes back as plain POST requests.
package liveview

import (
	"sync"

	"github.com/MrSnakeDoc/navspec/internal/client"
)

// maxNotices bounds how many notifications a fresh page is replayed.
const maxNotices = 5

// View is what a page shows at a given time.
type View struct {
	Title    string          `json:"title"`
	Header   string          `json:"header"`
	Main     string          `json:"main"`
	Selector []client.Option `json:"selector"`
	Notices  []string        `json:"notices,omitempty"`
}

func (v View) clone() View {
	out := v
	out.Selector = append([]client.Option(nil), v.Selector...)
	out.Notices = append([]string(nil), v.Notices...)
	return out
}

// Patch is one change pushed to the pages. Op is "view" for a full
// snapshot, otherwise the name of the region it updates.
type Patch struct {
	Op       string          `json:"op"`
	Text     string          `json:"text,omitempty"`
	Options  []client.Option `json:"options,omitempty"`
	Snapshot *View           `json:"view,omitempty"`
}

// Document implements client.Surface.
type Document struct {
	mu   sync.Mutex
	view View
	hub  *Hub
}

var _ client.Surface = (*Document)(nil)

// NewDocument returns an empty document broadcasting through hub. A nil hub
// keeps the view without pushing it anywhere.
func NewDocument(hub *Hub) *Document {
	return &Document{hub: hub}
}

// View returns a copy of the current view.
func (d *Document) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view.clone()
}

func (d *Document) SetSelector(options []client.Option) {
	options = append([]client.Option(nil), options...)
	d.update(func(v *View) { v.Selector = options }, Patch{Op: "selector", Options: options})
}

func (d *Document) SetMain(markup string) {
	d.update(func(v *View) { v.Main = markup }, Patch{Op: "main", Text: markup})
}

func (d *Document) SetTitle(title string) {
	d.update(func(v *View) { v.Title = title }, Patch{Op: "title", Text: title})
}

func (d *Document) SetHeader(text string) {
	d.update(func(v *View) { v.Header = text }, Patch{Op: "header", Text: text})
}

func (d *Document) Notify(message string) {
	d.update(func(v *View) {
		v.Notices = append(v.Notices, message)
		if len(v.Notices) > maxNotices {
			v.Notices = v.Notices[len(v.Notices)-maxNotices:]
		}
	}, Patch{Op: "notify", Text: message})
}

// update applies fn and broadcasts p under the same lock, so a page that
// subscribes concurrently sees either the old view plus p or the new view.
func (d *Document) update(fn func(*View), p Patch) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.view)
	if d.hub != nil {
		d.hub.Broadcast(p)
	}
}

// subscribe registers a page and returns the view it must start from.
func (d *Document) subscribe(s *subscriber) View {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hub != nil {
		d.hub.add(s)
	}
	return d.view.clone()
}

func (d *Document) unsubscribe(s *subscriber) {
	if d.hub != nil {
		d.hub.remove(s)
		return
	}
	s.close()
}
