package routes

import (
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/navspec/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navspec/internal/logger"
)

// Mounter adds a group of routes, with their middlewares, to r.
type Mounter func(r chi.Router, d deps.Deps)

type group struct {
	name  string
	mount Mounter
}

var groups []group

// Register adds a named route group. Route files call it from init.
func Register(name string, m Mounter) {
	groups = append(groups, group{name: name, mount: m})
}

// Groups lists the registered group names, sorted.
func Groups() []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.name)
	}
	sort.Strings(names)
	return names
}

// RegisterAll mounts every group on r. Called once from httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range groups {
		g.mount(r, d)
		if d.Logger != nil {
			d.Logger.Debug("routes mounted", logger.String("group", g.name))
		}
	}
}
