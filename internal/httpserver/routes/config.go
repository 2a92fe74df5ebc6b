package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/navspec/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navspec/internal/httpserver/handlers"
)

func init() { Register("config", registerConfig) }

func registerConfig(r chi.Router, d deps.Deps) {
	r.Get("/api/config", handlers.Config(d))
	r.Get("/api/configs", handlers.Configs(d))
	r.Get("/api/user-config", handlers.UserConfig(d))
}
