package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/navspec/internal/domain"
	"github.com/MrSnakeDoc/navspec/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navspec/internal/logger"
	"github.com/MrSnakeDoc/navspec/internal/sources/navspec"
)

const configNotFound = "Configuration not found"

type configsResponse struct {
	Configs []string `json:"configs"`
	Active  string   `json:"active"`
}

// Config serves one configuration. Without config_name the active
// configuration from the stored preferences is used.
func Config(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("config_name"))
		if name == "" {
			prefs, err := d.Preferences.Get(r.Context())
			if err != nil {
				d.Logger.Warn("failed to read preferences, using default configuration", logger.Error(err))
				prefs = domain.DefaultPreferences()
			}
			name = prefs.ActiveConfig
		}

		if cfg, ok := d.Index.Get(name); ok {
			writeJSON(w, http.StatusOK, cfg)
			return
		}

		// Not indexed yet (or invalid): read it from disk so a file added
		// between two reloads is served right away.
		cfg, err := d.Source.Load(name)
		if err != nil {
			if errors.Is(err, navspec.ErrConfigNotFound) {
				d.Logger.Debug("configuration not found", logger.String("config", name))
			} else {
				d.Logger.Warn("failed to load configuration",
					logger.String("config", name),
					logger.Error(err))
			}
			writeError(w, http.StatusNotFound, configNotFound)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

// Configs lists the available configurations and the active one.
func Configs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := d.Source.List()
		if err != nil {
			d.Logger.Error("failed to list configurations", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list configurations")
			return
		}

		active := domain.DefaultActiveConfig
		if prefs, err := d.Preferences.Get(r.Context()); err == nil {
			active = prefs.ActiveConfig
		} else {
			d.Logger.Warn("failed to read preferences", logger.Error(err))
		}

		writeJSON(w, http.StatusOK, configsResponse{Configs: names, Active: active})
	}
}
