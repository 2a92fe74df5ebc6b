package handlers

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/MrSnakeDoc/navspec/internal/domain"
	"github.com/MrSnakeDoc/navspec/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navspec/internal/logger"
)

// maxPreferencesBody bounds POST /api/preferences payloads.
const maxPreferencesBody = 64 << 10

// UserConfig returns the preferences, the available configurations and the
// directory they are read from.
func UserConfig(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs, err := d.Preferences.Get(r.Context())
		if err != nil {
			d.Logger.Error("failed to read preferences", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to read preferences")
			return
		}

		names, err := d.Source.List()
		if err != nil {
			d.Logger.Error("failed to list configurations", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list configurations")
			return
		}

		writeJSON(w, http.StatusOK, domain.UserConfig{
			ConfigPath:       d.Source.Dir(),
			Preferences:      &prefs,
			AvailableConfigs: names,
		})
	}
}

// UpdatePreferences merges the known keys of a JSON object into the stored
// preferences. Unknown keys are ignored.
func UpdatePreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPreferencesBody+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		if len(body) > maxPreferencesBody {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		var patch map[string]json.RawMessage
		if err := json.Unmarshal(body, &patch); err != nil || patch == nil {
			writeError(w, http.StatusBadRequest, "body must be a JSON object")
			return
		}

		prefs, err := d.Preferences.Merge(r.Context(), patch)
		if err != nil {
			d.Logger.Warn("failed to update preferences", logger.Error(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		d.Logger.Debug("preferences updated",
			logger.String("active_config", prefs.ActiveConfig),
			logger.Int("recent_links", len(prefs.RecentLinks)))
		writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
	}
}
