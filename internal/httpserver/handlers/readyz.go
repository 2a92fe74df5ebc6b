package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/navspec/internal/httpserver/deps"
)

const pingTimeout = 2 * time.Second

type componentStatus struct {
	OK         bool              `json:"ok"`
	Loaded     *int              `json:"loaded,omitempty"`
	Invalid    map[string]string `json:"invalid,omitempty"`
	LastReload string            `json:"last_reload,omitempty"`
	Backend    string            `json:"backend,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz reports ready once the config directory was indexed and the
// preferences backend answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"configs":     configsStatus(d),
			"preferences": preferencesStatus(r.Context(), d),
		}

		ready := true
		for _, c := range components {
			ready = ready && c.OK
		}

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, status, readyzResponse{Ready: ready, Components: components})
	}
}

func configsStatus(d deps.Deps) componentStatus {
	count := d.Index.Count()
	lastReload := d.Index.GetLastReload()
	if lastReload.IsZero() {
		return componentStatus{OK: false, Loaded: &count, LastReload: "never"}
	}
	failures := d.Index.Failures()
	if len(failures) == 0 {
		failures = nil
	}
	return componentStatus{
		OK:         true,
		Loaded:     &count,
		Invalid:    failures,
		LastReload: lastReload.Format(time.RFC3339),
	}
}

func preferencesStatus(ctx context.Context, d deps.Deps) componentStatus {
	backend := d.Preferences.Backend()
	if d.PrefsPinger == nil {
		return componentStatus{OK: true, Backend: backend}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := d.PrefsPinger.Ping(ctx); err != nil {
		return componentStatus{OK: false, Backend: backend, Error: err.Error()}
	}
	return componentStatus{OK: true, Backend: backend}
}
