package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/navspec/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navspec/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/navspec/internal/httpserver/mw"
)

func init() { Register("preferences", registerPreferences) }

func registerPreferences(r chi.Router, d deps.Deps) {
	r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.PreferencesBurst,
		RefillPerIPPerMin: d.PreferencesPerMinute,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	})).Post("/api/preferences", handlers.UpdatePreferences(d))
}
