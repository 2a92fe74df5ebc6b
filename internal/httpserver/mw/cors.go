package mw

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets browser pages served from another origin call the API. With
// allowAll unset only local origins are accepted.
func CORS(allowAll bool) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}
	if allowAll {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.Handler(opts)
}
