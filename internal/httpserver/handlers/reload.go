package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/navspec/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navspec/internal/logger"
	"github.com/MrSnakeDoc/navspec/internal/utils"
)

// Reload queues a rescan of the configuration directory. At most one
// rescan is queued at a time.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := logger.String("remote_ip", utils.ClientIP(r, d.TrustProxy))

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("configuration reload requested", client)
			writeJSON(w, http.StatusAccepted, statusResponse{Status: "reload triggered"})
		default:
			d.Logger.Warn("configuration reload already pending", client)
			writeJSON(w, http.StatusTooManyRequests, statusResponse{Status: "reload already pending"})
		}
	}
}
