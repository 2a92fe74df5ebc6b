package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/navspec/internal/domain"
	"github.com/MrSnakeDoc/navspec/internal/index"
	"github.com/MrSnakeDoc/navspec/internal/logger"
	"github.com/MrSnakeDoc/navspec/internal/store"
)

// ConfigSource is the configuration directory as seen by handlers.
type ConfigSource interface {
	Dir() string
	List() ([]string, error)
	Load(name string) (domain.Configuration, error)
}

// Pinger checks an optional external dependency (Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed on /api/reload
	AllowedCIDRS []string // IPs allowed on /api/reload and /readyz
	TrustProxy   bool     // true if running behind a trusted reverse proxy
	CORSAllowAll bool     // answer CORS preflights for any origin

	PreferencesBurst     int // POST /api/preferences burst per client IP
	PreferencesPerMinute int // POST /api/preferences refill rate per client IP

	Source        ConfigSource
	Index         *index.MemoryIndex
	Preferences   *store.Preferences
	PrefsPinger   Pinger        // nil unless preferences live in Redis
	ReloadTrigger chan struct{} // manual reload of the config directory
}
