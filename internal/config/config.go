package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "NAVSPEC_"

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds the settings of the backend service (navspec serve).
type Config struct {
	Host            string        `env:"HOST" envDefault:"127.0.0.1"`
	Port            int           `env:"PORT" envDefault:"7777"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"` // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `env:"PRETTY_LOG" envDefault:"true"`

	ConfigPath     string        `env:"CONFIG_PATH" envDefault:"."`      // project root, configs live in <root>/config when present
	Watch          bool          `env:"WATCH" envDefault:"true"`         // reload on file changes
	ReloadInterval time.Duration `env:"RELOAD_INTERVAL" envDefault:"1h"` // periodic full rescan

	PreferencesBackend string `env:"PREFERENCES_BACKEND" envDefault:"file"` // "file" | "redis"
	Redis              Redis  `envPrefix:"REDIS_"`

	AllowedHosts []string `env:"ALLOWED_HOSTS"` // Host headers accepted on /api/reload
	AllowedCIDRS []string `env:"ALLOWED_CIDRS"` // client IPs accepted on /api/reload and /readyz
	TrustProxy   bool     `env:"TRUST_PROXY" envDefault:"false"`

	CORSAllowAll bool `env:"CORS_ALLOW_ALL" envDefault:"true"`

	PreferencesBurst     int `env:"PREFERENCES_BURST" envDefault:"30"`      // writes allowed at once per client
	PreferencesPerMinute int `env:"PREFERENCES_PER_MINUTE" envDefault:"60"` // sustained writes per client
}

// Redis configures the optional Redis preferences backend.
type Redis struct {
	Addr             string        `env:"ADDR" envDefault:"localhost:6379"`
	User             string        `env:"USERNAME"`
	Password         string        `env:"PASSWORD"`
	PasswordRequired bool          `env:"PASSWORD_REQUIRED" envDefault:"false"`
	DB               int           `env:"DB" envDefault:"0"`
	DialTimeout      time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout      time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	PoolSize         int           `env:"POOL_SIZE" envDefault:"10"`
	ConnectTimeout   time.Duration `env:"CONNECT_TIMEOUT" envDefault:"30s"` // total time to retry connecting
	RetryInterval    time.Duration `env:"RETRY_INTERVAL" envDefault:"2s"`   // grows exponentially
	MaxWait          time.Duration `env:"MAX_WAIT" envDefault:"10s"`
	PingTimeout      time.Duration `env:"PING_TIMEOUT" envDefault:"5s"`
	WarnThreshold    int           `env:"WARN_THRESHOLD" envDefault:"3"`
	Key              string        `env:"KEY" envDefault:"navspec:preferences"`
}

// LiveView holds the settings of the client host (navspec open).
type LiveView struct {
	ServerURL string `env:"SERVER_URL" envDefault:"http://127.0.0.1:7777"`
	Listen    string `env:"LISTEN" envDefault:"127.0.0.1:7778"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	PrettyLog bool   `env:"PRETTY_LOG" envDefault:"true"`
}

// Load reads the backend configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := parse(&cfg); err != nil {
		return nil, err
	}
	cfg.AllowedHosts = splitAndTrim(cfg.AllowedHosts)
	cfg.AllowedCIDRS = splitAndTrim(cfg.AllowedCIDRS)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadLiveView reads the live view configuration from the environment.
func LoadLiveView() (*LiveView, error) {
	var cfg LiveView
	if err := parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.ServerURL == "" {
		return nil, errors.New("server url must not be empty")
	}
	return &cfg, nil
}

func parse(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values that the environment parser cannot.
// It is called again after CLI flags were applied.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%sPORT must be between 1 and 65535, got %d", EnvPrefix, c.Port))
	}
	if c.ConfigPath == "" {
		errs = append(errs, fmt.Errorf("%sCONFIG_PATH must not be empty", EnvPrefix))
	}
	if c.ReloadInterval <= 0 {
		errs = append(errs, fmt.Errorf("%sRELOAD_INTERVAL must be > 0, got %v", EnvPrefix, c.ReloadInterval))
	}

	switch c.PreferencesBackend {
	case BackendFile:
	case BackendRedis:
		if c.Redis.PasswordRequired && c.Redis.Password == "" {
			errs = append(errs, fmt.Errorf("%sREDIS_PASSWORD is required when %sREDIS_PASSWORD_REQUIRED=true", EnvPrefix, EnvPrefix))
		}
	default:
		errs = append(errs, fmt.Errorf("%sPREFERENCES_BACKEND must be %q or %q, got %q",
			EnvPrefix, BackendFile, BackendRedis, c.PreferencesBackend))
	}

	return errors.Join(errs...)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.Redis.Password != "" {
		cp.Redis.Password = "***REDACTED***"
	}
	if cp.Redis.User != "" {
		cp.Redis.User = "***REDACTED***"
	}
	return cp
}

// splitAndTrim drops blanks and surrounding quotes from list entries.
func splitAndTrim(in []string) []string {
	out := make([]string, 0, len(in))
	for _, part := range in {
		trimmed := strings.Trim(strings.TrimSpace(part), `"'`)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
