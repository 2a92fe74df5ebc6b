package app

import (
	"context"
	"fmt"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/navspec/internal/config"
	"github.com/MrSnakeDoc/navspec/internal/httpserver"
	"github.com/MrSnakeDoc/navspec/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navspec/internal/index"
	"github.com/MrSnakeDoc/navspec/internal/logger"
	"github.com/MrSnakeDoc/navspec/internal/redis"
	"github.com/MrSnakeDoc/navspec/internal/scheduler"
	"github.com/MrSnakeDoc/navspec/internal/sources/navspec"
	"github.com/MrSnakeDoc/navspec/internal/store"
	"github.com/MrSnakeDoc/navspec/internal/store/file"
	redisstore "github.com/MrSnakeDoc/navspec/internal/store/redis"
	"github.com/MrSnakeDoc/navspec/internal/version"
)

// App is the backend service: configuration directory, preferences and
// the HTTP API in front of them.
type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	source      *navspec.Source
	memIndex    *index.MemoryIndex
	reloader    *scheduler.ConfigReloader
	watcher     *scheduler.DirWatcher
}

// New wires the backend. With the redis backend it blocks until Redis
// answers, so a missing server fails fast.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	red := cfg.Redacted()
	loggerClient.Debug("effective configuration",
		logger.String("addr", red.Addr()),
		logger.String("config_path", red.ConfigPath),
		logger.Bool("watch", red.Watch),
		logger.String("preferences", red.PreferencesBackend),
		logger.String("redis_addr", red.Redis.Addr),
		logger.String("redis_user", red.Redis.User),
		logger.String("redis_password", red.Redis.Password),
		logger.Strings("allowed_hosts", red.AllowedHosts),
		logger.Strings("allowed_cidrs", red.AllowedCIDRS))

	source, err := navspec.NewSource(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	created, err := source.EnsureDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to create default configuration: %w", err)
	}
	if created {
		loggerClient.Info("created default configuration",
			logger.String("file", navspec.DefaultConfigName),
			logger.String("dir", source.Dir()))
	}

	var (
		repo        store.Repository
		pinger      deps.Pinger
		redisClient *goredis.Client
	)
	switch cfg.PreferencesBackend {
	case config.BackendRedis:
		loggerClient.Info("connecting to redis", logger.String("addr", cfg.Redis.Addr))
		redisClient, err = redis.New(ctx, redis.OptionsFromConfig(cfg.Redis), loggerClient.Named("redis"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		rs := redisstore.NewStore(redisClient, cfg.Redis.Key)
		repo, pinger = rs, rs
		loggerClient.Info("redis initialized successfully", logger.String("key", rs.Key()))
	default:
		fs, err := file.New(source.Root())
		if err != nil {
			return nil, err
		}
		repo = fs
		loggerClient.Info("storing preferences on disk", logger.String("path", fs.Path()))
	}

	memIndex := index.NewMemoryIndex()
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewConfigReloader(
		source,
		memIndex,
		loggerClient.Named("reloader"),
		cfg.ReloadInterval,
		reloadTrigger,
	)

	var watcher *scheduler.DirWatcher
	if cfg.Watch {
		watcher = scheduler.NewDirWatcher(source.Dir(), reloadTrigger, loggerClient.Named("watcher"), scheduler.DefaultDebounce)
	} else {
		loggerClient.Info("file watching disabled, relying on periodic reload",
			logger.Duration("interval", cfg.ReloadInterval))
	}

	d := deps.Deps{
		Logger:               loggerClient,
		StartTime:            time.Now(),
		Version:              version.Version,
		Commit:               version.Commit,
		BuildDate:            version.BuildDate,
		GoVersion:            version.GoVersion,
		TimeNow:              time.Now,
		AllowedHosts:         cfg.AllowedHosts,
		AllowedCIDRS:         cfg.AllowedCIDRS,
		TrustProxy:           cfg.TrustProxy,
		CORSAllowAll:         cfg.CORSAllowAll,
		PreferencesBurst:     cfg.PreferencesBurst,
		PreferencesPerMinute: cfg.PreferencesPerMinute,
		Source:               source,
		Index:                memIndex,
		Preferences:          store.NewPreferences(repo, loggerClient.Named("preferences")),
		PrefsPinger:          pinger,
		ReloadTrigger:        reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg.Addr(), loggerClient, d),
		redisClient: redisClient,
		source:      source,
		memIndex:    memIndex,
		reloader:    reloader,
		watcher:     watcher,
	}, nil
}

// Run listens on the configured address and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr())
	if err != nil {
		a.closeRedis()
		return fmt.Errorf("failed to listen on %s: %w", a.server.Addr(), err)
	}
	return a.RunListener(ctx, ln)
}

// RunListener serves on ln until ctx is done, then shuts down gracefully.
func (a *App) RunListener(ctx context.Context, ln net.Listener) error {
	defer a.closeRedis()

	a.logger.Info(version.String())
	a.logger.Info("starting navspec",
		logger.String("addr", ln.Addr().String()),
		logger.String("config_dir", a.source.Dir()),
		logger.String("preferences", a.cfg.PreferencesBackend))

	if err := a.reloader.Start(ctx); err != nil {
		_ = ln.Close()
		return fmt.Errorf("failed to start config reloader: %w", err)
	}
	defer a.reloader.Stop()
	a.logger.Info("config reloader started",
		logger.Int("configs", a.memIndex.Count()),
		logger.Strings("names", a.memIndex.Names()),
		logger.Duration("interval", a.cfg.ReloadInterval))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Serve(ln); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	if a.watcher != nil {
		g.Go(func() error {
			// Losing the watcher only delays reloads until the next tick.
			if err := a.watcher.Run(gctx); err != nil {
				a.logger.Warn("config watcher stopped", logger.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("navspec stopped cleanly")
	return nil
}

func (a *App) closeRedis() {
	if a.redisClient == nil {
		return
	}
	if err := a.redisClient.Close(); err != nil {
		a.logger.Warn("failed to close redis", logger.Error(err))
		return
	}
	a.logger.Info("redis closed cleanly")
	a.redisClient = nil
}
