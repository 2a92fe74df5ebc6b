package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/navspec/internal/app"
	"github.com/MrSnakeDoc/navspec/internal/config"
	"github.com/MrSnakeDoc/navspec/internal/logger"
)

type serveOptions struct {
	configPath string
	port       int
	host       string
	noReload   bool
	logLevel   string
}

func newServeCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Long: `Serve the dashboard configurations and preferences over HTTP.

Configurations are read from <config>/config when that folder exists, from
<config> otherwise. Every setting can also be given as a NAVSPEC_* variable;
flags win over the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := applyServeFlags(cmd, cfg, opts); err != nil {
				return err
			}

			log := logger.New(cfg.LogLevel, cfg.PrettyLog)
			defer func() { _ = log.Sync() }()

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", ".", "project directory, configs are read from its config/ subfolder when present")
	f.IntVarP(&opts.port, "port", "p", 7777, "port to serve on")
	f.StringVar(&opts.host, "host", "127.0.0.1", "host to bind to")
	f.BoolVar(&opts.noReload, "no-reload", false, "disable reloading on file changes")
	f.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	return cmd
}

// applyServeFlags overrides cfg with the flags set on the command line.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config, opts serveOptions) error {
	f := cmd.Flags()
	if f.Changed("config") {
		cfg.ConfigPath = opts.configPath
	}
	if f.Changed("port") {
		cfg.Port = opts.port
	}
	if f.Changed("host") {
		cfg.Host = opts.host
	}
	if f.Changed("no-reload") {
		cfg.Watch = !opts.noReload
	}
	if f.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	return cfg.Validate()
}
