package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/navspec/internal/app"
	"github.com/MrSnakeDoc/navspec/internal/config"
	"github.com/MrSnakeDoc/navspec/internal/logger"
)

func newOpenCommand() *cobra.Command {
	var server, listen string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Serve the dashboard page of a running server",
		Long: `Run the dashboard against a navspec server and serve it as a page that
updates live. Defaults come from NAVSPEC_SERVER_URL and NAVSPEC_LISTEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadLiveView()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("server") {
				cfg.ServerURL = server
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}

			log := logger.New(cfg.LogLevel, cfg.PrettyLog)
			defer func() { _ = log.Sync() }()

			lv, err := app.NewLiveView(cfg, log)
			if err != nil {
				return err
			}
			return lv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://127.0.0.1:7777", "navspec server URL")
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:7778", "address the dashboard page is served on")
	return cmd
}
