// Package cli holds the navspec commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the navspec command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "navspec",
		Short: "A declarative navigation dashboard",
		Long: `navspec serves dashboards of categorized links described in YAML files,
remembers the selected dashboard and recently used links, and shows them in
the browser.`,
		Example: `  navspec init                       # create config/default.yaml
  navspec serve                      # serve ./config on 127.0.0.1:7777
  navspec serve --port 8080 --config ./dashboards
  navspec open                       # open the dashboard of a running server`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCommand(),
		newInitCommand(),
		newOpenCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
