package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/navspec/internal/sources/navspec"
)

type initOptions struct {
	configPath  string
	name        string
	description string
	yes         bool
}

// confirmFunc asks a yes/no question.
type confirmFunc func(label string, in io.ReadCloser, out io.WriteCloser) (bool, error)

func promptConfirm(label string, in io.ReadCloser, out io.WriteCloser) (bool, error) {
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     in,
		Stdout:    out,
	}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func newInitCommand() *cobra.Command {
	return newInitCommandWith(promptConfirm)
}

func newInitCommandWith(confirm confirmFunc) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new dashboard configuration",
		Long: `Create a config/ folder and write config/default.yaml with a sample
category. Existing configurations are only overwritten after confirmation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts, confirm)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", ".", "project directory, the config/ subfolder is created in it")
	f.StringVar(&opts.name, "name", navspec.DefaultName, "dashboard name")
	f.StringVar(&opts.description, "description", navspec.DefaultDescription, "dashboard description")
	f.BoolVarP(&opts.yes, "yes", "y", false, "overwrite existing configurations without asking")
	return cmd
}

func runInit(cmd *cobra.Command, opts initOptions, confirm confirmFunc) error {
	out := cmd.OutOrStdout()

	root, err := filepath.Abs(opts.configPath)
	if err != nil {
		return err
	}
	dir := filepath.Join(root, navspec.ConfigDirName)

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		fmt.Fprintf(out, "Using existing configuration directory: %s\n", dir)

		src, err := navspec.NewSource(root)
		if err != nil {
			return err
		}
		existing, err := src.Existing()
		if err != nil {
			return err
		}
		if len(existing) > 0 && !opts.yes {
			fmt.Fprintf(out, "WARNING: Found existing configurations: %s\n", strings.Join(existing, ", "))
			ok, err := confirm("Do you want to overwrite", io.NopCloser(cmd.InOrStdin()), nopWriteCloser{out})
			if err != nil {
				return fmt.Errorf("confirmation: %w", err)
			}
			if !ok {
				fmt.Fprintln(out, "Initialization cancelled.")
				return nil
			}
		}
	} else {
		fmt.Fprintf(out, "Creating configuration directory: %s\n", dir)
	}

	if _, err := navspec.Init(root, opts.name, opts.description); err != nil {
		return fmt.Errorf("initializing dashboard: %w", err)
	}

	fmt.Fprintln(out, "Dashboard initialized successfully!")
	fmt.Fprintf(out, "Configuration files created in: %s\n", dir)
	fmt.Fprintln(out, "Run 'navspec serve' to start the dashboard")
	fmt.Fprintln(out, "Add more dashboards by creating new YAML files in the config/ folder")
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
