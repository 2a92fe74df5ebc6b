package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/navspec/internal/config"
	"github.com/MrSnakeDoc/navspec/internal/sources/navspec"
	"github.com/MrSnakeDoc/navspec/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, version.Version) || !strings.HasPrefix(out, "navspec ") {
		t.Errorf("output = %q", out)
	}
}

func TestInitFresh(t *testing.T) {
	root := t.TempDir()

	out, err := execute(t, "init", "--config", root, "--name", "Acme", "--description", "Acme tools")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Dashboard initialized successfully!") {
		t.Errorf("output = %q", out)
	}

	src, err := navspec.NewSource(root)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := src.Load(navspec.DefaultConfigName)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Metadata.Name != "Acme" || cfg.Metadata.Description != "Acme tools" {
		t.Errorf("metadata = %+v", cfg.Metadata)
	}
}

func runInitWith(t *testing.T, root string, confirm confirmFunc, extra ...string) string {
	t.Helper()
	cmd := newInitCommandWith(confirm)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", root, "--name", "New"}, extra...))
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func existingDashboard(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if _, err := navspec.Init(root, "Old", ""); err != nil {
		t.Fatal(err)
	}
	return root
}

func activeName(t *testing.T, root string) string {
	t.Helper()
	src, err := navspec.NewSource(root)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := src.Load(navspec.DefaultConfigName)
	if err != nil {
		t.Fatal(err)
	}
	return cfg.Metadata.Name
}

func TestInitExisting(t *testing.T) {
	tests := []struct {
		name     string
		answer   bool
		wantName string
		wantOut  string
	}{
		{"declined", false, "Old", "Initialization cancelled."},
		{"confirmed", true, "New", "Dashboard initialized successfully!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := existingDashboard(t)
			var asked string
			confirm := func(label string, _ io.ReadCloser, _ io.WriteCloser) (bool, error) {
				asked = label
				return tt.answer, nil
			}

			out := runInitWith(t, root, confirm)

			if asked != "Do you want to overwrite" {
				t.Errorf("prompt label = %q", asked)
			}
			if !strings.Contains(out, "WARNING: Found existing configurations: default.yaml") {
				t.Errorf("output = %q", out)
			}
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("output = %q, want %q", out, tt.wantOut)
			}
			if got := activeName(t, root); got != tt.wantName {
				t.Errorf("name = %q, want %q", got, tt.wantName)
			}
		})
	}
}

func TestInitYesSkipsPrompt(t *testing.T) {
	root := existingDashboard(t)
	confirm := func(string, io.ReadCloser, io.WriteCloser) (bool, error) {
		t.Fatal("prompted despite --yes")
		return false, nil
	}

	runInitWith(t, root, confirm, "--yes")

	if got := activeName(t, root); got != "New" {
		t.Errorf("name = %q, want New", got)
	}
}

func TestApplyServeFlags(t *testing.T) {
	t.Setenv("NAVSPEC_PORT", "9000")
	t.Setenv("NAVSPEC_HOST", "0.0.0.0")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}

	cmd := newServeCommand()
	if err := cmd.ParseFlags([]string{"--port", "8080", "--no-reload", "--config", "/srv/dash"}); err != nil {
		t.Fatal(err)
	}
	opts := serveOptions{configPath: "/srv/dash", port: 8080, host: "127.0.0.1", noReload: true, logLevel: "info"}
	if err := applyServeFlags(cmd, cfg, opts); err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want flag value 8080", cfg.Port)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want env value kept", cfg.Host)
	}
	if cfg.Watch {
		t.Error("Watch = true, want disabled by --no-reload")
	}
	if cfg.ConfigPath != "/srv/dash" {
		t.Errorf("ConfigPath = %q", cfg.ConfigPath)
	}
}

func TestServeRejectsInvalidPort(t *testing.T) {
	_, err := execute(t, "serve", "--port", "70000", "--config", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "PORT") {
		t.Fatalf("error = %v, want port validation error", err)
	}
}

func TestServeMissingConfigPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := execute(t, "serve", "--config", missing); err == nil {
		t.Fatal("serve on a missing directory succeeded")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Errorf("serve created %s", missing)
	}
}

func TestOpenRejectsServerURL(t *testing.T) {
	_, err := execute(t, "open", "--server", "ftp://example.com")
	if err == nil || !strings.Contains(err.Error(), "scheme") {
		t.Fatalf("error = %v, want scheme error", err)
	}
}
