package app

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/navspec/internal/client"
	"github.com/MrSnakeDoc/navspec/internal/config"
	"github.com/MrSnakeDoc/navspec/internal/logger"
	"github.com/MrSnakeDoc/navspec/internal/sources/navspec"
)

func testConfig(root string) *config.Config {
	return &config.Config{
		Host:                 "127.0.0.1",
		Port:                 7777,
		ShutdownTimeout:      5 * time.Second,
		ConfigPath:           root,
		Watch:                true,
		ReloadInterval:       time.Hour,
		PreferencesBackend:   config.BackendFile,
		CORSAllowAll:         true,
		PreferencesBurst:     100,
		PreferencesPerMinute: 100,
	}
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	return ln
}

// start runs fn until the test ends and checks it stopped without error.
func start(t *testing.T, fn func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- fn(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("run returned %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Error("run did not stop")
		}
	})
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestNewCreatesDefaultConfig(t *testing.T) {
	root := t.TempDir()

	if _, err := New(context.Background(), testConfig(root), logger.Nop()); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, navspec.DefaultConfigName)); err != nil {
		t.Errorf("default config not created: %v", err)
	}
}

func TestNewLogsRedactedConfig(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Redis.User = "admin"
	cfg.Redis.Password = "hunter2"
	core, logs := observer.New(zap.DebugLevel)

	if _, err := New(context.Background(), cfg, logger.FromZap(zap.New(core))); err != nil {
		t.Fatalf("New() error = %v", err)
	}

	entries := logs.FilterMessage("effective configuration").All()
	if len(entries) != 1 {
		t.Fatalf("got %d effective configuration entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["redis_password"] != "***REDACTED***" || fields["redis_user"] != "***REDACTED***" {
		t.Errorf("credentials not redacted: %v", fields)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Error("logging modified the config")
	}
}

func TestNewMissingConfigPath(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing"))
	if _, err := New(context.Background(), cfg, logger.Nop()); err == nil {
		t.Fatal("New() error = nil, want missing directory error")
	}
}

func TestServeAndOpen(t *testing.T) {
	root := t.TempDir()
	if _, err := navspec.Init(root, "Acme", "Acme links"); err != nil {
		t.Fatal(err)
	}

	a, err := New(context.Background(), testConfig(root), logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	backendLn := listen(t)
	start(t, func(ctx context.Context) error { return a.RunListener(ctx, backendLn) })
	backendURL := "http://" + backendLn.Addr().String()

	remote, err := client.NewRemote(backendURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	var active string
	eventually(t, "backend", func() bool {
		c, err := remote.LoadConfig(context.Background(), "")
		active = c.Metadata.Name
		return err == nil
	})
	if active != "Acme" {
		t.Errorf("active config name = %q, want Acme", active)
	}

	// The watcher picks up a new file without a manual reload.
	extra := "metadata:\n  name: Extra\n"
	if err := os.WriteFile(filepath.Join(root, navspec.ConfigDirName, "extra.yaml"), []byte(extra), 0o644); err != nil {
		t.Fatal(err)
	}
	eventually(t, "watcher reload", func() bool {
		_, ok := a.memIndex.Get("extra.yaml")
		return ok
	})

	lv, err := NewLiveView(&config.LiveView{ServerURL: backendURL, Listen: "127.0.0.1:0"}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	viewLn := listen(t)
	start(t, func(ctx context.Context) error { return lv.RunListener(ctx, viewLn) })
	viewURL := "http://" + viewLn.Addr().String()

	eventually(t, "live view paint", func() bool {
		return strings.Contains(lv.Document().View().Main, "link-card")
	})
	if got := lv.Document().View().Title; got != "Acme - navspec Dashboard" {
		t.Errorf("title = %q", got)
	}

	resp, err := http.Post(viewURL+"/events/switch", "application/json", strings.NewReader(`{"config":"extra.yaml"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	eventually(t, "switch", func() bool { return lv.Document().View().Header == "Extra" })

	// The selection was written through the backend.
	eventually(t, "preferences saved", func() bool {
		resp, err := http.Get(backendURL + "/api/configs")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var body struct {
			Active string `json:"active"`
		}
		return json.NewDecoder(resp.Body).Decode(&body) == nil && body.Active == "extra.yaml"
	})
}
