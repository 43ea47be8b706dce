package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/mcp-training/jackaroo/internal/settings"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Jackaroo Game Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func testSettings(t *testing.T, backend string) *settings.Settings {
	t.Helper()
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	return &settings.Settings{
		Server:      settings.ServerSettings{Host: "localhost", Port: 8080},
		Configs:     settings.ConfigsSettings{Dir: "configs"},
		Log:         settings.LogSettings{Level: "debug"},
		Persistence: settings.PersistenceSettings{Backend: backend, Dir: t.TempDir()},
		Session: settings.SessionSettings{
			MaxAge:          time.Hour,
			CleanupInterval: time.Hour,
			SyncInterval:    time.Hour,
		},
	}
}

func TestInitializeServices(t *testing.T) {
	for _, backend := range []string{settings.BackendFile, settings.BackendNone} {
		t.Run(backend, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			svc, err := initializeServices(ctx, testSettings(t, backend), zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("Failed to initialize services: %v", err)
			}
			defer svc.close()

			info, err := svc.game.CreateSession(ctx, "")
			if err != nil {
				t.Fatalf("Failed to create session: %v", err)
			}
			if info.ConfigName != "classic" {
				t.Errorf("Expected default config classic, got %s", info.ConfigName)
			}
			if svc.sessions.Count() != 1 {
				t.Errorf("Expected 1 session, got %d", svc.sessions.Count())
			}
		})
	}
}

func TestInitializeServices_SQLite(t *testing.T) {
	s := testSettings(t, settings.BackendSQLite)
	s.Persistence.DSN = t.TempDir() + "/sessions.db"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := initializeServices(ctx, s, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.close()

	if _, err := svc.game.CreateSession(ctx, "quick"); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	s := testSettings(t, settings.BackendNone)
	s.Configs.Dir = "/non/existent/path"

	if _, err := initializeServices(context.Background(), s, zaptest.NewLogger(t)); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestLoadSettings_Flags(t *testing.T) {
	t.Chdir(t.TempDir())

	var got *settings.Settings
	cmd := newCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		var err error
		got, err = loadSettings(c)
		return err
	}

	args := []string{"jackaroo", "--port", "9191", "--persistence", "none", "--debug", "--config-dir", "rules"}
	if err := cmd.Run(context.Background(), args); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got.Server.Port != 9191 {
		t.Errorf("Expected port 9191, got %d", got.Server.Port)
	}
	if got.Persistence.Backend != settings.BackendNone {
		t.Errorf("Expected persistence none, got %s", got.Persistence.Backend)
	}
	if got.Log.Level != "debug" {
		t.Errorf("Expected debug level, got %s", got.Log.Level)
	}
	if got.Configs.Dir != "rules" {
		t.Errorf("Expected config dir rules, got %s", got.Configs.Dir)
	}
	if got.Server.Host != "localhost" {
		t.Errorf("Expected default host, got %s", got.Server.Host)
	}
}

func TestLoadSettings_InvalidBackend(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		_, err := loadSettings(c)
		return err
	}

	if err := cmd.Run(context.Background(), []string{"jackaroo", "--persistence", "tape"}); err == nil {
		t.Error("Expected error for unknown persistence backend")
	}
}

func TestCommands(t *testing.T) {
	cmd := newCommand()
	names := map[string]bool{}
	for _, sub := range cmd.Commands {
		names[sub.Name] = true
	}
	if !names["server"] || !names["stdio-mcp"] {
		t.Errorf("Expected server and stdio-mcp commands, got %v", names)
	}
	if cmd.Action == nil {
		t.Error("Root command should default to server mode")
	}
}

func TestRouter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := zaptest.NewLogger(t)
	svc, err := initializeServices(ctx, testSettings(t, settings.BackendNone), logger)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	ts := httptest.NewServer(newRouter(svc.game, nil, "http://127.0.0.1:0", logger))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /api/health, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/mcp")
	if err != nil {
		t.Fatalf("mcp request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 from GET /mcp, got %d", resp.StatusCode)
	}

	if !externalAPIAvailable(ts.URL) {
		t.Error("Expected the router to count as an available API")
	}
	if externalAPIAvailable("http://127.0.0.1:1") {
		t.Error("Expected no API on port 1")
	}
}
