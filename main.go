// Command jackaroo starts the Jackaroo game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from jackaroo.yaml and JACKAROO_* environment variables (a
// .env file is loaded first); flags override both.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/jackaroo/api"
	"github.com/wricardo/mcp-training/jackaroo/game/config"
	"github.com/wricardo/mcp-training/jackaroo/game/service"
	"github.com/wricardo/mcp-training/jackaroo/game/session"
	"github.com/wricardo/mcp-training/jackaroo/internal/logging"
	"github.com/wricardo/mcp-training/jackaroo/internal/settings"
	"github.com/wricardo/mcp-training/jackaroo/transport/mcp"
	"github.com/wricardo/mcp-training/jackaroo/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Jackaroo Game Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "jackaroo",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "settings file (default: ./jackaroo.yaml when present)"},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Usage: "directory containing rule configurations"},
			&cli.StringFlag{Name: "persistence", Usage: "session store: file, redis, sqlite, postgres or none"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token (or NGROK_AUTHTOKEN)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain"},
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run MCP stdio server with internal HTTP server",
				Action:  runStdioMCP,
			},
		},
		Action: runServer,
	}
}

// loadSettings reads settings and applies any flags the user set
func loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	s, err := settings.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		s.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Server.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("config-dir") {
		s.Configs.Dir = cmd.String("config-dir")
	}
	if cmd.IsSet("persistence") {
		s.Persistence.Backend = cmd.String("persistence")
	}
	if cmd.Bool("debug") {
		s.Log.Level = "debug"
	}
	if cmd.Bool("ngrok") {
		s.Ngrok.Enabled = true
	}
	if cmd.IsSet("ngrok-auth") {
		s.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		s.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	return s, s.Validate()
}

// services is everything both modes share
type services struct {
	game     service.GameService
	sessions *session.Manager
	close    func()
}

func setup(ctx context.Context, cmd *cli.Command) (*settings.Settings, *zap.Logger, *services, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.New(s.Log.Level, s.Log.Format)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc, err := initializeServices(ctx, s, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return s, logger, svc, nil
}

// newPersistence opens the configured session store. The returned closer
// releases its connection.
func newPersistence(s *settings.Settings, configManager *config.Manager) (session.SessionPersistence, func(), error) {
	noop := func() {}

	switch s.Persistence.Backend {
	case settings.BackendNone:
		return nil, noop, nil

	case settings.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: s.Persistence.RedisAddr})
		p, err := session.NewRedisPersistence(client, configManager, 0)
		if err != nil {
			client.Close()
			return nil, noop, err
		}
		return p, func() { client.Close() }, nil

	case settings.BackendSQLite, settings.BackendPostgres:
		driver := session.DriverSQLite
		if s.Persistence.Backend == settings.BackendPostgres {
			driver = session.DriverPostgres
		}
		p, err := session.OpenSQLPersistence(driver, s.Persistence.DSN, configManager)
		if err != nil {
			return nil, noop, err
		}
		return p, func() { p.Close() }, nil

	default:
		p, err := session.NewFilePersistence(s.Persistence.Dir, configManager)
		if err != nil {
			return nil, noop, err
		}
		return p, noop, nil
	}
}

// initializeServices wires session/config managers and the game service.
// It also starts the background cleanup and sync routines, which stop with ctx.
func initializeServices(ctx context.Context, s *settings.Settings, logger *zap.Logger) (*services, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(s.Configs.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, closePersistence, err := newPersistence(s, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	var sessionManager *session.Manager
	if persistence == nil {
		sessionManager = session.NewManager(session.WithLogger(logger))
	} else {
		sessionManager = session.NewManagerWithPersistence(persistence, session.WithLogger(logger))
		if err := sessionManager.LoadPersistedSessions(); err != nil {
			logger.Warn("failed to load persisted sessions", zap.Error(err))
		}
	}

	logger.Info("services initialized",
		zap.String("configs", s.Configs.Dir),
		zap.String("persistence", s.Persistence.Backend),
		zap.Int("sessions", sessionManager.Count()),
	)

	go sessionCleanupRoutine(ctx, sessionManager, s.Session.CleanupInterval, s.Session.MaxAge, logger)
	if persistence != nil {
		go persistenceSyncRoutine(ctx, sessionManager, s.Session.SyncInterval, logger)
	}

	return &services{
		game:     service.NewGameService(sessionManager, configManager, logger),
		sessions: sessionManager,
		close:    closePersistence,
	}, nil
}

// sessionCleanupRoutine periodically evicts sessions that have not been
// accessed within maxAge. Persisted copies stay and reload on demand.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, maxAge time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				logger.Debug("cleanup pass finished", zap.Int("removed", removed))
			}
		}
	}
}

// persistenceSyncRoutine drops in-memory sessions whose persisted copy was
// removed out from under the server (a deleted file, an expired key).
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := manager.PruneMissing(); len(pruned) > 0 {
				logger.Info("pruned orphaned sessions from memory", zap.Strings("sessions", pruned))
			}
		}
	}
}

// mcpHandler serves single JSON-RPC messages posted to /mcp
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the API at the root and the MCP proxy at /mcp
func newRouter(gameService service.GameService, hub *websocket.Hub, baseURL string, logger *zap.Logger) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(gameService, hub, logger))
	mainRouter.HandleFunc("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	return mainRouter
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	s, logger, svc, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer svc.close()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	addr := s.Server.Addr()
	handler := newRouter(svc.game, hub, "http://"+addr, logger)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)),
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if s.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, s.Ngrok, handler, logger)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serverErr:
		logger.Error("HTTP server failed", zap.Error(err))
		return err
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}
	if err := svc.sessions.SaveAllSessions(); err != nil {
		logger.Warn("failed to save sessions on shutdown", zap.Error(err))
	}

	wg.Wait()
	logger.Info("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, cfg settings.NgrokSettings, handler http.Handler, logger *zap.Logger) {
	if cfg.AuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("mcp", ngrokURL+"/mcp"),
	)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// externalAPIAvailable reports whether a Jackaroo API answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening on
// the configured address; otherwise it starts an internal API on a random
// loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	externalURL := "http://" + s.Server.Addr()
	if externalAPIAvailable(externalURL) {
		logger, err := logging.New(s.Log.Level, s.Log.Format)
		if err != nil {
			return err
		}
		defer logger.Sync()
		logger.Info("MCP stdio server ready (using external HTTP server)", zap.String("api", externalURL))
		return server.ServeStdio(mcp.NewClient(externalURL).GetMCPServer())
	}

	_, logger, svc, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer svc.close()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to get available port: %w", err)
	}
	internalURL := "http://" + listener.Addr().String()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(svc.game, hub, logger)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("internal HTTP server error", zap.Error(err))
		}
	}()
	defer httpServer.Close()

	logger.Info("MCP stdio server ready (using internal HTTP server)", zap.String("api", internalURL))
	return server.ServeStdio(mcp.NewClient(internalURL).GetMCPServer())
}
