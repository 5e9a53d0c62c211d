// Command greedygnomes starts the Greedy Gnomes solver server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from defaults, an optional settings file and GNOMES_ environment
// variables; flags given on the command line override all of them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
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
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/greedygnomes/api"
	"github.com/wricardo/mcp-training/greedygnomes/game/config"
	"github.com/wricardo/mcp-training/greedygnomes/game/service"
	"github.com/wricardo/mcp-training/greedygnomes/game/session"
	"github.com/wricardo/mcp-training/greedygnomes/game/settings"
	"github.com/wricardo/mcp-training/greedygnomes/game/solver"
	"github.com/wricardo/mcp-training/greedygnomes/transport/mcp"
	"github.com/wricardo/mcp-training/greedygnomes/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Greedy Gnomes Solver Server"
)

// Command line flags. Only flags set explicitly override loaded settings.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", getConfigDirDefault(), "Directory containing grid presets")
	sessionsDir  = flag.String("sessions-dir", "sessions", "Directory for file-backed sessions")
	store        = flag.String("store", settings.StoreFile, "Session store: memory, file or redis")
	settingsFile = flag.String("settings", "", "Settings file (yaml, json or toml)")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// getConfigDirDefault honors CONFIG_DIR, then falls back to "configs"
func getConfigDirDefault() string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		return configDir
	}
	return "configs"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %s_<KEY> overrides any settings key, e.g. %s_MAX_EXHAUSTIVE_STEPS=24\n", settings.EnvPrefix, settings.EnvPrefix)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                         # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -store redis            # Keep sessions in Redis\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s mcp -port 9090          # Run MCP stdio server with internal HTTP on port 9090\n", os.Args[0])
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// .env is optional
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	cfg, err := settings.Load(*settingsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if envErr == nil {
		log.Info("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		log.Warnw("error loading .env file", "error", envErr)
	}

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.Infow("starting", "app", AppName, "version", Version, "mode", mode,
		"store", cfg.Store, "max_exhaustive_steps", cfg.MaxExhaustiveSteps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, sessions, err := initializeServices(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize services", "error", err)
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(ctx, cfg, svc, log)

	case "server", "http":
		runHTTPServer(ctx, cfg, svc, log)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}

	if err := sessions.SaveAllSessions(); err != nil {
		log.Warnw("failed to save sessions on shutdown", "error", err)
	}
	log.Info("server stopped")
}

// applyFlags copies explicitly set flags over the loaded settings
func applyFlags(cfg *settings.Settings) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "host":
			cfg.Host = *host
		case "config-dir":
			cfg.ConfigDir = *configDir
		case "sessions-dir":
			cfg.SessionsDir = *sessionsDir
		case "store":
			cfg.Store = *store
		case "debug":
			cfg.Debug = *debug
		case "ngrok":
			cfg.NgrokEnabled = *ngrokEnabled
		case "ngrok-domain":
			cfg.NgrokDomain = *ngrokDomain
		}
	})
}

// newLogger builds a production logger, or a development one in debug mode.
// Both write to stderr so stdio MCP keeps stdout to itself.
func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// initializeServices wires the config and session managers into the solver service
// and starts the background session maintenance routines. They stop with ctx.
func initializeServices(ctx context.Context, cfg *settings.Settings, log *zap.SugaredLogger) (service.SolverService, *session.Manager, error) {
	configManager, err := config.NewManager(cfg.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := newPersistence(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	var sessionManager *session.Manager
	if persistence == nil {
		sessionManager = session.NewManager(log)
	} else {
		sessionManager = session.NewManagerWithPersistence(persistence, log)
		if err := sessionManager.LoadPersistedSessions(); err != nil {
			log.Warnw("failed to load persisted sessions", "error", err)
		}
		go persistenceSyncRoutine(ctx, sessionManager, persistence, log)
	}

	limits := solver.Limits{MaxExhaustiveSteps: cfg.MaxExhaustiveSteps}
	svc := service.NewSolverService(sessionManager, configManager, limits, log)

	if cfg.SessionTTL > 0 {
		go sessionCleanupRoutine(ctx, sessionManager, cfg.SessionTTL, log)
	}

	return svc, sessionManager, nil
}

// newPersistence returns the configured session store, or nil for memory only
func newPersistence(ctx context.Context, cfg *settings.Settings) (session.SessionPersistence, error) {
	switch cfg.Store {
	case settings.StoreMemory:
		return nil, nil
	case settings.StoreRedis:
		return session.NewRedisPersistence(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.SessionTTL)
	default:
		return session.NewFilePersistence(cfg.SessionsDir)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration, log *zap.SugaredLogger) {
	interval := time.Hour
	if ttl < interval {
		interval = ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Infow("cleaned up expired sessions", "removed", removed)
			}
		}
	}
}

// persistenceSyncRoutine drops in-memory sessions whose stored copy vanished,
// e.g. a deleted session file or an expired Redis key.
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, log *zap.SugaredLogger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned := 0
			for _, sess := range manager.List() {
				if persistence.Exists(sess.ID) {
					continue
				}
				if err := manager.DeleteFromMemory(sess.ID); err == nil {
					pruned++
					log.Debugw("pruned session from memory", "session_id", sess.ID)
				}
			}
			if pruned > 0 {
				log.Infow("persistence sync pruned orphaned sessions", "pruned", pruned)
			}
		}
	}
}

// newRouter combines the REST API and the /mcp JSON-RPC endpoint
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
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

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer serves the REST API, WebSocket hub and /mcp endpoint until ctx is done.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cfg *settings.Settings, svc service.SolverService, log *zap.SugaredLogger) {
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	addr := cfg.Addr()
	apiServer := api.NewServer(svc, hub, log)
	mcpClient := mcp.NewClient("http://" + addr)
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infow("HTTP server listening", "addr", addr,
			"api", "http://"+addr+"/api",
			"websocket", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("HTTP server failed", "error", err)
		}
	}()

	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg, mainRouter, log)
		}()
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnw("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, cfg *settings.Settings, handler http.Handler, log *zap.SugaredLogger) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
		if authToken == "" {
			authToken = os.Getenv("NGROK_AUTH_TOKEN")
		}
	}
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use -ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Errorw("failed to start ngrok tunnel", "error", err)
		return
	}

	ngrokURL := tun.URL()
	log.Infow("ngrok tunnel established", "url", ngrokURL,
		"api", ngrokURL+"/api", "mcp", ngrokURL+"/mcp")

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warnw("ngrok server error", "error", err)
	}
	if err := tun.Close(); err != nil {
		log.Debugw("ngrok tunnel close", "error", err)
	}
	log.Info("ngrok tunnel closed")
}

// externalAPIAvailable reports whether a server already answers on baseURL
func externalAPIAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses an API
// already listening on the configured address, or starts an internal one on
// a random loopback port.
func runStdioMCPWithInternalServer(ctx context.Context, cfg *settings.Settings, svc service.SolverService, log *zap.SugaredLogger) {
	baseURL := "http://" + cfg.Addr()

	if externalAPIAvailable(ctx, baseURL) {
		log.Infow("using external API server for MCP", "url", baseURL)
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalw("failed to get available port", "error", err)
		}
		baseURL = "http://" + listener.Addr().String()

		hub := websocket.NewHub(log)
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svc, hub, log)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		log.Infow("started internal HTTP server for MCP stdio", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ServeStdio(mcpClient.GetMCPServer())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Errorw("MCP stdio server error", "error", err)
		}
	case <-ctx.Done():
	}
}
