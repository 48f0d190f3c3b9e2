// ABOUTME: Entry point for the mcpd MCP server
// ABOUTME: Wires config, auth gate, tool registry, and HTTP serving with graceful shutdown

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/mcpd/internal/auth"
	"github.com/2389/mcpd/internal/builtins"
	"github.com/2389/mcpd/internal/config"
	"github.com/2389/mcpd/internal/mcp"
	"github.com/2389/mcpd/internal/tools"
)

// version is set by goreleaser at build time.
var version = "dev"

const serverName = "mcpd"

const banner = `
                            _
 _ __ ___   ___ _ __   __| |
| '_ ' _ \ / __| '_ \ / _' |
| | | | | | (__| |_) | (_| |
|_| |_| |_|\___| .__/ \__,_|
               |_|
`

// getConfigPath returns the path to the mcpd config file.
// Priority: MCPD_CONFIG env var > XDG_CONFIG_HOME/mcpd/config.yaml > ~/.config/mcpd/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("MCPD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "mcpd", "config.yaml")
}

// loadConfig loads configuration, tolerating an absent default config
// file: the environment variables alone are a complete configuration.
func loadConfig() (*config.Config, string, error) {
	path := getConfigPath()
	if _, err := os.Stat(path); err != nil {
		if os.Getenv("MCPD_CONFIG") != "" {
			// An explicitly requested file must exist.
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: mcpd <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the MCP server")
		fmt.Println("  init     Create a starter config file")
		fmt.Println("  health   Check server health")
		fmt.Println("  token    Generate a random bearer secret")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	case "token":
		err = runToken()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if configPath != "" {
		green.Print("    ▶ ")
		fmt.Printf("Config:   %s\n", configPath)
	}
	green.Print("    ▶ ")
	fmt.Printf("Endpoint: %s\n", cfg.ResourceURL())
	if cfg.Metrics.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Metrics:  %s\n", cfg.Metrics.Path)
	}
	if cfg.Auth.Token == "" {
		yellow.Print("    ▶ ")
		fmt.Println("MCP_AUTH_TOKEN is not set; requests will be rejected with 500")
	}
	fmt.Println()

	logger.Info("starting mcpd",
		"addr", cfg.Addr(),
		"resource_url", cfg.ResourceURL(),
		"origin_allowlist_size", len(cfg.Auth.AllowedOrigins),
	)

	// Tool registration happens before the listener binds; the
	// registry is read-only once serving starts.
	registry := tools.NewRegistry(logger.With("component", "tools"))
	if err := builtins.Register(registry); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	gate := auth.NewGate(cfg.Auth.Token, cfg.Auth.AllowedOrigins, cfg.ResourceMetadataURL())

	metadata := auth.NewMetadata(
		cfg.ResourceURL(),
		cfg.OAuth.AuthorizationServers,
		cfg.OAuth.RequiredScope,
		cfg.OAuth.ResourceDocumentation,
	)

	var metrics *mcp.Metrics
	if cfg.Metrics.Enabled {
		metrics = mcp.NewMetrics()
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry:      registry,
		Gate:          gate,
		Logger:        logger.With("component", "mcp"),
		Metrics:       metrics,
		ServerName:    serverName,
		ServerVersion: version,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	mux := http.NewServeMux()
	mcpServer.RegisterRoutes(mux)
	auth.NewDiscoveryHandler(metadata, logger.With("component", "discovery")).RegisterRoutes(mux)
	if metrics != nil {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return runServer(ctx, logger, httpServer)
}

// runServer starts the HTTP server and blocks until the context is
// canceled or the server fails, then shuts down gracefully.
func runServer(ctx context.Context, logger *slog.Logger, httpServer *http.Server) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		logger.Error("server error", "error", serverErr)
	}

	// Fresh context for shutdown since the original is already canceled.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := httpServer.Shutdown(shutdownCtx)

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

const starterConfig = `server:
  host: "127.0.0.1"
  port: "8000"
  # public_url: "https://mcp.example.com"

auth:
  token: "${MCP_AUTH_TOKEN}"
  allowed_origins: []

oauth:
  authorization_servers: []
  # required_scope: "mcp:tools"
  # resource_documentation: "https://example.com/docs"

logging:
  level: "info"
  format: "text"

metrics:
  enabled: false
  path: "/metrics"
`

// runInit writes a starter config file, refusing to overwrite one.
func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(starterConfig), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Wrote %s\n", configPath)
	fmt.Println("Set MCP_AUTH_TOKEN (try: mcpd token) and run: mcpd serve")
	return nil
}

// runHealth probes the running server's health endpoint.
func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s/health", cfg.Addr())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// runToken prints a freshly generated bearer secret.
func runToken() error {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(base64.RawURLEncoding.EncodeToString(raw))
	return nil
}
