package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailbox/internal/google"
	"github.com/teemow/gmailbox/internal/instrumentation"
	"github.com/teemow/gmailbox/internal/logging"
	"github.com/teemow/gmailbox/internal/server"
	"github.com/teemow/gmailbox/internal/tools/gmail_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode       bool
		transport       string
		httpAddr        string
		yolo            bool
		clientID        string
		clientSecret    string
		credentialsFile string
		metricsEnabled  bool
		metricsAddr     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing Gmail tools
for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode, providing only safe
  operations. Use --yolo to enable write operations (sending, deleting,
  trashing, label changes).

OAuth Configuration:
  --client-id and --client-secret flags, or the GMAIL_OAUTH_CLIENT_ID and
  GMAIL_OAUTH_CLIENT_SECRET env vars. No stored credential is needed up
  front: the first tool call opens a browser for the consent flow and the
  captured refresh token is persisted for later runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := applyMetricsEnv(MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}, cmd.Flags().Changed("metrics-enabled"), cmd.Flags().Changed("metrics-addr"))
			return runServe(transport, debugMode, httpAddr, yolo, clientID, clientSecret, credentialsFile, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (sending, deleting, labels). Default is read-only mode.")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Google OAuth client ID. Can also use GMAIL_OAUTH_CLIENT_ID env var.")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "Google OAuth client secret. Can also use GMAIL_OAUTH_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&credentialsFile, "credentials-file", "", "Path of the stored credential file. Can also use GMAILBOX_CREDENTIALS env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port (non-stdio transports). Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// applyMetricsEnv fills metrics settings from the environment for any
// value not set explicitly on the command line. Flags win over env vars.
func applyMetricsEnv(cfg MetricsConfig, enabledSet, addrSet bool) MetricsConfig {
	if !enabledSet && os.Getenv("METRICS_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if !addrSet {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			cfg.Addr = addr
		}
	}
	return cfg
}

func runServe(transport string, debugMode bool, httpAddr string, yolo bool, clientID, clientSecret, credentialsFile string, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.NewStderrLogger(debugMode)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	manager, err := buildManager(clientID, clientSecret, credentialsFile, logger)
	if err != nil {
		return err
	}
	manager.SetMetrics(provider.Metrics())

	serverContext, err := server.NewServerContext(shutdownCtx, server.Config{
		Manager:  manager,
		Logger:   logger,
		Metrics:  provider.Metrics(),
		ReadOnly: !yolo,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
			HealthChecker:           server.NewHealthChecker(serverContext),
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	mcpSrv := mcpserver.NewMCPServer("gmailbox", version,
		mcpserver.WithToolCapabilities(true),
	)

	if transport != "stdio" {
		if !yolo {
			log.Println("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
		} else {
			log.Println("Starting server with WRITE operations enabled (--yolo flag is set)")
		}
	}

	if err := gmail_tools.RegisterGmailTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Gmail tools: %w", err)
	}

	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, httpAddr, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// buildManager assembles the credential manager from flags and environment.
func buildManager(clientID, clientSecret, credentialsFile string, logger *slog.Logger) (*google.Manager, error) {
	oauthConfig, err := google.LoadOAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	if credentialsFile == "" {
		credentialsFile, err = google.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
	}

	return google.NewManager(oauthConfig, google.NewTokenStore(credentialsFile), logger), nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr string, logger *slog.Logger) error {
	httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	logger.Info("streamable HTTP server started", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	return nil
}
