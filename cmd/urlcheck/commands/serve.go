package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"tangled.org/atscan.net/urlcheck/engine"
	"tangled.org/atscan.net/urlcheck/server"
)

// Environment variables consulted by serve when the matching flag is not set
const (
	envModel = "URLCHECK_MODEL"
	envHost  = "HOST"
	envPort  = "PORT"
)

func NewServeCommand() *cobra.Command {
	var (
		host            string
		port            string
		envFile         string
		enableWebSocket bool
		logRequests     bool
		maxBatch        int
		workers         int
	)

	cmd := &cobra.Command{
		Use:     "serve [flags]",
		Aliases: []string{"server"},
		Short:   "Start the HTTP API",
		Long: `Start the HTTP API

Loads the model artifact once at startup. When it cannot be loaded the
server runs on heuristic rules for its whole lifetime; GET / reports
which path is active.

Endpoints:
  GET  /                health and model_loaded flag
  POST /api/check_url   evaluate {"url": "..."}
  POST /api/check_urls  evaluate {"urls": [...]}
  GET  /status          version, uptime, engine and model details
  GET  /ws              streaming evaluation (--websocket)

Settings can also come from the environment or a .env file:
  URLCHECK_MODEL, HOST, PORT`,

		Example: `  # Listen on the default 127.0.0.1:5000
  urlcheck serve

  # Public listener with websocket streaming
  urlcheck serve --host 0.0.0.0 --port 8080 --websocket

  # Use a compressed artifact and log each request
  urlcheck serve --model phishing_model.json.zst --log-requests`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}

			if !cmd.Flags().Changed("host") {
				host = envOr(envHost, host)
			}
			if !cmd.Flags().Changed("port") {
				port = envOr(envPort, port)
			}

			modelPath, _ := cmd.Root().PersistentFlags().GetString("model")
			if !cmd.Root().PersistentFlags().Changed("model") {
				modelPath = envOr(envModel, modelPath)
			}

			eng, logger := getEngine(&EngineOptions{Cmd: cmd, ModelPath: modelPath, Workers: workers})

			addr := net.JoinHostPort(host, port)

			srv := server.New(eng, &server.Config{
				Addr:            addr,
				EnableWebSocket: enableWebSocket,
				MaxBatch:        maxBatch,
				LogRequests:     logRequests,
				Version:         GetVersion(),
				Logger:          logger,
			})

			displayServerInfo(eng, addr, enableWebSocket)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
			}

			fmt.Fprintf(os.Stderr, "\n⚠️  Shutdown signal received...\n")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown failed: %w", err)
			}

			fmt.Fprintf(os.Stderr, "  ✓ Shutdown complete\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "HTTP server host")
	cmd.Flags().StringVar(&port, "port", "5000", "HTTP server port")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Environment file to load (ignored when missing)")
	cmd.Flags().BoolVar(&enableWebSocket, "websocket", false, "Enable the /ws streaming endpoint")
	cmd.Flags().BoolVar(&logRequests, "log-requests", false, "Log one line per HTTP request")
	cmd.Flags().IntVar(&maxBatch, "max-batch", 100, "Maximum URLs per /api/check_urls request")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Batch evaluation workers (0 = CPU count)")

	return cmd
}

// loadEnvFile loads KEY=VALUE pairs without overriding variables already set
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// displayServerInfo shows server configuration
func displayServerInfo(eng *engine.Engine, addr string, wsEnabled bool) {
	fmt.Printf("Starting urlcheck HTTP server...\n")
	fmt.Printf("  Listening: http://%s\n", addr)

	info := eng.ModelInfo()
	if eng.ModelLoaded() {
		fmt.Printf("  Model: %s (%s, %d features)\n", info.Path, info.Kind, info.NFeatures)
	} else {
		fmt.Printf("  Model: not loaded, using heuristic rules\n")
	}
	fmt.Printf("  State: %s\n", eng.State())

	if wsEnabled {
		fmt.Printf("  WebSocket: ENABLED (ws://%s/ws)\n", addr)
	} else {
		fmt.Printf("  WebSocket: disabled (use --websocket to enable)\n")
	}

	fmt.Printf("\nPress Ctrl+C to stop\n\n")
}
