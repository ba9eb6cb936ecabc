package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rnwolfe/streak/internal/config"
	"github.com/rnwolfe/streak/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveEnvFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve streaks over HTTP",
	Long: `Run the HTTP API.

  POST /api/v1/users/{id}/activity   {"client_local": "2014-11-25T07:30:00"}
  GET  /api/v1/users/{id}/streak     [?offset=+09:00]
  GET  /api/v1/users/{id}/intervals
  GET  /health
  GET  /metrics                      (basic auth: STREAK_METRICS_USER/PASSWORD)

Settings come from the config file, then STREAK_* environment variables.
A .env file in the working directory is read first if present.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "Environment file to load")
}

func runServe(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(serveEnvFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading %s: %w", serveEnvFile, err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg.Server
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if cfg.MetricsUser == "" {
		a.logger.Warn("metrics endpoint is closed; set STREAK_METRICS_USER and STREAK_METRICS_PASSWORD to open it")
	}

	srv := server.New(a.tracker, a.history, cfg,
		server.WithLogger(a.logger),
		server.WithPinger(a.db.Conn()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting server",
		"addr", cfg.Addr,
		"db", config.GetPaths().DBFile,
		"max_engines", a.cfg.Cache.MaxEngines,
		"trust_proxy", cfg.TrustProxy,
	)
	return srv.ListenAndServe(ctx)
}
