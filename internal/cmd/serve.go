package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/Wonki4/k8s-report-dashboard/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and Prometheus metrics",
	Long: `Serve the dashboard API over HTTP until interrupted.

Examples:
  # Listen on all interfaces, port 8000
  gpudash serve

  # Demo data on localhost
  gpudash serve --source mock --addr 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default $DASHBOARD_HOST:$DASHBOARD_PORT or 0.0.0.0:8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := newRepo(ctx, cfg)
	if err != nil {
		return err
	}
	srv := server.New(repo, server.Options{CORSOrigins: cfg.CORS.Origins})
	klog.InfoS("Serving dashboard API", "addr", cfg.Server.Addr, "source", cfg.Source)
	return srv.Run(ctx, cfg.Server.Addr)
}
