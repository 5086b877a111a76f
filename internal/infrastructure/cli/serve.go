package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/nudge"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/sse"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/infrastructure/dashboard"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/storage"
)

var (
	serveAddr     string
	serveBasePath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Start the web dashboard.

Endpoints:
  GET  /             upload form and results
  GET  /charts       element totals chart
  GET  /export.csv   CSV download
  GET  /events       server-sent change events
  GET  /metrics      Prometheus metrics

When nudge.schedule is configured, review reminders run alongside.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("DRAFTY_SKIP_SERVE_START") == "true" {
			return nil
		}
		ctx, stop := signalContext(cmd)
		defer stop()

		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		ws := services.Workspace
		addr := serveAddr
		if addr == "" {
			addr = ws.Config.Dashboard.Addr
		}
		server, err := dashboard.NewServer(services.Controller, dashboard.Options{
			Addr:      addr,
			Prefix:    serveBasePath,
			UploadDir: filepath.Join(ws.Root, storage.DraftyDir, "uploads"),
			Flash:     services.Flash,
			Events:    sse.NewHandler(services.Events),
			Metrics:   services.Metrics.Handler(),
			Logger:    ws.Logger.Named("dashboard"),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize dashboard: %w", err)
		}

		if spec := ws.Config.Nudge.Schedule; spec != "" {
			sched, err := nudge.New(spec, reviewSource{services}, services.Events, services.Flash, ws.Logger.Named("nudge"))
			if err != nil {
				return err
			}
			go func() { _ = sched.Run(ctx) }()
		}

		go func() {
			<-ctx.Done()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down dashboard...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				ws.Logger.Warn("dashboard shutdown", zap.Error(err))
			}
		}()

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Dashboard on http://%s\nPress Ctrl+C to stop\n", addr)
		if err := server.Start(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: dashboard.addr)")
	serveCmd.Flags().StringVar(&serveBasePath, "base-path", "", "Mount the dashboard under this path, e.g. /drafty")
	RootCmd.AddCommand(serveCmd)
}
