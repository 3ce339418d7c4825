package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Myangsun/HiyaDrive"
	"github.com/Myangsun/HiyaDrive/internal/cli"
	httpadapter "github.com/Myangsun/HiyaDrive/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the agent over HTTP: sessions are started with POST /sessions, followed
with GET /sessions/{id}/events (Server-Sent Events) and scraped at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		ctx, stop := cli.WithInterrupt(cmd.Context())
		defer stop()

		app, err := cli.Build(ctx, cfg, cli.Options{})
		if err != nil {
			return err
		}
		defer app.Close()
		logger := app.Logger

		api := httpadapter.NewServer(app.Agent,
			httpadapter.WithStreams(app.Streams),
			httpadapter.WithMetricsHandler(promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})),
			httpadapter.WithVersion(hiyadrive.Version),
			httpadapter.WithLogger(logger),
		)
		defer api.Close()

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting HTTP server", "addr", srv.Addr, "version", hiyadrive.Version)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
			logger.Info("shutting down", "cause", context.Cause(ctx))
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			_ = srv.Close()
		}
		logger.Info("HTTP server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default http.addr from config)")
}
