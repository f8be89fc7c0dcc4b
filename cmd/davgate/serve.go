package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avendal/davgate"
	"github.com/avendal/davgate/dispatch"
	davhttp "github.com/avendal/davgate/http"
	"github.com/avendal/davgate/reaper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WebDAV gateway server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFromContext(cmd.Context())
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Scope.Root, 0o755); err != nil {
			return fmt.Errorf("create scope root %q: %w", cfg.Scope.Root, err)
		}

		engine := dispatch.NewEngine(
			cfg.Scope.Path,
			cfg.Scope.Root,
			cfg.Server.MaxUploadSize,
			davhttp.EngineLogger(),
		)

		var reap *reaper.Reaper
		if cfg.Reaper.Enabled {
			reap = reaper.New(cfg.Reaper.MaxAge)
		}

		gateway := davhttp.NewGateway(
			davhttp.GatewayConfig{ScopePath: cfg.Scope.Path},
			davgate.StaticResolver{Segment: cfg.Scope.Segment},
			engine,
			reap,
		)

		handler := gateway.Router(davhttp.RouterConfig{
			CORS: cfg.CORS,
			RateLimit: davhttp.RateLimitConfig{
				Enabled: cfg.RateLimit.Enabled,
				RPS:     cfg.RateLimit.RPS,
				Burst:   cfg.RateLimit.Burst,
			},
		})

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: handler,
			// No global read/write timeouts: WebDAV uploads and
			// downloads can legitimately run for a long time.
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("starting server",
				"addr", srv.Addr,
				"scope", cfg.Scope.Path,
				"root", cfg.Scope.Root,
				"reaper", cfg.Reaper.Enabled,
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-stop:
			slog.Info("shutting down", "signal", sig.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		slog.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (default: 8080, env: DAVGATE_SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}
