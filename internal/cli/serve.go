package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-surveywizard/components/wizardhttp"
	"github.com/goliatone/go-surveywizard/pkg/summary"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the survey wizard HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := loadSchema(a.cfg)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeStore()
			sink, closeSink, err := openSink(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeSink()
			renderer, err := summary.New()
			if err != nil {
				return err
			}

			component, err := wizardhttp.New(
				wizardhttp.WithSchema(s),
				wizardhttp.WithStore(store),
				wizardhttp.WithSink(sink),
				wizardhttp.WithSummary(renderer),
				wizardhttp.WithScenarios(newScenarioService(a.cfg, a.logger)),
				wizardhttp.WithSecureCookie(a.cfg.HTTP.SecureCookie),
				wizardhttp.WithIdleTimeout(a.cfg.Session.Idle),
				wizardhttp.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			defer component.Close()

			mux := http.NewServeMux()
			patterns, err := component.RegisterRoutes(mux, a.cfg.HTTP.BasePath)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              a.cfg.HTTP.Addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("http server listening",
					zap.String("addr", a.cfg.HTTP.Addr),
					zap.Int("routes", len(patterns)),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down http server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	return cmd
}
