package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-diagnostic/pkg/web"
	"github.com/goliatone/go-diagnostic/pkg/wizard"
)

// serve: host the wizard over HTTP until interrupted.
func serveCmd(a *app) *cobra.Command {
	var (
		addr          string
		shutdownGrace time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagnostic as a web page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := a.wire(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			handler, err := web.New(
				func() (*wizard.Controller, error) { return a.newController(c) },
				web.WithLogger(a.logger.Named("web")),
				web.WithSessionTTL(a.cfg.SessionTTL()),
				web.WithSecureCookie(a.cfg.Server.SecureCookie),
			)
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errChan := make(chan error, 1)
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errChan <- err
				}
			}()
			a.logger.Info("listening", zap.String("addr", a.cfg.Server.Addr), zap.String("form", c.form.ID))

			select {
			case err := <-errChan:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("shutdown", zap.Error(err))
			}
			if err := handler.Wait(shutdownCtx); err != nil {
				a.logger.Warn("pending deliveries abandoned at shutdown", zap.Error(err))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&shutdownGrace, "shutdown-grace", 10*time.Second, "time allowed for in-flight requests on shutdown")
	return cmd
}
