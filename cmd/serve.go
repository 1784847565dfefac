package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhisek/mathdrill/internal/api"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the practice flow as an HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newJSONLogger(os.Stdout)

		addr, _ := cmd.Flags().GetString("addr")
		if !cmd.Flags().Changed("addr") {
			if env := os.Getenv("MATHDRILL_ADDR"); env != "" {
				addr = env
			}
		}

		svc, err := buildServices(cmd, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				logger.Error("Failed to close services", "error", err)
			}
		}()
		if svc.provider == nil {
			return errors.New("serve requires an LLM provider; set an API key (see mathdrill --help)")
		}

		h := api.NewHandler(svc.orch, svc.problems, svc.feedback, svc.store.SessionRepo(), logger)
		srv := api.NewServer(addr, h)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		stop()

		logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		logger.Info("Server stopped successfully")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address (overrides MATHDRILL_ADDR env var)")
}
