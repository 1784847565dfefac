package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abhisek/mathdrill/internal/app"
	"github.com/abhisek/mathdrill/internal/screens/home"
	"github.com/spf13/cobra"
)

// runApp builds dependencies and launches the TUI. Logs go to a file next
// to the database because the terminal belongs to the UI.
func runApp(cmd *cobra.Command) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}

	logPath := filepath.Join(filepath.Dir(dbPath), "mathdrill.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)

	svc, err := buildServices(cmd, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("close services", "error", err)
		}
	}()

	opts := app.Options{
		Home: home.Deps{Sessions: svc.store.SessionRepo()},
	}
	if svc.provider != nil {
		opts.Home.NewController = svc.newController
		opts.Status = svc.provider.ModelID()
	} else {
		fmt.Fprintln(os.Stderr, "LLM provider not configured; practice will be unavailable.")
	}

	return app.Run(opts)
}
