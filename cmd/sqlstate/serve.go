package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gastromatic/sqlstate/config"
	sqlstatehttp "github.com/gastromatic/sqlstate/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the schema-browser HTTP server",
	Long: `Start a read-only HTTP server exposing the reflected catalog as JSON.
The namespace is reflected once at startup; restart the server to pick
up schema changes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	state, cleanup, err := openState(cmd)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer cleanup()

	slog.Info("reflected namespace",
		"type", cfg.Database.Type,
		"schemas", state.S().SchemaNames(),
	)

	handler := sqlstatehttp.NewHandler(&sqlstatehttp.HandlerConfig{CORS: cfg.CORS}, state)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	slog.Info("starting server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
