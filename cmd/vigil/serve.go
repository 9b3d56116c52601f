package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/vigil"
	"github.com/jward/vigil/internal/config"
	"github.com/jward/vigil/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP server",
	Long:  "Serves the analysis API for editor clients: POST /analyze, POST /refresh, GET /symbols, GET /graph, GET /rules, GET /health.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "bind address (default from config)")
	serveCmd.Flags().Int("port", 0, "bind port (default from config)")
	serveCmd.Flags().Int("workers", 0, "extraction pool size (0: one per CPU)")
	serveCmd.Flags().String("log-file", "", "rotating log file (default from config)")
	serveCmd.Flags().String("log-level", "", "log level: debug|info|warn|error")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettingsWithFlags(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := config.ValidateSettings(settings); err != nil {
		return err
	}
	log := config.ConfigureLogger(settings)

	opts := []vigil.Option{vigil.WithLogger(log)}
	if settings.Workers > 0 {
		opts = append(opts, vigil.WithWorkers(settings.Workers))
	}
	engine, err := vigil.New(settings.DBPath, opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:    settings.Addr(),
		Handler: server.NewServer(engine, log).Handler(),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("listening", "addr", settings.Addr())
	fmt.Fprintf(os.Stderr, "vigil listening on http://%s\n", settings.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-sig:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
