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

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"polaris/internal/config"
	"polaris/internal/logging"
	"polaris/internal/server"
)

func newRootCmd() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:           "polaris [workspace]",
		Short:         "Local backend for AI assisted Git workflows",
		Long:          "Polaris serves Git status, diffs and AI CLI chat sessions to a local UI over HTTP and WebSocket.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				v.Set("workspace", args[0])
			}
			return run(v)
		},
	}

	flags := cmd.Flags()
	flags.String("host", "127.0.0.1", "address to bind")
	flags.Int("port", 0, "port to listen on, 0 picks a free port")
	flags.String("workspace", "", "workspace directory to open on startup")
	flags.Bool("no-browser", false, "do not open a browser on startup")
	flags.String("default-engine", "claude", "AI CLI used when a request names none")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")

	v.BindPFlag("host", flags.Lookup("host"))
	v.BindPFlag("port", flags.Lookup("port"))
	v.BindPFlag("workspace", flags.Lookup("workspace"))
	v.BindPFlag("no_browser", flags.Lookup("no-browser"))
	v.BindPFlag("default_engine", flags.Lookup("default-engine"))
	v.BindPFlag("log_level", flags.Lookup("log-level"))

	return cmd
}

func run(v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logOpts := logging.Options{Level: cfg.LogLevel}
	if cfg.LogToFile {
		if path, err := config.LogPath(); err == nil {
			logOpts.FilePath = path
		}
	}
	logger := logging.New(logOpts)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	url := cfg.URL()
	fmt.Printf("\n  Polaris is running at: %s\n\n", url)
	if !cfg.NoBrowser {
		go func() {
			// Give the listener a moment to come up.
			time.Sleep(200 * time.Millisecond)
			if err := browser.OpenURL(url); err != nil {
				logger.Warn().Err(err).Msg("failed to open browser")
			}
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}
