package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/tinywiki/internal/api"
	"github.com/dgallion1/tinywiki/internal/config"
	"github.com/dgallion1/tinywiki/internal/narration"
	"github.com/dgallion1/tinywiki/internal/session"
	"github.com/dgallion1/tinywiki/internal/speech"
	"github.com/dgallion1/tinywiki/internal/viewer"
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP host shell",
		Long: `Serves the session API under /api/sessions, server-rendered share links
under /view and file import under /api/import.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Port = port
			}
			lvl := parseLevel(cfg.LogLevel)
			if opts.verbose {
				lvl = slog.LevelDebug
			}
			log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
			return serve(cfg, log)
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides config)")
	return cmd
}

func serve(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := session.NewManager(session.Config{
		TTL:             cfg.SessionTTL,
		MaxSessions:     cfg.MaxSessions,
		CleanupInterval: cfg.CleanupInterval,
		Viewer: viewer.Options{
			BaseURL:    cfg.BaseURL,
			ShareLimit: cfg.ShareURLLimit,
			Narration:  narration.Config{SegmentWords: cfg.SegmentWords},
		},
		Engine: engineFactory(cfg.SpeechCommand, log),
	}, log)
	sessions.Start(ctx)

	srv := api.NewServer(sessions, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		sessions.Stop()
	}()

	log.Info("starting tinywiki", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

// engineFactory gives each session its own speech process. An empty command
// leaves read-aloud unavailable on the server.
func engineFactory(command string, log *slog.Logger) func() speech.Engine {
	if command == "" {
		return nil
	}
	return func() speech.Engine {
		e, err := speech.NewCommandEngine(command)
		if err != nil {
			log.Warn("speech engine unavailable", "command", command, "error", err)
			return nil
		}
		return e
	}
}
