// Command kokoro runs the conversational personal-development service: an
// HTTP chat endpoint backed by SQLite-persisted habits, goals, journal
// entries, moods, routines, beliefs, and synchronicities.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kokoro-app/kokoro/common/environment"
	"github.com/kokoro-app/kokoro/common/retry"
	"github.com/kokoro-app/kokoro/common/version"
	"github.com/kokoro-app/kokoro/internal/kokoro/chat"
	"github.com/kokoro-app/kokoro/internal/kokoro/config"
	"github.com/kokoro-app/kokoro/internal/kokoro/engine"
	"github.com/kokoro-app/kokoro/internal/kokoro/insights"
	"github.com/kokoro-app/kokoro/internal/kokoro/server"
	"github.com/kokoro-app/kokoro/internal/kokoro/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", environment.StringOr("KOKORO_CONFIG", ""), "path to the YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("kokoro %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	slog.Info("starting kokoro",
		"version", version.Version,
		"addr", cfg.HTTPAddr,
		"database", cfg.DatabasePath)

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	eng := engine.New(engine.Services{
		Habits:   st,
		Goals:    st,
		Journal:  st,
		Moods:    st,
		Routines: st,
		Beliefs:  st,
		Syncs:    st,
		Audit:    st,
	}, engine.Options{
		ServiceTimeout: cfg.ServiceTimeout,
		Retry: retry.Config{
			MaxAttempts:  cfg.RetryAttempts,
			InitialDelay: retry.DefaultConfig.InitialDelay,
			MaxDelay:     retry.DefaultConfig.MaxDelay,
		},
		Discoverer: insights.Noop{},
	})

	conv := chat.New(eng, chat.Options{
		SessionTTL: cfg.SessionTTL,
		RateLimit:  cfg.RateLimitPerMinute,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(conv).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loadConfig reads the config file when given one, otherwise assembles the
// configuration from environment variables.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := &config.Config{
		DatabasePath:       environment.StringOr("KOKORO_DB", "kokoro.db"),
		HTTPAddr:           environment.StringOr("KOKORO_ADDR", ""),
		ServiceTimeout:     environment.DurationOr("KOKORO_SERVICE_TIMEOUT", 0),
		RetryAttempts:      environment.IntOr("KOKORO_RETRY_ATTEMPTS", 0),
		SessionTTL:         environment.DurationOr("KOKORO_SESSION_TTL", 0),
		RateLimitPerMinute: environment.IntOr("KOKORO_RATE_LIMIT", 0),
		LogLevel:           environment.StringOr("KOKORO_LOG_LEVEL", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
