// Command ngfw-form serves the firmware preset configuration page.
//
// Configuration comes from an optional YAML file (-config) and the
// environment: PORT, LOG_LEVEL, DEFAULT_DEVICE, STATE_BACKEND, STATE_FILE.
package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ngfw-form/api"
	"ngfw-form/config"
	"ngfw-form/preset"
	"ngfw-form/session"
	"ngfw-form/uistate"
)

//go:embed static/*
var staticFiles embed.FS

var configPath = flag.String("config", "/etc/ngfw-form.yaml", "YAML configuration file")

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	store, err := uistate.Open(cfg.State.Backend, cfg.State.Path)
	if err != nil {
		logger.Error("failed to open state store", "backend", cfg.State.Backend, "err", err)
		return 1
	}
	defer store.Close()

	manager := session.NewManager(store, session.Config{
		DefaultDevice: preset.DeviceID(cfg.DefaultDevice),
		Sections:      cfg.Sections,
		Backlog:       cfg.Sessions.Backlog,
		Logger:        logger,
	})
	router := api.RegisterRoutes(manager, staticFiles, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go expireLoop(ctx, manager, cfg.Sessions.TTL, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("ngfw-form listening", "addr", srv.Addr, "state", cfg.State.Backend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
		return 1
	}
	return 0
}

func expireLoop(ctx context.Context, m *session.Manager, ttl time.Duration, logger *slog.Logger) {
	if ttl <= 0 {
		return
	}
	t := time.NewTicker(ttl / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Expire(ttl); n > 0 {
				logger.Info("expired idle form sessions", "count", n)
			}
		}
	}
}
