package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/ankistore/internal/anki"
	"github.com/vytor/ankistore/internal/api"
	"github.com/vytor/ankistore/internal/apkg"
	"github.com/vytor/ankistore/internal/config"
	"github.com/vytor/ankistore/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Default().Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("AnkiStore Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("collection_path=%s", cfg.CollectionPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("unsafe_policy=%s", cfg.UnsafePolicy)

	policy, err := anki.ParseUnsafePolicy(cfg.UnsafePolicy)
	if err != nil {
		log.Error("invalid unsafe policy: %v", err)
		os.Exit(1)
	}

	// Open the collection archive
	archive, err := apkg.Open(cfg.CollectionPath, anki.WithUnsafePolicy(policy))
	if err != nil {
		log.Error("failed to open collection: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing collection archive")
		if err := archive.Close(); err != nil {
			log.Error("failed to close collection: %v", err)
		}
	}()

	srv := &api.Server{
		Collection: archive.Collection,
		Media:      archive,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("AnkiStore Server Stopped")
	log.Info("===========================================")
}
