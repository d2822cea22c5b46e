package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravadigital/wisha-api/internal/config"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/server"
	"github.com/gravadigital/wisha-api/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.LogLevel)
	log := logger.Get()

	storageType, err := storage.ValidateStorageType(cfg.DB.Type)
	if err != nil {
		log.Fatal("Invalid storage configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := storage.NewFactory(storageType).Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open storage backends", "error", err)
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error("Failed to close storage backends", "error", err)
		}
	}()

	srv := server.New(cfg, backends)
	go srv.Hub().Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server stopped", "error", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}

	stop()
	<-srv.Hub().Done()
	log.Info("Server exited")
}
