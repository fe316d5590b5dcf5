package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yofomoose/okdesk-bot/platform/config"
	"github.com/yofomoose/okdesk-bot/platform/container"
	"github.com/yofomoose/okdesk-bot/platform/db"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

const (
	appName    = "okdesk-bot"
	appVersion = "1.0.0"
)

func main() {
	printBanner()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewFromAppConfig(cfg)
	log.InfoWithFields("Starting okdesk-bot", map[string]interface{}{
		"version":     appVersion,
		"environment": cfg.NodeEnv,
		"port":        cfg.Port,
	})

	log.Info("Initializing database connection...")
	var database *db.DB
	if cfg.AutoMigrate {
		database, err = db.NewWithMigrations(cfg.DatabaseURL, log)
	} else {
		database, err = db.New(cfg.DatabaseURL)
	}
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to initialize database: %v", err))
	}
	defer func() { _ = database.Close() }()

	log.Info("Initializing dependency injection container...")
	diContainer, err := container.New(&container.Config{
		AppConfig: cfg,
		Logger:    log,
		Database:  database,
	})
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to initialize DI container: %v", err))
	}

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      diContainer.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)

	go func() {
		log.InfoWithFields("Starting HTTP server", map[string]interface{}{
			"address":      server.Addr,
			"webhook_path": cfg.WebhookPath,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case sig := <-sigChan:
		log.InfoWithFields("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
	case err := <-errChan:
		log.ErrorWithFields("Application error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithFields("HTTP server shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Shutdown complete")
}

func printBanner() {
	fmt.Printf(`
  ___  _  ______  _____ ____  _  __    ____   ___ _____
 / _ \| |/ /  _ \| ____/ ___|| |/ /   | __ ) / _ \_   _|
| | | | ' /| | | |  _| \___ \| ' /____|  _ \| | | || |
| |_| | . \| |_| | |___ ___) | . \____| |_) | |_| || |
 \___/|_|\_\____/|_____|____/|_|\_\   |____/ \___/ |_|

 %s v%s
 Helpdesk bridge: identity resolution and webhook sync

`, appName, appVersion)
}
