package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiayeah-xy/love-yumi/internal/config"
	"github.com/xiayeah-xy/love-yumi/internal/engine"
	"github.com/xiayeah-xy/love-yumi/internal/handlers"
	"github.com/xiayeah-xy/love-yumi/internal/logger"
	"github.com/xiayeah-xy/love-yumi/internal/middleware"
	"github.com/xiayeah-xy/love-yumi/internal/services"
	"github.com/xiayeah-xy/love-yumi/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Love Yumi API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"text_model", cfg.TextModel,
		"image_model", cfg.ImageModel)

	if cfg.GeminiAPIKey == "" {
		log.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}
	generator := services.NewGeminiService(cfg.GeminiAPIKey, cfg.TextModel, cfg.ImageModel, log)

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	turnEngine := engine.New(generator, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	adventureHandler := handlers.NewAdventureHandler(turnEngine, store, log)
	mux.Handle("/v1/adventure", adventureHandler)
	mux.Handle("/v1/adventure/", adventureHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
