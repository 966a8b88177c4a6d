package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/flashcardhelper/internal/api"
	"github.com/vytor/flashcardhelper/internal/app"
	"github.com/vytor/flashcardhelper/internal/config"
	"github.com/vytor/flashcardhelper/internal/jobs"
	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/worker"
	"github.com/vytor/flashcardhelper/web"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Flashcard Helper Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("generation_worker_count=%d", cfg.GenerationWorkerCount)
	log.Debug("generation_queue_size=%d", cfg.GenerationQueueSize)
	log.Debug("gemini_model=%s (fallback %s)", cfg.GeminiModel, cfg.GeminiFallbackModel)
	log.Debug("claude_model=%s", cfg.ClaudeModel)
	log.Debug("ai_timeout=%v", cfg.AITimeout())

	ctx, cancel := context.WithCancel(logger.NewContext(context.Background(), log))
	defer cancel()

	application, err := app.Open(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize application: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		application.Close()
	}()

	log.Debug("loading templates")
	tmpl, err := api.LoadTemplates(web.Templates())
	if err != nil {
		log.Error("failed to load templates: %v", err)
		os.Exit(1)
	}
	log.Debug("templates loaded successfully")

	generationPool := worker.NewPool(cfg.GenerationWorkerCount, cfg.GenerationQueueSize).WithLogger(log)

	srv := &api.Server{
		Flashcards:     application.Flashcards,
		Settings:       application.Settings,
		Generation:     application.Generation,
		Jobs:           jobs.NewWorkerQueue(generationPool, application.Generation),
		DB:             application.DB,
		Templates:      tmpl,
		Static:         web.Static(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}

	generationPool.Start(ctx)

	// AI calls run on the worker pool, so the write timeout only covers
	// rendering and uploads.
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

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

	log.Debug("stopping generation pool")
	generationPool.Stop()

	log.Info("===========================================")
	log.Info("Flashcard Helper Server Stopped")
	log.Info("===========================================")
}
