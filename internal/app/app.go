// Package app wires configuration, storage and services together for the
// server and the CLI.
package app

import (
	"context"
	"time"

	"github.com/vytor/flashcardhelper/internal/ai"
	"github.com/vytor/flashcardhelper/internal/config"
	"github.com/vytor/flashcardhelper/internal/db"
	"github.com/vytor/flashcardhelper/internal/heuristic"
	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/pdftext"
	"github.com/vytor/flashcardhelper/internal/repository/sqlite"
	"github.com/vytor/flashcardhelper/internal/services"
)

type App struct {
	Config     config.Config
	DB         *db.DB
	Flashcards services.FlashcardService
	Settings   services.SettingsService
	Generation services.GenerationService
}

// Open connects to the slot database, builds the services and loads the
// persisted collection and settings.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.FromContext(ctx).WithPrefix("app")

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	slots := sqlite.NewSlotRepository(database.DB)
	settings := services.NewSettingsService(slots)
	flashcards := services.NewFlashcardService(slots, time.Now)

	if err := settings.Load(ctx); err != nil {
		database.Close()
		return nil, err
	}
	if err := flashcards.Load(ctx); err != nil {
		database.Close()
		return nil, err
	}

	generation := services.NewGenerationService(services.GenerationDeps{
		Settings:   settings,
		Flashcards: flashcards,
		PDF:        pdftext.New(),
		Heuristic:  heuristic.New(HeuristicRules(cfg)),
		AI:         ai.NewFactory(AIOptions(cfg)),
		AITimeout:  cfg.AITimeout(),
	})

	log.Debug("services ready: flashcards=%d, provider=%s", flashcards.Count(), settings.Provider())
	return &App{
		Config:     cfg,
		DB:         database,
		Flashcards: flashcards,
		Settings:   settings,
		Generation: generation,
	}, nil
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// AIOptions maps the provider settings from cfg.
func AIOptions(cfg config.Config) ai.Options {
	return ai.Options{
		GeminiModel:         cfg.GeminiModel,
		GeminiFallbackModel: cfg.GeminiFallbackModel,
		GeminiMaxChars:      cfg.GeminiMaxChars,
		ClaudeModel:         cfg.ClaudeModel,
		ClaudeMaxChars:      cfg.ClaudeMaxChars,
		ClaudeMaxTokens:     cfg.ClaudeMaxTokens,
		ClaudeURL:           cfg.ClaudeAPIURL,
	}
}

func HeuristicRules(cfg config.Config) heuristic.Rules {
	return heuristic.Rules{
		QuestionPrefixes: cfg.QuestionPrefixes,
		AnswerPrefixes:   cfg.AnswerPrefixes,
		QuestionSuffix:   cfg.QuestionSuffix,
	}
}
