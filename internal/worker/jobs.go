package worker

import (
	"context"

	"github.com/vytor/flashcardhelper/internal/logger"
)

// GenerateCardsJob runs a generation that has already been reserved on the
// workspace.
type GenerateCardsJob struct {
	Runner GenerationRunner
}

func (j *GenerateCardsJob) Name() string { return "generate_flashcards" }

func (j *GenerateCardsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	outcome, err := j.Runner.RunGeneration(ctx)
	if err != nil {
		return err
	}
	log.Info("generation finished: strategy=%s, cards=%d", outcome.Strategy, outcome.Count)
	return nil
}
