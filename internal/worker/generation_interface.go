package worker

import (
	"context"

	"github.com/vytor/flashcardhelper/internal/models"
)

// GenerationRunner defines the interface for running a reserved generation
// This avoids import cycles by not importing the services package
type GenerationRunner interface {
	RunGeneration(ctx context.Context) (models.GenerationOutcome, error)
}
