package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashcardhelper/internal/models"
)

// MockGenerationRunner is a mock implementation of worker.GenerationRunner
type MockGenerationRunner struct {
	mock.Mock
}

func (m *MockGenerationRunner) RunGeneration(ctx context.Context) (models.GenerationOutcome, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.GenerationOutcome), args.Error(1)
}
