package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashcardhelper/internal/ai"
	"github.com/vytor/flashcardhelper/internal/models"
)

// MockExtractor is a mock implementation of ai.Extractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Provider() models.Provider {
	args := m.Called()
	return args.Get(0).(models.Provider)
}

func (m *MockExtractor) Extract(ctx context.Context, text string) ([]models.CardDraft, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CardDraft), args.Error(1)
}

// MockAIFactory is a mock implementation of ai.Factory
type MockAIFactory struct {
	mock.Mock
}

func (m *MockAIFactory) New(ctx context.Context, cfg models.AIConfig) (ai.Extractor, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ai.Extractor), args.Error(1)
}
