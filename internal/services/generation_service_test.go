package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashcardhelper/internal/ai"
	apperrors "github.com/vytor/flashcardhelper/internal/errors"
	"github.com/vytor/flashcardhelper/internal/models"
	"github.com/vytor/flashcardhelper/internal/repository/sqlite"
	"github.com/vytor/flashcardhelper/internal/services"
	"github.com/vytor/flashcardhelper/internal/testutil"
	"github.com/vytor/flashcardhelper/internal/testutil/mocks"
)

const heuristicSource = "Q: What is 2+2?\nA: 4\nWhat is the capital of France?\nParis"

type GenerationServiceSuite struct {
	suite.Suite
	ctx        context.Context
	settings   services.SettingsService
	flashcards services.FlashcardService
	pdf        *mocks.MockTextExtractor
	factory    *mocks.MockAIFactory
	extractor  *mocks.MockExtractor
	svc        services.GenerationService
}

func (s *GenerationServiceSuite) SetupTest() {
	s.ctx = context.Background()
	db := testutil.NewTestDB(s.T())
	s.T().Cleanup(func() { testutil.MustClose(s.T(), db) })

	repo := sqlite.NewSlotRepository(db)
	s.settings = services.NewSettingsService(repo)
	s.flashcards = services.NewFlashcardService(repo, testutil.FixedClock(baseMillis))
	s.Require().NoError(s.settings.Load(s.ctx))
	s.Require().NoError(s.flashcards.Load(s.ctx))

	s.pdf = new(mocks.MockTextExtractor)
	s.factory = new(mocks.MockAIFactory)
	s.extractor = new(mocks.MockExtractor)

	s.svc = services.NewGenerationService(services.GenerationDeps{
		Settings:   s.settings,
		Flashcards: s.flashcards,
		PDF:        s.pdf,
		AI:         s.factory,
	})
}

func (s *GenerationServiceSuite) TestGenerateWithoutKeyUsesHeuristic() {
	s.Require().NoError(s.svc.SetSourceText(heuristicSource))

	outcome, err := s.svc.Generate(s.ctx)
	s.Require().NoError(err)

	s.Equal(models.StrategyHeuristic, outcome.Strategy)
	s.Equal(2, outcome.Count)

	state := s.svc.State()
	s.False(state.Busy)
	s.Equal([]models.CardDraft{
		{Question: "What is 2+2?", Answer: "4"},
		{Question: "What is the capital of France?", Answer: "Paris"},
	}, state.Previews)
	s.Require().NotNil(state.Last)
	s.Equal(outcome, *state.Last)

	s.factory.AssertNotCalled(s.T(), "New", mock.Anything, mock.Anything)
}

func (s *GenerationServiceSuite) TestHeuristicWithNoMatchesIsEmptyOutcome() {
	s.Require().NoError(s.svc.SetSourceText("Just some prose.\nNothing to see here."))

	outcome, err := s.svc.Generate(s.ctx)
	s.Require().NoError(err)

	s.True(outcome.Empty())
	s.Empty(s.svc.State().Previews)
}

func (s *GenerationServiceSuite) TestGenerateWithKeyUsesAI() {
	s.Require().NoError(s.settings.SetAPIKey(s.ctx, models.ProviderClaude, "sk-test"))
	s.Require().NoError(s.settings.SetProvider(s.ctx, models.ProviderClaude))
	s.Require().NoError(s.svc.SetSourceText("Photosynthesis converts light to energy."))

	drafts := []models.CardDraft{{Question: "What does photosynthesis convert?", Answer: "Light to energy"}}
	cfg := models.AIConfig{Provider: models.ProviderClaude, APIKey: "sk-test"}
	s.factory.On("New", mock.Anything, cfg).Return(s.extractor, nil).Once()
	s.extractor.On("Extract", mock.Anything, "Photosynthesis converts light to energy.").Return(drafts, nil).Once()

	outcome, err := s.svc.Generate(s.ctx)
	s.Require().NoError(err)

	s.Equal(models.GenerationOutcome{Strategy: models.StrategyAI, Provider: models.ProviderClaude, Count: 1}, outcome)
	s.Equal(drafts, s.svc.State().Previews)
	s.factory.AssertExpectations(s.T())
	s.extractor.AssertExpectations(s.T())
}

func (s *GenerationServiceSuite) TestAIFailureLeavesPreviewsUntouched() {
	s.Require().NoError(s.svc.SetSourceText(heuristicSource))
	_, err := s.svc.Generate(s.ctx)
	s.Require().NoError(err)
	before := s.svc.State().Previews
	s.Require().Len(before, 2)

	s.Require().NoError(s.settings.SetAPIKey(s.ctx, models.ProviderGemini, "bad-key"))
	s.factory.On("New", mock.Anything, mock.Anything).Return(s.extractor, nil)
	s.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, ai.ErrProviderFailed)

	outcome, err := s.svc.Generate(s.ctx)

	s.True(apperrors.HasCode(err, apperrors.ErrCodeGenerationFailed))
	appErr, ok := apperrors.As(err)
	s.Require().True(ok)
	s.Equal("Generation with Gemini failed. Check your API Key.", appErr.Message)
	s.True(stderrors.Is(err, ai.ErrProviderFailed))

	s.Equal(models.StrategyAI, outcome.Strategy)
	s.NotEmpty(outcome.Err)

	state := s.svc.State()
	s.False(state.Busy)
	s.Equal(before, state.Previews)
}

func (s *GenerationServiceSuite) TestFactoryErrorIsGenerationFailure() {
	s.Require().NoError(s.settings.SetAPIKey(s.ctx, models.ProviderGemini, "key"))
	s.Require().NoError(s.svc.SetSourceText("text"))
	s.factory.On("New", mock.Anything, mock.Anything).Return(nil, ai.ErrUnknownProvider)

	_, err := s.svc.Generate(s.ctx)

	s.True(apperrors.HasCode(err, apperrors.ErrCodeGenerationFailed))
	s.False(s.svc.State().Busy)
}

func (s *GenerationServiceSuite) TestGenerateRequiresSourceText() {
	_, err := s.svc.Generate(s.ctx)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeValidation))

	s.Require().NoError(s.svc.SetSourceText("   \n "))
	_, err = s.svc.Generate(s.ctx)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func (s *GenerationServiceSuite) TestReserveBlocksConcurrentWork() {
	s.Require().NoError(s.svc.SetSourceText(heuristicSource))
	s.Require().NoError(s.svc.Reserve())
	s.True(s.svc.State().Busy)

	s.True(apperrors.HasCode(s.svc.Reserve(), apperrors.ErrCodeConflict))
	s.True(apperrors.HasCode(s.svc.SetSourceText("other"), apperrors.ErrCodeConflict))
	_, err := s.svc.SaveAll(s.ctx)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeConflict))

	_, err = s.svc.RunGeneration(s.ctx)
	s.Require().NoError(err)
	s.False(s.svc.State().Busy)
	s.Equal(heuristicSource, s.svc.State().SourceText)
}

func (s *GenerationServiceSuite) TestDiscardRejectedWhileBusy() {
	s.Require().NoError(s.svc.SetSourceText(heuristicSource))
	s.Require().NoError(s.svc.Reserve())

	s.True(apperrors.HasCode(s.svc.Discard(), apperrors.ErrCodeConflict))
	s.Equal(heuristicSource, s.svc.State().SourceText)

	_, err := s.svc.RunGeneration(s.ctx)
	s.Require().NoError(err)
	s.Len(s.svc.State().Previews, 2)
	s.Require().NoError(s.svc.Discard())
	s.Empty(s.svc.State().Previews)
}

func (s *GenerationServiceSuite) TestPanickingExtractorReleasesWorkspace() {
	s.Require().NoError(s.settings.SetAPIKey(s.ctx, models.ProviderGemini, "key"))
	s.Require().NoError(s.svc.SetSourceText(heuristicSource))
	s.factory.On("New", mock.Anything, mock.Anything).Return(s.extractor, nil)
	s.extractor.On("Extract", mock.Anything, mock.Anything).Panic("sdk exploded")

	outcome, err := s.svc.Generate(s.ctx)

	s.True(apperrors.HasCode(err, apperrors.ErrCodeGenerationFailed))
	s.True(stderrors.Is(err, ai.ErrProviderFailed))
	s.Contains(outcome.Err, "sdk exploded")
	s.False(s.svc.State().Busy)

	s.Require().NoError(s.settings.SetAPIKey(s.ctx, models.ProviderGemini, ""))
	outcome, err = s.svc.Generate(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.StrategyHeuristic, outcome.Strategy)
	s.Equal(2, outcome.Count)
}

// panickingSettings fails on the first settings read of a run.
type panickingSettings struct{ services.SettingsService }

func (*panickingSettings) Active() models.AIConfig { panic("settings unavailable") }

func (s *GenerationServiceSuite) TestPanicOutsideAIReleasesWorkspaceAndRepanics() {
	settings := new(panickingSettings)
	svc := services.NewGenerationService(services.GenerationDeps{
		Settings:   settings,
		Flashcards: s.flashcards,
		PDF:        s.pdf,
		AI:         s.factory,
	})
	s.Require().NoError(svc.SetSourceText(heuristicSource))
	s.Require().NoError(svc.Reserve())

	s.PanicsWithValue("settings unavailable", func() { _, _ = svc.RunGeneration(s.ctx) })

	state := svc.State()
	s.False(state.Busy)
	s.Require().NotNil(state.Last)
	s.Equal("settings unavailable", state.Last.Err)
	s.Require().NoError(svc.Reserve())
}

func (s *GenerationServiceSuite) TestSaveAllAppendsAndClearsWorkspace() {
	existing, err := s.flashcards.Add(s.ctx, "existing", "card")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.SetSourceText(heuristicSource))
	_, err = s.svc.Generate(s.ctx)
	s.Require().NoError(err)

	saved, err := s.svc.SaveAll(s.ctx)
	s.Require().NoError(err)
	s.Len(saved, 2)

	all := s.flashcards.List(s.ctx)
	s.Require().Len(all, 3)
	s.Equal(existing, all[0])
	s.Equal("What is 2+2?", all[1].Question)
	s.Equal("Paris", all[2].Answer)

	state := s.svc.State()
	s.Empty(state.Previews)
	s.Empty(state.SourceText)
	s.Nil(state.Last)
}

func (s *GenerationServiceSuite) TestSaveAllWithNothingGenerated() {
	_, err := s.svc.SaveAll(s.ctx)
	s.True(apperrors.HasCode(err, apperrors.ErrCodeValidation))
	s.Equal(0, s.flashcards.Count())
}

func (s *GenerationServiceSuite) TestDiscardClearsWorkspace() {
	s.Require().NoError(s.svc.SetSourceText(heuristicSource))
	_, err := s.svc.Generate(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Discard())

	state := s.svc.State()
	s.Empty(state.Previews)
	s.Empty(state.SourceText)
	s.Nil(state.Last)
	s.Equal(0, s.flashcards.Count())
}

func (s *GenerationServiceSuite) TestLoadPDFReplacesSourceText() {
	content := []byte("%PDF-1.4 fake")
	s.pdf.On("Extract", mock.Anything, content).Return("Q: One?\nA: 1\n\n", nil).Once()

	text, err := s.svc.LoadPDF(s.ctx, content)
	s.Require().NoError(err)

	s.Equal("Q: One?\nA: 1\n\n", text)
	s.Equal(text, s.svc.State().SourceText)
	s.pdf.AssertExpectations(s.T())
}

func (s *GenerationServiceSuite) TestLoadPDFRejectsOtherFiles() {
	_, err := s.svc.LoadPDF(s.ctx, []byte("hello, plain text"))

	appErr, ok := apperrors.As(err)
	s.Require().True(ok)
	s.Equal(apperrors.ErrCodeBadRequest, appErr.Code)
	s.Equal(services.MsgUploadPDF, appErr.Message)
	s.pdf.AssertNotCalled(s.T(), "Extract", mock.Anything, mock.Anything)
}

func (s *GenerationServiceSuite) TestLoadPDFExtractionFailureKeepsText() {
	s.Require().NoError(s.svc.SetSourceText("keep me"))
	content := []byte("%PDF-1.7 broken")
	s.pdf.On("Extract", mock.Anything, content).Return("", stderrors.New("bad xref"))

	_, err := s.svc.LoadPDF(s.ctx, content)

	appErr, ok := apperrors.As(err)
	s.Require().True(ok)
	s.Equal(apperrors.ErrCodeExtraction, appErr.Code)
	s.Equal(services.MsgPDFParseFailed, appErr.Message)
	s.Equal("keep me", s.svc.State().SourceText)
}

func TestGenerationServiceSuite(t *testing.T) {
	suite.Run(t, new(GenerationServiceSuite))
}
