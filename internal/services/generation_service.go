package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vytor/flashcardhelper/internal/ai"
	apperrors "github.com/vytor/flashcardhelper/internal/errors"
	"github.com/vytor/flashcardhelper/internal/heuristic"
	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/models"
	"github.com/vytor/flashcardhelper/internal/pdftext"
)

// User facing messages.
const (
	MsgUploadPDF       = "Please upload a PDF file."
	MsgPDFParseFailed  = "Failed to parse PDF. Please try again."
	MsgNoSourceText    = "Please add some text to generate flashcards from."
	MsgNothingToSave   = "There are no generated flashcards to save."
	MsgGenerationBusy  = "Flashcard generation is already in progress."
	MsgNoPatternsFound = "Could not automatically detect standard flashcards. Please ensure the text has distinct questions and answers, or edit the text above. Tip: Add an AI API Key in Settings for smart generation!"
	MsgAIFoundNothing  = "AI could not generate flashcards. Please check the text."
	msgGenerationError = "Generation with %s failed. Check your API Key."
)

// GenerationFailedMessage is shown when the provider call or its reply fails.
func GenerationFailedMessage(p models.Provider) string {
	return fmt.Sprintf(msgGenerationError, p.Label())
}

// GenerationService holds the single generation workspace: the source text,
// the preview of generated cards and whether a run is in progress.
type GenerationService interface {
	State() models.GenerationState
	SetSourceText(text string) error
	LoadPDF(ctx context.Context, content []byte) (string, error)
	// Reserve marks the workspace busy. The caller must follow up with
	// RunGeneration, which releases it.
	Reserve() error
	RunGeneration(ctx context.Context) (models.GenerationOutcome, error)
	// Generate is Reserve followed by RunGeneration.
	Generate(ctx context.Context) (models.GenerationOutcome, error)
	SaveAll(ctx context.Context) ([]models.Flashcard, error)
	// Discard clears the workspace. It fails while a run is in progress.
	Discard() error
}

type generationService struct {
	mu         sync.Mutex
	settings   SettingsService
	flashcards FlashcardService
	pdf        pdftext.TextExtractor
	heuristic  *heuristic.Extractor
	aiFactory  ai.Factory
	aiTimeout  time.Duration

	sourceText string
	previews   []models.CardDraft
	busy       bool
	last       *models.GenerationOutcome
}

// GenerationDeps bundles the collaborators of the generation workspace.
type GenerationDeps struct {
	Settings   SettingsService
	Flashcards FlashcardService
	PDF        pdftext.TextExtractor
	Heuristic  *heuristic.Extractor
	AI         ai.Factory
	// AITimeout bounds each AI call. Zero means no deadline.
	AITimeout time.Duration
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(deps GenerationDeps) GenerationService {
	h := deps.Heuristic
	if h == nil {
		h = heuristic.New(heuristic.DefaultRules())
	}
	return &generationService{
		settings:   deps.Settings,
		flashcards: deps.Flashcards,
		pdf:        deps.PDF,
		heuristic:  h,
		aiFactory:  deps.AI,
		aiTimeout:  deps.AITimeout,
	}
}

func (s *generationService) State() models.GenerationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	previews := make([]models.CardDraft, len(s.previews))
	copy(previews, s.previews)

	var last *models.GenerationOutcome
	if s.last != nil {
		l := *s.last
		last = &l
	}
	return models.GenerationState{
		SourceText: s.sourceText,
		Previews:   previews,
		Busy:       s.busy,
		Last:       last,
	}
}

func (s *generationService) SetSourceText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return apperrors.NewConflictError(MsgGenerationBusy)
	}
	s.sourceText = text
	return nil
}

func (s *generationService) LoadPDF(ctx context.Context, content []byte) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("generation")

	if !pdftext.IsPDF(content) {
		log.Warn("rejected upload that is not a PDF: bytes=%d", len(content))
		return "", apperrors.NewBadRequestError(MsgUploadPDF)
	}

	s.mu.Lock()
	busy := s.busy
	s.mu.Unlock()
	if busy {
		return "", apperrors.NewConflictError(MsgGenerationBusy)
	}

	text, err := s.pdf.Extract(ctx, content)
	if err != nil {
		log.Error("PDF extraction failed: %v", err)
		return "", apperrors.NewExtractionError(MsgPDFParseFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return "", apperrors.NewConflictError(MsgGenerationBusy)
	}
	s.sourceText = text
	s.previews = nil
	s.last = nil

	log.Info("PDF loaded: chars=%d", len(text))
	return text, nil
}

func (s *generationService) Reserve() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return apperrors.NewConflictError(MsgGenerationBusy)
	}
	if strings.TrimSpace(s.sourceText) == "" {
		return apperrors.NewValidationError("text", MsgNoSourceText)
	}
	s.busy = true
	return nil
}

func (s *generationService) release(outcome models.GenerationOutcome, drafts []models.CardDraft, replace bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if replace {
		s.previews = drafts
	}
	s.last = &outcome
	s.busy = false
}

func (s *generationService) RunGeneration(ctx context.Context) (models.GenerationOutcome, error) {
	log := logger.FromContext(ctx).WithPrefix("generation")

	// A panic must not leave the workspace reserved; callers recover it.
	defer func() {
		if r := recover(); r != nil {
			log.Error("generation panicked: %v", r)
			s.release(models.GenerationOutcome{Err: fmt.Sprint(r)}, nil, false)
			panic(r)
		}
	}()

	s.mu.Lock()
	text := s.sourceText
	s.mu.Unlock()

	cfg := s.settings.Active()
	if !cfg.HasKey() {
		drafts := s.heuristic.Extract(text)
		outcome := models.GenerationOutcome{Strategy: models.StrategyHeuristic, Count: len(drafts)}
		s.release(outcome, drafts, true)
		log.Info("heuristic extraction produced %d drafts", len(drafts))
		return outcome, nil
	}

	outcome := models.GenerationOutcome{Strategy: models.StrategyAI, Provider: cfg.Provider}
	drafts, err := s.extractWithAI(ctx, cfg, text)
	if err != nil {
		outcome.Err = err.Error()
		s.release(outcome, nil, false)
		log.Error("AI generation with %s failed: %v", cfg.Provider, err)
		return outcome, apperrors.NewGenerationError(GenerationFailedMessage(cfg.Provider), err)
	}

	outcome.Count = len(drafts)
	s.release(outcome, drafts, true)
	log.Info("AI extraction with %s produced %d drafts", cfg.Provider, len(drafts))
	return outcome, nil
}

func (s *generationService) extractWithAI(ctx context.Context, cfg models.AIConfig, text string) (drafts []models.CardDraft, err error) {
	defer func() {
		if r := recover(); r != nil {
			drafts = nil
			err = fmt.Errorf("%w: %s client panicked: %v", ai.ErrProviderFailed, cfg.Provider, r)
		}
	}()

	if s.aiFactory == nil {
		return nil, errors.New("no AI client configured")
	}
	if s.aiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.aiTimeout)
		defer cancel()
	}
	extractor, err := s.aiFactory.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(ctx, text)
}

func (s *generationService) Generate(ctx context.Context) (models.GenerationOutcome, error) {
	if err := s.Reserve(); err != nil {
		return models.GenerationOutcome{}, err
	}
	return s.RunGeneration(ctx)
}

func (s *generationService) SaveAll(ctx context.Context) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("generation")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, apperrors.NewConflictError(MsgGenerationBusy)
	}
	if len(s.previews) == 0 {
		return nil, apperrors.NewValidationError("previews", MsgNothingToSave)
	}

	saved, err := s.flashcards.AddBatch(ctx, s.previews)
	if err != nil {
		log.Error("failed to save generated flashcards: %v", err)
		return nil, err
	}

	s.previews = nil
	s.sourceText = ""
	s.last = nil

	log.Info("saved %d generated flashcards", len(saved))
	return saved, nil
}

func (s *generationService) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return apperrors.NewConflictError(MsgGenerationBusy)
	}
	s.previews = nil
	s.sourceText = ""
	s.last = nil
	return nil
}
