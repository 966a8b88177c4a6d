package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	apperrors "github.com/vytor/flashcardhelper/internal/errors"
	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/models"
	"github.com/vytor/flashcardhelper/internal/repository"
)

// FlashcardService owns the flashcard collection. The whole collection is
// written to the flashcards slot after every change.
type FlashcardService interface {
	Load(ctx context.Context) error
	List(ctx context.Context) []models.Flashcard
	Count() int
	Get(ctx context.Context, id int64) (models.Flashcard, error)
	Add(ctx context.Context, question, answer string) (models.Flashcard, error)
	AddBatch(ctx context.Context, drafts []models.CardDraft) ([]models.Flashcard, error)
	Update(ctx context.Context, id int64, question, answer string) (models.Flashcard, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}

type flashcardService struct {
	mu    sync.RWMutex
	repo  repository.SlotRepository
	clock func() time.Time
	cards []models.Flashcard
}

// NewFlashcardService creates a new FlashcardService. A nil clock uses
// time.Now. Call Load before serving requests.
func NewFlashcardService(repo repository.SlotRepository, clock func() time.Time) FlashcardService {
	if clock == nil {
		clock = time.Now
	}
	return &flashcardService{repo: repo, clock: clock, cards: []models.Flashcard{}}
}

func (s *flashcardService) Load(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("flashcards")

	raw, found, err := s.repo.Get(ctx, models.SlotFlashcards)
	if err != nil {
		log.Error("failed to read flashcards slot: %v", err)
		return apperrors.NewInternalError(err)
	}

	cards := []models.Flashcard{}
	if found {
		var stored []models.Flashcard
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			// Unreadable data is treated as an empty collection.
			log.Error("flashcards slot is corrupt, starting empty: %v", err)
		} else if stored != nil {
			cards = stored
		}
	}

	s.mu.Lock()
	s.cards = cards
	s.mu.Unlock()

	log.Info("loaded %d flashcards", len(cards))
	return nil
}

func (s *flashcardService) List(ctx context.Context) []models.Flashcard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Flashcard, len(s.cards))
	copy(out, s.cards)
	return out
}

func (s *flashcardService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

func (s *flashcardService) Get(ctx context.Context, id int64) (models.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.cards, id); i >= 0 {
		return s.cards[i], nil
	}
	return models.Flashcard{}, apperrors.NewNotFoundError("flashcard", id)
}

func (s *flashcardService) Add(ctx context.Context, question, answer string) (models.Flashcard, error) {
	cards, err := s.AddBatch(ctx, []models.CardDraft{{Question: question, Answer: answer}})
	if err != nil {
		return models.Flashcard{}, err
	}
	return cards[0], nil
}

func (s *flashcardService) AddBatch(ctx context.Context, drafts []models.CardDraft) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcards")

	if len(drafts) == 0 {
		return nil, apperrors.NewValidationError("flashcards", "at least one card is required")
	}

	normalized := make([]models.CardDraft, len(drafts))
	for i, d := range drafts {
		nd, err := normalizeDraft(d)
		if err != nil {
			return nil, err
		}
		normalized[i] = nd
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := assignIDs(s.clock().UnixMilli(), maxID(s.cards), len(normalized))
	added := make([]models.Flashcard, len(normalized))
	for i, d := range normalized {
		added[i] = d.WithID(ids[i])
	}

	next := make([]models.Flashcard, 0, len(s.cards)+len(added))
	next = append(next, s.cards...)
	next = append(next, added...)

	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.cards = next

	log.Info("added %d flashcards, total=%d", len(added), len(next))
	return added, nil
}

func (s *flashcardService) Update(ctx context.Context, id int64, question, answer string) (models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcards").WithField("flashcard_id", id)

	d, err := normalizeDraft(models.CardDraft{Question: question, Answer: answer})
	if err != nil {
		return models.Flashcard{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.cards, id)
	if i < 0 {
		log.Warn("update of unknown flashcard")
		return models.Flashcard{}, apperrors.NewNotFoundError("flashcard", id)
	}

	next := make([]models.Flashcard, len(s.cards))
	copy(next, s.cards)
	next[i] = d.WithID(id)

	if err := s.persist(ctx, next); err != nil {
		return models.Flashcard{}, err
	}
	s.cards = next

	log.Info("flashcard updated")
	return next[i], nil
}

func (s *flashcardService) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("flashcards").WithField("flashcard_id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.cards, id)
	if i < 0 {
		log.Warn("delete of unknown flashcard")
		return apperrors.NewNotFoundError("flashcard", id)
	}

	next := make([]models.Flashcard, 0, len(s.cards)-1)
	next = append(next, s.cards[:i]...)
	next = append(next, s.cards[i+1:]...)

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.cards = next

	log.Info("flashcard deleted, remaining=%d", len(next))
	return nil
}

func (s *flashcardService) Clear(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("flashcards")

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, models.SlotFlashcards); err != nil {
		log.Error("failed to clear flashcards slot: %v", err)
		return apperrors.NewInternalError(err)
	}
	s.cards = []models.Flashcard{}

	log.Info("flashcard collection cleared")
	return nil
}

// persist must be called with s.mu held.
func (s *flashcardService) persist(ctx context.Context, cards []models.Flashcard) error {
	payload, err := json.Marshal(cards)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.repo.Put(ctx, models.SlotFlashcards, string(payload)); err != nil {
		logger.FromContext(ctx).WithPrefix("flashcards").Error("failed to persist flashcards: %v", err)
		return apperrors.NewInternalError(err)
	}
	return nil
}

func indexOf(cards []models.Flashcard, id int64) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func maxID(cards []models.Flashcard) int64 {
	var highest int64
	for _, c := range cards {
		if c.ID > highest {
			highest = c.ID
		}
	}
	return highest
}

// assignIDs hands out n ids starting at base+offset. Any candidate that does
// not exceed the largest id seen so far is bumped past it, so ids stay unique
// even when the clock stalls or runs backwards.
func assignIDs(base, highest int64, n int) []int64 {
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		id := base + int64(i)
		if id <= highest {
			id = highest + 1
		}
		ids[i] = id
		highest = id
	}
	return ids
}
