package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	apperrors "github.com/vytor/flashcardhelper/internal/errors"
	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/models"
	"github.com/vytor/flashcardhelper/internal/repository"
)

// SettingsService stores the AI provider choice and one API key per
// provider. Each value lives in its own slot.
type SettingsService interface {
	Load(ctx context.Context) error
	Provider() models.Provider
	SetProvider(ctx context.Context, p models.Provider) error
	APIKey(p models.Provider) string
	SetAPIKey(ctx context.Context, p models.Provider, key string) error
	Active() models.AIConfig
}

type settingsService struct {
	mu       sync.RWMutex
	repo     repository.SlotRepository
	provider models.Provider
	keys     map[models.Provider]string
}

// NewSettingsService creates a new SettingsService with default values.
func NewSettingsService(repo repository.SlotRepository) SettingsService {
	return &settingsService{
		repo:     repo,
		provider: models.DefaultProvider,
		keys:     map[models.Provider]string{},
	}
}

func (s *settingsService) Load(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("settings")

	provider := models.DefaultProvider
	var stored string
	ok, err := s.readString(ctx, models.SlotAIProvider, &stored)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if ok {
		if p, valid := models.ParseProvider(stored); valid {
			provider = p
		} else {
			log.Warn("unknown stored provider %q, using %s", stored, models.DefaultProvider)
		}
	}

	keys := map[models.Provider]string{}
	for _, p := range models.Providers {
		var key string
		if _, err := s.readString(ctx, models.KeySlot(p), &key); err != nil {
			return apperrors.NewInternalError(err)
		}
		keys[p] = key
	}

	s.mu.Lock()
	s.provider = provider
	s.keys = keys
	s.mu.Unlock()

	log.Info("settings loaded: provider=%s, ai_ready=%t", provider, strings.TrimSpace(keys[provider]) != "")
	return nil
}

// readString decodes a JSON string slot into dst. Corrupt values are logged
// and reported as absent.
func (s *settingsService) readString(ctx context.Context, slot string, dst *string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("settings")

	raw, found, err := s.repo.Get(ctx, slot)
	if err != nil {
		log.Error("failed to read slot %s: %v", slot, err)
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Error("slot %s is corrupt, using default: %v", slot, err)
		return false, nil
	}
	return true, nil
}

func (s *settingsService) writeString(ctx context.Context, slot, value string) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.repo.Put(ctx, slot, string(payload)); err != nil {
		logger.FromContext(ctx).WithPrefix("settings").Error("failed to write slot %s: %v", slot, err)
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *settingsService) Provider() models.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

func (s *settingsService) SetProvider(ctx context.Context, p models.Provider) error {
	parsed, ok := models.ParseProvider(string(p))
	if !ok {
		return apperrors.NewValidationError("provider", "must be gemini or claude")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeString(ctx, models.SlotAIProvider, string(parsed)); err != nil {
		return err
	}
	s.provider = parsed
	logger.FromContext(ctx).WithPrefix("settings").Info("provider set to %s", parsed)
	return nil
}

func (s *settingsService) APIKey(p models.Provider) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[p]
}

func (s *settingsService) SetAPIKey(ctx context.Context, p models.Provider, key string) error {
	parsed, ok := models.ParseProvider(string(p))
	if !ok {
		return apperrors.NewValidationError("provider", "must be gemini or claude")
	}
	key = strings.TrimSpace(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeString(ctx, models.KeySlot(parsed), key); err != nil {
		return err
	}
	s.keys[parsed] = key
	logger.FromContext(ctx).WithPrefix("settings").Info("API key for %s updated (set=%t)", parsed, key != "")
	return nil
}

func (s *settingsService) Active() models.AIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.AIConfig{Provider: s.provider, APIKey: s.keys[s.provider]}
}
