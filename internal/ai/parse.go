package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/models"
)

// ParseResponse strips markdown code fences from a model reply and decodes
// the remaining JSON array. Every item needs a non-empty question and
// answer; otherwise the whole reply is rejected.
func ParseResponse(ctx context.Context, raw string) ([]models.CardDraft, error) {
	log := logger.FromContext(ctx).WithPrefix("ai")

	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var items []models.CardDraft
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		log.Error("failed to parse AI response: %v; raw response: %s", err, raw)
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if items == nil {
		log.Error("AI response is not an array; raw response: %s", raw)
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidResponse)
	}

	drafts := make([]models.CardDraft, 0, len(items))
	for i, item := range items {
		q := strings.TrimSpace(item.Question)
		a := strings.TrimSpace(item.Answer)
		if q == "" || a == "" {
			log.Error("AI response item %d lacks question or answer; raw response: %s", i, raw)
			return nil, fmt.Errorf("%w: item %d is missing a question or answer", ErrInvalidResponse, i)
		}
		drafts = append(drafts, models.CardDraft{Question: q, Answer: a})
	}
	return drafts, nil
}
