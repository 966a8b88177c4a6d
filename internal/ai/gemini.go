package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/models"
	"google.golang.org/genai"
)

// contentGenerator is the slice of the genai client the extractor needs.
type contentGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
}

func (g *genaiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

type geminiExtractor struct {
	gen           contentGenerator
	model         string
	fallbackModel string
	maxChars      int
}

func newGemini(ctx context.Context, apiKey string, opts Options) (*geminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: opts.GeminiBaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating Gemini client: %v", ErrProviderFailed, err)
	}
	return newGeminiWithGenerator(&genaiGenerator{client: client}, opts), nil
}

func newGeminiWithGenerator(gen contentGenerator, opts Options) *geminiExtractor {
	return &geminiExtractor{
		gen:           gen,
		model:         opts.GeminiModel,
		fallbackModel: opts.GeminiFallbackModel,
		maxChars:      opts.GeminiMaxChars,
	}
}

func (g *geminiExtractor) Provider() models.Provider { return models.ProviderGemini }

func (g *geminiExtractor) Extract(ctx context.Context, text string) ([]models.CardDraft, error) {
	log := logger.FromContext(ctx).WithPrefix("gemini")
	prompt := BuildPrompt(text, g.maxChars)

	var raw string
	model, err := withModelFallback(ctx, g.model, g.fallbackModel, isModelNotFound, func(model string) error {
		log.Debug("requesting flashcards: model=%s, prompt_chars=%d", model, len(prompt))
		out, err := g.gen.Generate(ctx, model, prompt)
		raw = out
		return err
	})
	if err != nil {
		log.Error("Gemini generation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	log.Info("Gemini response received: model=%s, bytes=%d", model, len(raw))

	return ParseResponse(ctx, raw)
}

// withModelFallback runs call with primary and, when the failure satisfies
// retryable and a fallback is configured, exactly once more with fallback.
// It returns the model whose result is final.
func withModelFallback(ctx context.Context, primary, fallback string, retryable func(error) bool, call func(model string) error) (string, error) {
	err := call(primary)
	if err == nil {
		return primary, nil
	}
	if fallback == "" || fallback == primary || !retryable(err) {
		return primary, err
	}
	logger.FromContext(ctx).Warn("model %s not found, falling back to %s", primary, fallback)
	return fallback, call(fallback)
}

// isModelNotFound recognizes the "model does not exist" class of failures.
func isModelNotFound(err error) bool {
	if err == nil {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound || strings.EqualFold(apiErr.Status, "NOT_FOUND") {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}
