// Package ai turns study material into flashcard drafts by asking a hosted
// language model (Gemini or Claude) for a strict JSON answer.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vytor/flashcardhelper/internal/models"
)

var (
	// ErrMissingAPIKey is returned before any network activity when the
	// selected provider has no credential.
	ErrMissingAPIKey = errors.New("API key is missing")
	// ErrUnknownProvider is returned for a provider name that is not supported.
	ErrUnknownProvider = errors.New("unknown AI provider")
	// ErrProviderFailed wraps transport and API errors from a provider.
	ErrProviderFailed = errors.New("AI provider request failed")
	// ErrInvalidResponse is returned when the model output is not a JSON
	// array of question/answer objects.
	ErrInvalidResponse = errors.New("failed to parse AI response as JSON")
)

// Extractor produces drafts from source text.
type Extractor interface {
	Provider() models.Provider
	Extract(ctx context.Context, text string) ([]models.CardDraft, error)
}

// Options tunes the provider clients. Zero fields take the defaults.
type Options struct {
	GeminiModel         string
	GeminiFallbackModel string
	GeminiMaxChars      int
	GeminiBaseURL       string
	ClaudeModel         string
	ClaudeMaxChars      int
	ClaudeMaxTokens     int
	ClaudeURL           string
	HTTPClient          *http.Client
}

// Default model names and text budgets.
const (
	DefaultGeminiModel         = "gemini-3-pro-preview"
	DefaultGeminiFallbackModel = "gemini-1.5-pro"
	DefaultGeminiMaxChars      = 500000
	DefaultClaudeModel         = "claude-3-5-sonnet-20241022"
	DefaultClaudeMaxChars      = 100000
	DefaultClaudeMaxTokens     = 4096
	DefaultClaudeURL           = "https://api.anthropic.com/v1/messages"
)

func (o Options) withDefaults() Options {
	if o.GeminiModel == "" {
		o.GeminiModel = DefaultGeminiModel
	}
	if o.GeminiFallbackModel == "" {
		o.GeminiFallbackModel = DefaultGeminiFallbackModel
	}
	if o.GeminiMaxChars <= 0 {
		o.GeminiMaxChars = DefaultGeminiMaxChars
	}
	if o.ClaudeModel == "" {
		o.ClaudeModel = DefaultClaudeModel
	}
	if o.ClaudeMaxChars <= 0 {
		o.ClaudeMaxChars = DefaultClaudeMaxChars
	}
	if o.ClaudeMaxTokens <= 0 {
		o.ClaudeMaxTokens = DefaultClaudeMaxTokens
	}
	if o.ClaudeURL == "" {
		o.ClaudeURL = DefaultClaudeURL
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	return o
}

// New builds the extractor for cfg.Provider. A blank key fails immediately
// with ErrMissingAPIKey.
func New(ctx context.Context, cfg models.AIConfig, opts Options) (Extractor, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	opts = opts.withDefaults()

	switch cfg.Provider {
	case models.ProviderGemini:
		return newGemini(ctx, key, opts)
	case models.ProviderClaude:
		return newClaude(key, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Factory builds extractors. The generation service depends on this rather
// than on New so tests can substitute fakes.
type Factory interface {
	New(ctx context.Context, cfg models.AIConfig) (Extractor, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, cfg models.AIConfig) (Extractor, error)

func (f FactoryFunc) New(ctx context.Context, cfg models.AIConfig) (Extractor, error) {
	return f(ctx, cfg)
}

// NewFactory returns a Factory that calls New with fixed options.
func NewFactory(opts Options) Factory {
	return FactoryFunc(func(ctx context.Context, cfg models.AIConfig) (Extractor, error) {
		return New(ctx, cfg, opts)
	})
}
