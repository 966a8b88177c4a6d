package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/models"
)

const anthropicVersion = "2023-06-01"

type claudeExtractor struct {
	apiKey     string
	model      string
	maxChars   int
	maxTokens  int
	url        string
	httpClient *http.Client
}

func newClaude(apiKey string, opts Options) *claudeExtractor {
	return &claudeExtractor{
		apiKey:     apiKey,
		model:      opts.ClaudeModel,
		maxChars:   opts.ClaudeMaxChars,
		maxTokens:  opts.ClaudeMaxTokens,
		url:        opts.ClaudeURL,
		httpClient: opts.HTTPClient,
	}
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (c *claudeExtractor) Provider() models.Provider { return models.ProviderClaude }

func (c *claudeExtractor) Extract(ctx context.Context, text string) ([]models.CardDraft, error) {
	log := logger.FromContext(ctx).WithPrefix("claude")

	body, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: BuildPrompt(text, c.maxChars)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling Claude request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	log.Debug("requesting flashcards: model=%s, request_bytes=%d", c.model, len(body))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Claude request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	defer resp.Body.Close()

	log.Debug("Claude response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("Claude request failed: status=%d, body=%s", resp.StatusCode, string(errBody))
		return nil, fmt.Errorf("%w: Claude API returned %d: %s", ErrProviderFailed, resp.StatusCode, string(errBody))
	}

	var out claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Error("failed to decode Claude response: %v", err)
		return nil, fmt.Errorf("%w: decoding Claude response: %v", ErrProviderFailed, err)
	}

	// Only the first block counts; a non-text first block yields an empty
	// reply, which then fails to parse.
	raw := ""
	if len(out.Content) > 0 && out.Content[0].Type == "text" {
		raw = out.Content[0].Text
	}
	return ParseResponse(ctx, raw)
}
