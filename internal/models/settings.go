package models

import "strings"

// Provider names an AI backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderClaude Provider = "claude"
)

// DefaultProvider is used when nothing has been stored yet.
const DefaultProvider = ProviderGemini

// Providers lists the supported backends in display order.
var Providers = []Provider{ProviderGemini, ProviderClaude}

// ParseProvider normalizes a user supplied provider name.
func ParseProvider(s string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// Label is the human readable provider name.
func (p Provider) Label() string {
	switch p {
	case ProviderGemini:
		return "Gemini"
	case ProviderClaude:
		return "Claude"
	default:
		return string(p)
	}
}

// AIConfig is the active provider together with its credential.
type AIConfig struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"-"`
}

// HasKey reports whether AI extraction should be attempted.
func (c AIConfig) HasKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Storage slot names. They match the keys the data has always been saved
// under so existing stores keep working.
const (
	SlotFlashcards   = "flashcards"
	SlotAIProvider   = "ai_provider"
	SlotGeminiAPIKey = "gemini_api_key"
	SlotClaudeAPIKey = "claude_api_key"
)

// KeySlot returns the slot that holds the credential for p.
func KeySlot(p Provider) string {
	if p == ProviderClaude {
		return SlotClaudeAPIKey
	}
	return SlotGeminiAPIKey
}
