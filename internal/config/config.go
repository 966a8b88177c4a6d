package config

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr                  string   `env:"ADDR" validate:"required"`
	DBPath                string   `env:"DB_PATH" validate:"required"`
	LogLevel              string   `env:"LOG_LEVEL" validate:"required,oneof=DEBUG INFO WARN ERROR"`
	GenerationWorkerCount int      `env:"GENERATION_WORKER_COUNT" validate:"min=1"`
	GenerationQueueSize   int      `env:"GENERATION_QUEUE_SIZE" validate:"min=1"`
	GeminiModel           string   `env:"GEMINI_MODEL" validate:"required"`
	GeminiFallbackModel   string   `env:"GEMINI_FALLBACK_MODEL"`
	ClaudeModel           string   `env:"CLAUDE_MODEL" validate:"required"`
	ClaudeAPIURL          string   `env:"CLAUDE_API_URL" validate:"required,url"`
	GeminiMaxChars        int      `env:"GEMINI_MAX_CHARS" validate:"min=1"`
	ClaudeMaxChars        int      `env:"CLAUDE_MAX_CHARS" validate:"min=1"`
	ClaudeMaxTokens       int      `env:"CLAUDE_MAX_TOKENS" validate:"min=1"`
	AITimeoutSeconds      int      `env:"AI_TIMEOUT_SECONDS" validate:"gte=0"`
	MaxUploadMB           int      `env:"MAX_UPLOAD_MB" validate:"min=1"`
	QuestionPrefixes      []string `env:"HEURISTIC_QUESTION_PREFIXES" validate:"min=1,dive,required"`
	AnswerPrefixes        []string `env:"HEURISTIC_ANSWER_PREFIXES" validate:"min=1,dive,required"`
	QuestionSuffix        string   `env:"HEURISTIC_QUESTION_SUFFIX"`
}

var defaults = map[string]any{
	"ADDR":                        ":8080",
	"DB_PATH":                     "file:flashcards.db",
	"LOG_LEVEL":                   "INFO",
	"GENERATION_WORKER_COUNT":     1,
	"GENERATION_QUEUE_SIZE":       8,
	"GEMINI_MODEL":                "gemini-3-pro-preview",
	"GEMINI_FALLBACK_MODEL":       "gemini-1.5-pro",
	"CLAUDE_MODEL":                "claude-3-5-sonnet-20241022",
	"CLAUDE_API_URL":              "https://api.anthropic.com/v1/messages",
	"GEMINI_MAX_CHARS":            500000,
	"CLAUDE_MAX_CHARS":            100000,
	"CLAUDE_MAX_TOKENS":           4096,
	"AI_TIMEOUT_SECONDS":          0,
	"MAX_UPLOAD_MB":               32,
	"HEURISTIC_QUESTION_PREFIXES": "Q:,Question:",
	"HEURISTIC_ANSWER_PREFIXES":   "A:,Answer:",
	"HEURISTIC_QUESTION_SUFFIX":   "?",
}

// Load reads configuration from a .env file (if present), an optional
// flashcards.yaml in the working directory, and environment variables.
// Environment variables win over the file; missing or invalid values fall
// back to defaults.
func Load() Config {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// working directory for flashcards.yaml.
func LoadFile(path string) Config {
	// Ignore error so the app still starts when .env is absent.
	_ = godotenv.Load()

	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("flashcards")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("ignoring unreadable config file: %v", err)
		}
	}

	return Config{
		Addr:                  v.GetString("ADDR"),
		DBPath:                v.GetString("DB_PATH"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		GenerationWorkerCount: intOr(v, "GENERATION_WORKER_COUNT"),
		GenerationQueueSize:   intOr(v, "GENERATION_QUEUE_SIZE"),
		GeminiModel:           v.GetString("GEMINI_MODEL"),
		GeminiFallbackModel:   v.GetString("GEMINI_FALLBACK_MODEL"),
		ClaudeModel:           v.GetString("CLAUDE_MODEL"),
		ClaudeAPIURL:          v.GetString("CLAUDE_API_URL"),
		GeminiMaxChars:        intOr(v, "GEMINI_MAX_CHARS"),
		ClaudeMaxChars:        intOr(v, "CLAUDE_MAX_CHARS"),
		ClaudeMaxTokens:       intOr(v, "CLAUDE_MAX_TOKENS"),
		AITimeoutSeconds:      intOr(v, "AI_TIMEOUT_SECONDS"),
		MaxUploadMB:           intOr(v, "MAX_UPLOAD_MB"),
		QuestionPrefixes:      SplitList(v.GetString("HEURISTIC_QUESTION_PREFIXES")),
		AnswerPrefixes:        SplitList(v.GetString("HEURISTIC_ANSWER_PREFIXES")),
		QuestionSuffix:        v.GetString("HEURISTIC_QUESTION_SUFFIX"),
	}
}

// AITimeout returns the per-call AI deadline; zero means none.
func (c Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

// MaxUploadBytes is the multipart limit for PDF uploads.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// SplitList splits a comma separated value, dropping blank entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intOr(v *viper.Viper, key string) int {
	def, _ := defaults[key].(int)
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid value for %s=%q, using default %d", key, raw, def)
		return def
	}
	return i
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate normalizes the log level and checks every field, reporting all
// problems at once.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))

	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	if idx := strings.Index(name, "["); idx >= 0 {
		name = name[:idx]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s cannot be empty", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value())
	case "min", "gte":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must list at least %s entries", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s, got %v", name, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", name)
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
