// Package heuristic pulls question/answer pairs out of plain text by looking
// for explicit markers ("Q:", "A:") and question lines ending in "?".
package heuristic

import (
	"strings"

	"github.com/vytor/flashcardhelper/internal/models"
)

// Rules controls which line shapes are recognized.
type Rules struct {
	QuestionPrefixes []string
	AnswerPrefixes   []string
	// QuestionSuffix marks an unprefixed line as a question. Empty disables it.
	QuestionSuffix string
}

// DefaultRules returns the stock marker set.
func DefaultRules() Rules {
	return Rules{
		QuestionPrefixes: []string{"Q:", "Question:"},
		AnswerPrefixes:   []string{"A:", "Answer:"},
		QuestionSuffix:   "?",
	}
}

// Extractor is a stateless line matcher. The zero value uses DefaultRules.
type Extractor struct {
	rules Rules
}

// New returns an extractor for rules. Empty prefix lists fall back to the
// defaults for that list.
func New(rules Rules) *Extractor {
	def := DefaultRules()
	if len(rules.QuestionPrefixes) == 0 {
		rules.QuestionPrefixes = def.QuestionPrefixes
	}
	if len(rules.AnswerPrefixes) == 0 {
		rules.AnswerPrefixes = def.AnswerPrefixes
	}
	return &Extractor{rules: rules}
}

// Extract scans text line by line and returns the recognized pairs in order
// of appearance. It never fails; unrecognized text yields an empty slice.
//
// A pending question is paired with the next answer-marked line, or with the
// next plain line. A new question replaces an unanswered one, answers with no
// pending question are ignored and a question left at the end is dropped.
func (e *Extractor) Extract(text string) []models.CardDraft {
	rules := e.rules
	if len(rules.QuestionPrefixes) == 0 && len(rules.AnswerPrefixes) == 0 {
		rules = DefaultRules()
	}

	drafts := []models.CardDraft{}
	var pending string

	for _, raw := range strings.Split(normalizeNewlines(text), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if rest, ok := cutPrefix(line, rules.QuestionPrefixes); ok {
			if rest != "" {
				pending = rest
			}
			continue
		}

		if rest, ok := cutPrefix(line, rules.AnswerPrefixes); ok {
			if pending != "" && rest != "" {
				drafts = append(drafts, models.CardDraft{Question: pending, Answer: rest})
				pending = ""
			}
			continue
		}

		if rules.QuestionSuffix != "" && strings.HasSuffix(line, rules.QuestionSuffix) {
			pending = line
			continue
		}

		if pending != "" {
			drafts = append(drafts, models.CardDraft{Question: pending, Answer: line})
			pending = ""
		}
	}

	return drafts
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// cutPrefix matches line against prefixes case-insensitively and returns the
// trimmed remainder.
func cutPrefix(line string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if p == "" || len(line) < len(p) {
			continue
		}
		if strings.EqualFold(line[:len(p)], p) {
			return strings.TrimSpace(line[len(p):]), true
		}
	}
	return "", false
}
