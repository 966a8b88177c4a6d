package ai

import "strings"

const instructions = `You are a sophisticated study assistant.
Analyze the following text and extract comprehensive flashcards (Question and Answer pairs).
Focus on key definitions, complex relationships, and critical facts that are essential for deep learning.

Return the output ONLY as a valid JSON array of objects with "question" and "answer" keys.
Do not include any explanation or markdown formatting outside the JSON.`

// BuildPrompt appends at most maxChars characters of text to the fixed
// instructions.
func BuildPrompt(text string, maxChars int) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nText:\n")
	sb.WriteString(truncate(text, maxChars))
	return sb.String()
}

// truncate cuts s to n runes. It never splits a multi-byte character.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
