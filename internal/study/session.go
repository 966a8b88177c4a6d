// Package study walks through the flashcard collection one card at a time.
package study

import (
	"strconv"

	"github.com/vytor/flashcardhelper/internal/models"
)

// Session is the position in a study run. It is a plain value so the web
// layer can carry it in the query string and the CLI can keep it in a loop.
type Session struct {
	Index      int
	ShowAnswer bool
}

// Current returns the card under the cursor. ok is false for an empty
// collection.
func (s Session) Current(cards []models.Flashcard) (card models.Flashcard, ok bool) {
	if len(cards) == 0 {
		return models.Flashcard{}, false
	}
	return cards[s.clamp(len(cards))], true
}

// Toggle flips answer visibility.
func (s Session) Toggle() Session {
	s.ShowAnswer = !s.ShowAnswer
	return s
}

// Next advances to the following card, wrapping to the first, and hides
// the answer.
func (s Session) Next(n int) Session {
	if n <= 0 {
		return Session{}
	}
	return Session{Index: (s.clamp(n) + 1) % n}
}

// Prev moves back one card, wrapping to the last, and hides the answer.
func (s Session) Prev(n int) Session {
	if n <= 0 {
		return Session{}
	}
	return Session{Index: (s.clamp(n) - 1 + n) % n}
}

// Position is the 1-based index shown to the user.
func (s Session) Position(n int) int {
	if n <= 0 {
		return 0
	}
	return s.clamp(n) + 1
}

// clamp maps out of range indexes back into [0, n).
func (s Session) clamp(n int) int {
	if s.Index < 0 || s.Index >= n {
		return ((s.Index % n) + n) % n
	}
	return s.Index
}

// Parse rebuilds a session from query values. Garbage falls back to the
// first card with the answer hidden.
func Parse(index, show string, n int) Session {
	i, err := strconv.Atoi(index)
	if err != nil {
		i = 0
	}
	s := Session{Index: i, ShowAnswer: show == "1" || show == "true"}
	if n > 0 {
		s.Index = s.clamp(n)
	} else {
		s = Session{}
	}
	return s
}
