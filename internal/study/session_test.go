package study_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashcardhelper/internal/models"
	"github.com/vytor/flashcardhelper/internal/study"
)

var deck = []models.Flashcard{
	{ID: 1, Question: "q1", Answer: "a1"},
	{ID: 2, Question: "q2", Answer: "a2"},
	{ID: 3, Question: "q3", Answer: "a3"},
}

func TestSession_CurrentAndToggle(t *testing.T) {
	var s study.Session

	card, ok := s.Current(deck)
	require.True(t, ok)
	assert.Equal(t, int64(1), card.ID)
	assert.False(t, s.ShowAnswer)

	s = s.Toggle()
	assert.True(t, s.ShowAnswer, "toggle should reveal the answer")
	s = s.Toggle()
	assert.False(t, s.ShowAnswer, "second toggle should hide it again")
}

func TestSession_NextWrapsAndHidesAnswer(t *testing.T) {
	s := study.Session{Index: 2, ShowAnswer: true}

	s = s.Next(len(deck))

	assert.Equal(t, study.Session{Index: 0}, s)
	card, _ := s.Current(deck)
	assert.Equal(t, "q1", card.Question)
}

func TestSession_NextFromMiddle(t *testing.T) {
	s := study.Session{Index: 0, ShowAnswer: true}.Next(len(deck))

	assert.Equal(t, 1, s.Index)
	assert.False(t, s.ShowAnswer)
}

func TestSession_PrevWraps(t *testing.T) {
	s := study.Session{}.Prev(len(deck))

	assert.Equal(t, 2, s.Index)
	assert.Equal(t, 3, s.Position(len(deck)))
}

func TestSession_SingleCardStaysPut(t *testing.T) {
	s := study.Session{ShowAnswer: true}.Next(1)

	assert.Equal(t, study.Session{}, s)
}

func TestSession_EmptyCollection(t *testing.T) {
	s := study.Session{Index: 4, ShowAnswer: true}

	_, ok := s.Current(nil)
	assert.False(t, ok)
	assert.Equal(t, study.Session{}, s.Next(0))
	assert.Equal(t, study.Session{}, s.Prev(0))
	assert.Equal(t, 0, s.Position(0))
}

func TestSession_CurrentAfterCollectionShrinks(t *testing.T) {
	s := study.Session{Index: 5}

	card, ok := s.Current(deck)
	require.True(t, ok)
	assert.Equal(t, int64(3), card.ID, "index 5 over 3 cards maps to the third")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		index string
		show  string
		n     int
		want  study.Session
	}{
		{"defaults", "", "", 3, study.Session{}},
		{"explicit", "2", "1", 3, study.Session{Index: 2, ShowAnswer: true}},
		{"show true", "1", "true", 3, study.Session{Index: 1, ShowAnswer: true}},
		{"out of range wraps", "4", "", 3, study.Session{Index: 1}},
		{"negative wraps", "-1", "", 3, study.Session{Index: 2}},
		{"garbage", "abc", "maybe", 3, study.Session{}},
		{"empty deck", "2", "1", 0, study.Session{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, study.Parse(tt.index, tt.show, tt.n))
		})
	}
}
