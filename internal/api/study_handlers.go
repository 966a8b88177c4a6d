package api

import (
	"net/http"

	"github.com/vytor/flashcardhelper/internal/models"
	"github.com/vytor/flashcardhelper/internal/study"
)

func (s *Server) handleStudy(w http.ResponseWriter, r *http.Request) {
	cards := s.Flashcards.List(r.Context())
	q := r.URL.Query()
	session := study.Parse(q.Get("i"), q.Get("show"), len(cards))

	var current *models.Flashcard
	if card, ok := session.Current(cards); ok {
		current = &card
	}

	s.render(w, r, "pages/study.html", pageData{
		"title":    "Study Mode",
		"nav":      "study",
		"card":     current,
		"session":  session,
		"next":     session.Next(len(cards)),
		"prev":     session.Prev(len(cards)),
		"position": session.Position(len(cards)),
		"total":    len(cards),
	})
}
