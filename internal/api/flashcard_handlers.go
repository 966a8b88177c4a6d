package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/flashcardhelper/internal/logger"
)

const (
	msgFlashcardAdded   = "Flashcard added!"
	msgFlashcardUpdated = "Flashcard updated."
	msgFlashcardDeleted = "Flashcard deleted."
)

func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	cards := s.Flashcards.List(r.Context())
	editing, _ := strconv.ParseInt(r.URL.Query().Get("edit"), 10, 64)
	log.Debug("rendering %d flashcards", len(cards))

	s.render(w, r, "pages/flashcards.html", pageData{
		"title":   "Flashcards",
		"nav":     "list",
		"cards":   cards,
		"editing": editing,
	})
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	card, err := s.Flashcards.Add(r.Context(), r.FormValue("question"), r.FormValue("answer"))
	if err != nil {
		failForm(w, r, "/flashcards", err)
		return
	}

	logger.FromContext(r.Context()).WithField("flashcard_id", card.ID).Info("flashcard created")
	redirectWithFlash(w, r, "/flashcards", flashSuccess, msgFlashcardAdded)
}

func (s *Server) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := cardIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if _, err := s.Flashcards.Update(r.Context(), id, r.FormValue("question"), r.FormValue("answer")); err != nil {
		failForm(w, r, "/flashcards", err)
		return
	}
	redirectWithFlash(w, r, "/flashcards", flashSuccess, msgFlashcardUpdated)
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := cardIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Flashcards.Delete(r.Context(), id); err != nil {
		failForm(w, r, "/flashcards", err)
		return
	}
	redirectWithFlash(w, r, "/flashcards", flashSuccess, msgFlashcardDeleted)
}
