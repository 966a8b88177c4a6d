package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/flashcards", http.StatusSeeOther)
	})
	r.Get("/flashcards", s.handleFlashcards)
	r.Post("/flashcards", s.handleCreateFlashcard)
	r.Post("/flashcards/{id}", s.handleUpdateFlashcard)
	r.Post("/flashcards/{id}/delete", s.handleDeleteFlashcard)

	r.Get("/add", s.handleAddPage)
	r.Post("/add/settings", s.handleSaveSettings)
	r.Post("/add/pdf", s.handleUploadPDF)
	r.Post("/add/text", s.handleSaveText)
	r.Post("/add/generate", s.handleGenerate)
	r.Post("/add/save", s.handleSaveGenerated)
	r.Post("/add/discard", s.handleDiscardGenerated)

	r.Get("/study", s.handleStudy)

	r.Route("/api", func(r chi.Router) {
		r.Get("/flashcards", s.handleAPIListFlashcards)
		r.Post("/flashcards", s.handleAPICreateFlashcard)
		r.Put("/flashcards/{id}", s.handleAPIUpdateFlashcard)
		r.Delete("/flashcards/{id}", s.handleAPIDeleteFlashcard)
		r.Post("/generate", s.handleAPIGenerate)
		r.Post("/generate/save", s.handleAPISaveGenerated)
	})

	if s.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.Static))))
	}
	return r
}
