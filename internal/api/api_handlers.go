package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/vytor/flashcardhelper/internal/errors"
	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/models"
)

const maxJSONBody = 1 << 20

type flashcardRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type generateRequest struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Outcome  models.GenerationOutcome `json:"outcome"`
	Previews []models.CardDraft       `json:"previews"`
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewBadRequestError("request body is empty")
		}
		logger.FromContext(r.Context()).Warn("invalid JSON body: %v", err)
		return apperrors.NewBadRequestError("invalid JSON body")
	}
	return nil
}

func (s *Server) handleAPIListFlashcards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Flashcards.List(r.Context()))
}

func (s *Server) handleAPICreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req flashcardRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Flashcards.Add(r.Context(), req.Question, req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleAPIUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := cardIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req flashcardRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Flashcards.Update(r.Context(), id, req.Question, req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleAPIDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := cardIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Flashcards.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAPIGenerate runs a generation synchronously and returns the preview.
// Nothing is persisted until /api/generate/save.
func (s *Server) handleAPIGenerate(w http.ResponseWriter, r *http.Request) {
	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUpload
	}

	var req generateRequest
	if err := decodeJSON(w, r, limit, &req); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Generation.SetSourceText(req.Text); err != nil {
		handleError(w, r, err)
		return
	}
	outcome, err := s.Generation.Generate(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, generateResponse{
		Outcome:  outcome,
		Previews: s.Generation.State().Previews,
	})
}

func (s *Server) handleAPISaveGenerated(w http.ResponseWriter, r *http.Request) {
	saved, err := s.Generation.SaveAll(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, saved)
}
