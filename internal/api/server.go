package api

import (
	"context"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/vytor/flashcardhelper/internal/errors"
	"github.com/vytor/flashcardhelper/internal/jobs"
	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Flashcards     services.FlashcardService
	Settings       services.SettingsService
	Generation     services.GenerationService
	Jobs           jobs.JobQueue
	DB             Pinger
	Templates      *template.Template
	Static         fs.FS
	MaxUploadBytes int64
}

type pageData map[string]any

// flash is a one-shot message carried in the redirect query string.
type flash struct {
	Kind    string
	Message string
}

const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashError   = "error"
)

func flashFromRequest(r *http.Request) *flash {
	q := r.URL.Query()
	msg := q.Get("flash")
	if msg == "" {
		return nil
	}
	kind := q.Get("kind")
	switch kind {
	case flashSuccess, flashInfo, flashError:
	default:
		kind = flashInfo
	}
	return &flash{Kind: kind, Message: msg}
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, target, kind, msg string) {
	u := url.URL{Path: target}
	q := url.Values{}
	q.Set("flash", msg)
	q.Set("kind", kind)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// failForm sends client errors back to the form page as a flash message and
// hands everything else to handleError.
func failForm(w http.ResponseWriter, r *http.Request, target string, err error) {
	appErr, ok := apperrors.As(err)
	if !ok || (appErr.Status >= http.StatusInternalServerError && appErr.Code != apperrors.ErrCodeGenerationFailed) {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Warn("form rejected: %v", appErr)
	redirectWithFlash(w, r, target, flashError, appErr.Message)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}
	if _, ok := data["flash"]; !ok {
		data["flash"] = flashFromRequest(r)
	}

	log := logger.FromContext(r.Context())
	if err := s.Templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

func cardIDParam(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logger.FromContext(r.Context()).Warn("invalid flashcard ID: %s", idStr)
		return 0, apperrors.NewBadRequestError("invalid flashcard ID")
	}
	return id, nil
}
