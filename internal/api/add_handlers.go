package api

import (
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/vytor/flashcardhelper/internal/errors"
	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/models"
	"github.com/vytor/flashcardhelper/internal/services"
	"github.com/vytor/flashcardhelper/internal/worker"
)

const (
	msgSettingsSaved = "Settings saved."
	msgTextSaved     = "Text saved."
	msgPDFLoaded     = "PDF text extracted. Review or edit it below before generating."
	msgDiscarded     = "Generated flashcards discarded."
	msgSavedFmt      = "Successfully added %d flashcards!"
	msgGeneratedFmt  = "Generated %d flashcards. Review them below."
)

const defaultMaxUpload = 32 << 20

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	state := s.Generation.State()
	data := pageData{
		"title":     "Add Flashcard",
		"nav":       "add",
		"state":     state,
		"ai":        s.Settings.Active(),
		"providers": models.Providers,
		"refresh":   state.Busy,
	}

	// Redirects from /add/generate carry pending=1 until the job finishes.
	if r.URL.Query().Get("pending") == "1" && !state.Busy && state.Last != nil {
		data["flash"] = outcomeFlash(*state.Last)
	}

	s.render(w, r, "pages/add.html", data)
}

// outcomeFlash turns the last generation run into the message shown to the user.
func outcomeFlash(o models.GenerationOutcome) *flash {
	switch {
	case o.Err != "":
		return &flash{Kind: flashError, Message: services.GenerationFailedMessage(o.Provider)}
	case o.Count == 0 && o.Strategy == models.StrategyAI:
		return &flash{Kind: flashInfo, Message: services.MsgAIFoundNothing}
	case o.Count == 0:
		return &flash{Kind: flashInfo, Message: services.MsgNoPatternsFound}
	default:
		return &flash{Kind: flashSuccess, Message: fmt.Sprintf(msgGeneratedFmt, o.Count)}
	}
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := models.Provider(r.FormValue("provider"))

	if err := s.Settings.SetProvider(ctx, provider); err != nil {
		failForm(w, r, "/add", err)
		return
	}

	active := s.Settings.Provider()
	switch {
	case r.FormValue("clear_key") == "1":
		if err := s.Settings.SetAPIKey(ctx, active, ""); err != nil {
			failForm(w, r, "/add", err)
			return
		}
	case r.FormValue("api_key") != "":
		if err := s.Settings.SetAPIKey(ctx, active, r.FormValue("api_key")); err != nil {
			failForm(w, r, "/add", err)
			return
		}
	}

	redirectWithFlash(w, r, "/add", flashSuccess, msgSettingsSaved)
}

func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		log.Warn("failed to parse upload: %v", err)
		redirectWithFlash(w, r, "/add", flashError, services.MsgUploadPDF)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("upload without file: %v", err)
		redirectWithFlash(w, r, "/add", flashError, services.MsgUploadPDF)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read upload %s: %v", header.Filename, err)
		redirectWithFlash(w, r, "/add", flashError, services.MsgPDFParseFailed)
		return
	}

	log = log.WithFields(map[string]any{"filename": header.Filename, "bytes": len(content)})
	if _, err := s.Generation.LoadPDF(r.Context(), content); err != nil {
		failForm(w, r, "/add", err)
		return
	}

	log.Info("PDF uploaded")
	redirectWithFlash(w, r, "/add", flashSuccess, msgPDFLoaded)
}

func (s *Server) handleSaveText(w http.ResponseWriter, r *http.Request) {
	if err := s.Generation.SetSourceText(r.FormValue("text")); err != nil {
		failForm(w, r, "/add", err)
		return
	}
	redirectWithFlash(w, r, "/add", flashInfo, msgTextSaved)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := s.Generation.SetSourceText(r.FormValue("text")); err != nil {
		failForm(w, r, "/add", err)
		return
	}
	if err := s.Generation.Reserve(); err != nil {
		failForm(w, r, "/add", err)
		return
	}

	if s.Jobs == nil {
		s.runInline(w, r)
		return
	}
	if err := s.Jobs.EnqueueGeneration(); err != nil {
		// The workspace is already reserved, so the run cannot be dropped.
		log.Warn("generation queue unavailable, running inline: %v", err)
		s.runInline(w, r)
		return
	}

	log.Info("generation queued")
	http.Redirect(w, r, "/add?pending=1", http.StatusSeeOther)
}

func (s *Server) runInline(w http.ResponseWriter, r *http.Request) {
	job := &worker.GenerateCardsJob{Runner: s.Generation}
	if err := job.Run(r.Context()); err != nil && !apperrors.HasCode(err, apperrors.ErrCodeGenerationFailed) {
		handleError(w, r, err)
		return
	}
	http.Redirect(w, r, "/add?pending=1", http.StatusSeeOther)
}

func (s *Server) handleSaveGenerated(w http.ResponseWriter, r *http.Request) {
	saved, err := s.Generation.SaveAll(r.Context())
	if err != nil {
		failForm(w, r, "/add", err)
		return
	}
	redirectWithFlash(w, r, "/flashcards", flashSuccess, fmt.Sprintf(msgSavedFmt, len(saved)))
}

func (s *Server) handleDiscardGenerated(w http.ResponseWriter, r *http.Request) {
	if err := s.Generation.Discard(); err != nil {
		failForm(w, r, "/add", err)
		return
	}
	redirectWithFlash(w, r, "/add", flashInfo, msgDiscarded)
}
