// Package pdftext converts PDF documents into plain text for card generation.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/vytor/flashcardhelper/internal/logger"
)

// ErrExtractionFailed wraps every failure to read a document.
var ErrExtractionFailed = errors.New("failed to extract text from PDF")

// ErrNotPDF is returned for content that does not look like a PDF.
var ErrNotPDF = errors.New("content is not a PDF")

const pageSeparator = "\n\n"

// TextExtractor is implemented by Extractor; services depend on this.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte) (string, error)
}

// Extractor reads the text layer of PDF files.
type Extractor struct{}

var _ TextExtractor = (*Extractor)(nil)

func New() *Extractor { return &Extractor{} }

// IsPDF sniffs content for the PDF magic bytes.
func IsPDF(content []byte) bool {
	if bytes.HasPrefix(content, []byte("%PDF-")) {
		return true
	}
	return http.DetectContentType(content) == "application/pdf"
}

// Extract returns the text of every page in order, each page followed by a
// blank line. Pages without a content stream contribute an empty block.
func (e *Extractor) Extract(ctx context.Context, content []byte) (text string, err error) {
	log := logger.FromContext(ctx).WithPrefix("pdftext")

	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrExtractionFailed)
	}
	if !IsPDF(content) {
		return "", fmt.Errorf("%w: %w", ErrExtractionFailed, ErrNotPDF)
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			log.Error("pdf parser panicked: %v", r)
			text = ""
			err = fmt.Errorf("%w: %v", ErrExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		log.Warn("failed to open pdf: %v", err)
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	pages := reader.NumPage()
	log.Debug("extracting text from %d pages", pages)

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			log.Debug("page %d missing, leaving it blank", i)
			sb.WriteString(pageSeparator)
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn("failed to read page %d: %v", i, err)
			return "", fmt.Errorf("%w: page %d: %v", ErrExtractionFailed, i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString(pageSeparator)
	}

	log.Info("extracted %d characters from %d pages", sb.Len(), pages)
	return sb.String(), nil
}
