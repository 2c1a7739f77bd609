package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/pkg/logger"
)

// TextExtractor pulls machine-readable text out of a document's bytes, e.g.
// the first page of a PDF.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// OCR recognizes text in scanned images. Optional; a nil OCR skips the step.
type OCR interface {
	Recognize(ctx context.Context, mimeType string, data []byte) (string, error)
}

// ExtractService enriches an uploaded document before it is stored: category
// from the file name (unless the uploader chose one) and, for warranty
// documents, the purchase/expiry/auto-delete dates from the file contents.
type ExtractService struct {
	pdf TextExtractor
	ocr OCR
}

func NewExtractService(pdf TextExtractor, ocr OCR) *ExtractService {
	return &ExtractService{pdf: pdf, ocr: ocr}
}

// Enrich fills in derived fields on doc in place. A category picked by the
// uploader is kept as long as it is one of the known categories.
func (s *ExtractService) Enrich(ctx context.Context, doc *entities.Document, data []byte) {
	if !KnownCategory(doc.Category) {
		doc.Category = GuessCategory(doc.OriginalFileName)
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(doc.OriginalFileName, fileExt(doc.OriginalFileName))
	}

	if doc.Category != CategoryWarranty {
		return
	}

	text := s.text(ctx, doc, data)
	if text == "" {
		return
	}
	dates := ExtractWarranty(text)
	if dates.WarrantyStart == nil && dates.WarrantyExpiresAt == nil {
		return
	}
	doc.WarrantyStart = dates.WarrantyStart
	doc.WarrantyExpiresAt = dates.WarrantyExpiresAt
	doc.AutoDeleteAfter = dates.AutoDeleteAfter
}

// text runs the extraction cascade: PDF text, then OCR, then taking the raw
// bytes as UTF-8 when they decode cleanly. An empty result means no usable
// text was found.
func (s *ExtractService) text(ctx context.Context, doc *entities.Document, data []byte) string {
	if s.pdf != nil && doc.MimeType == "application/pdf" {
		text, err := s.pdf.ExtractText(ctx, data)
		if err != nil {
			logger.Debug("pdf text extraction failed", zap.String("doc_id", doc.ID), zap.Error(err))
		} else if strings.TrimSpace(text) != "" {
			return text
		}
	}

	if s.ocr != nil {
		text, err := s.ocr.Recognize(ctx, doc.MimeType, data)
		if err != nil {
			logger.Debug("ocr failed", zap.String("doc_id", doc.ID), zap.Error(err))
		} else if strings.TrimSpace(text) != "" {
			return text
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}
	return ""
}

func fileExt(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[i:]
	}
	return ""
}
