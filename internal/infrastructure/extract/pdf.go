package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/danateck/eco-file-system/internal/domain/services"
)

// PDFExtractor reads the text layer of a PDF. The first page is preferred,
// warranty receipts carry their dates up front, with the whole document as
// a fallback when the cover page has no text layer.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	if reader.NumPage() < 1 {
		return "", nil
	}

	page := reader.Page(1)
	if !page.V.IsNull() {
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf text: %w", err)
		}
		if strings.TrimSpace(content) != "" {
			return content, nil
		}
	}
	return e.FullText(data)
}

// FullText extracts every page, for callers that need more than the head.
func (e *PDFExtractor) FullText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var _ services.TextExtractor = (*PDFExtractor)(nil)
