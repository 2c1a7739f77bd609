package extract

import (
	"context"
	"testing"
)

func TestExtractTextRejectsNonPDF(t *testing.T) {
	e := NewPDFExtractor()
	if _, err := e.ExtractText(context.Background(), []byte("plain text, not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf data")
	}
}

func TestFullTextRejectsNonPDF(t *testing.T) {
	e := NewPDFExtractor()
	if _, err := e.FullText([]byte("plain text, not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf data")
	}
}
