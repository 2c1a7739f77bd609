package services

import (
	"context"
	"testing"

	"github.com/danateck/eco-file-system/internal/domain/entities"
)

func TestEnrichGuessesCategoryFromFileName(t *testing.T) {
	svc := NewExtractService(nil, nil)
	doc := &entities.Document{OriginalFileName: "מרשם.pdf"}

	svc.Enrich(context.Background(), doc, nil)

	if doc.Category != CategoryMedical {
		t.Fatalf("expected %s, got %s", CategoryMedical, doc.Category)
	}
	if doc.Title != "מרשם" {
		t.Fatalf("expected extension-less title, got %q", doc.Title)
	}
}

func TestEnrichKeepsManualCategory(t *testing.T) {
	svc := NewExtractService(nil, nil)
	doc := &entities.Document{OriginalFileName: "מרשם.pdf", Category: CategoryWork}

	svc.Enrich(context.Background(), doc, nil)

	if doc.Category != CategoryWork {
		t.Fatalf("manual category overridden to %s", doc.Category)
	}
}

func TestEnrichExtractsWarrantyDatesFromRawText(t *testing.T) {
	svc := NewExtractService(nil, nil)
	doc := &entities.Document{
		OriginalFileName: "receipt.txt",
		Category:         CategoryWarranty,
		MimeType:         "text/plain",
	}

	svc.Enrich(context.Background(), doc, []byte("purchase date: 28/10/2025"))

	if doc.WarrantyStart == nil || *doc.WarrantyStart != "2025-10-28" {
		t.Fatalf("warranty start = %v", doc.WarrantyStart)
	}
	if doc.AutoDeleteAfter == nil || *doc.AutoDeleteAfter != "2032-10-28" {
		t.Fatalf("auto delete = %v", doc.AutoDeleteAfter)
	}
}

func TestEnrichSkipsDatesForNonWarranty(t *testing.T) {
	svc := NewExtractService(nil, nil)
	doc := &entities.Document{
		OriginalFileName: "invoice.txt",
		Category:         CategoryFinance,
	}

	svc.Enrich(context.Background(), doc, []byte("purchase date: 28/10/2025"))

	if doc.WarrantyStart != nil {
		t.Fatalf("finance doc must not get warranty dates, got %v", *doc.WarrantyStart)
	}
}
