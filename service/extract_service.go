package services

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"

	model "github.com/contractiq/backend/models"
)

// extractPDFText pulls plain text out of every page and joins the pages with
// newlines, in page order.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}

// ExtractFileText is stage 1 of the pipeline: it loads the stored PDF bytes,
// extracts the text and commits it together with status 1. A false return
// means the run is over for this document; nothing is retried.
func (s *DocumentService) ExtractFileText(docID uint) bool {
	log.Printf("Starting text extraction for document %d", docID)

	doc, err := s.GetDocument(docID)
	if err != nil {
		log.Printf("ERROR loading document %d for extraction: %v", docID, err)
		return false
	}

	text, err := extractPDFText(doc.FileData)
	if err != nil {
		log.Printf("ERROR extracting text from document %d: %v", docID, err)
		return false
	}

	if err := s.UpdateDocumentText(docID, text); err != nil {
		log.Printf("ERROR storing extracted text for document %d: %v", docID, err)
		return false
	}

	doc.FileText = text
	doc.Status = model.StatusTextExtracted
	s.indexDocument(doc)

	log.Printf("Completed text extraction for document %d (%d characters)", docID, len(text))
	return true
}
