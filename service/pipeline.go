package services

import (
	"context"
	"fmt"
	"log"
)

// AnalyzeDocument schedules the full analysis pipeline for one document on a
// background worker, so the upload request returns immediately. Concurrency
// across documents is bounded by the configured worker count; within one
// document the stages run strictly in sequence.
func (s *DocumentService) AnalyzeDocument(docID uint) {
	go func() {
		ctx := context.Background()
		if err := s.workers.Acquire(ctx, 1); err != nil {
			log.Printf("ERROR acquiring analysis worker for document %d: %v", docID, err)
			return
		}
		defer s.workers.Release(1)

		s.runPipeline(ctx, docID)
	}()
}

// runPipeline drives the stages in order. Only text extraction is fatal;
// the LLM-backed stages degrade to sentinel values so every run that gets
// past stage 1 ends with a complete record at status 5.
func (s *DocumentService) runPipeline(ctx context.Context, docID uint) {
	log.Printf("Starting analysis for document %d", docID)

	// Stage 1: text extraction, status 1. Fatal on failure.
	if !s.ExtractFileText(docID) {
		log.Printf("Failed to extract text from document %d", docID)
		s.recordProcessingError(docID, "text extraction failed")
		return
	}

	doc, err := s.GetDocument(docID)
	if err != nil || doc.FileText == "" {
		log.Printf("Document %d not found or has no text content", docID)
		s.recordProcessingError(docID, "document has no text content")
		return
	}
	textContent := doc.FileText
	log.Printf("Successfully extracted text from document %d", docID)

	// Stage 2: structured information, status 2. Degrades to empty lists.
	log.Printf("Starting information extraction for document %d", docID)
	info := s.extractInformation(ctx, textContent, docID)
	log.Printf("Completed information extraction for document %d", docID)

	// Stage 3: summary, status 3. Degrades to "No summary".
	log.Printf("Starting summary generation for document %d", docID)
	contractSummary := s.summarize(ctx, textContent, docID)
	log.Printf("Completed summary generation for document %d", docID)

	// Stage 4: potential risks, status 4. Degrades to "No risks identified".
	log.Printf("Starting risk analysis for document %d", docID)
	potentialRisks := s.findPotentialRisks(ctx, textContent, docID)
	log.Printf("Completed risk analysis for document %d", docID)

	// Stage 5: sequential evaluation chain and final verdicts.
	log.Printf("Starting final analysis for document %d", docID)
	transcript := s.chain.Run(docID)
	compliance, risk, renewal := DeriveVerdicts(transcript)

	// Persist everything in one statement, status 5.
	log.Printf("Updating final results for document %d", docID)
	if err := s.UpdateDocumentAnalysis(docID, info, compliance, risk, renewal, contractSummary, potentialRisks); err != nil {
		log.Printf("ERROR in final update for document %d: %v", docID, err)
		s.recordProcessingError(docID, fmt.Sprintf("final update failed: %v", err))
		return
	}

	log.Printf("Completed analysis for document %d", docID)
}
