package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	model "github.com/contractiq/backend/models"
)

// Sentinel values substituted when a degradable stage fails. The pipeline
// keeps going with these instead of aborting.
const (
	NoSummarySentinel = "No summary"
	NoRisksSentinel   = "No risks identified"
)

const informationPrompt = `The text below is an excerpt from a service contract. Extract specific information and return it in JSON format.

CRITICAL INSTRUCTIONS:
1. AVOID DUPLICATES: Never include duplicate items in any list.
2. BE CONCISE: Keep each item brief and to the point.
3. VALIDATE: Each piece of information must be explicitly stated in the text; do not make assumptions.
4. FORMAT: Return output as a valid JSON object, ensuring all fields are lists (even if empty or single item).
5. CALCULATE DATES: If a date is mentioned, calculate the exact start and end dates based on the context and include it in the response.

JSON Response Format:
{
    "parties_involved": ["Service Provider", "Client"],
    "effective_dates": ["03/15/2024", "03/15/2025"],
    "renewal_terms": ["03/15/2025", "03/15/2026"],
    "compliance_requirements": ["Licensee shall comply with SOC 2 Type II requirements, GDPR compliance required for EU data handling"]
}

Text from the service contract:
%s`

const summaryPrompt = `The text below is an excerpt from a service contract. Summarize the important information from the contract into 1 paragraph.

CRITICAL INSTRUCTIONS:
1. AVOID DUPLICATES: Never include duplicate items.
2. BE CONCISE: Keep each line brief and to the point.
3. VALIDATE: Each piece of information must be explicitly stated in the text; do not make assumptions.
4. FORMAT: Return output as a String.
5. INCLUDE: Include but not limited to Parties involved, effective dates, renewal terms, compliance requirements, and cost.

Text from the service contract:
%s`

const risksPrompt = `The text below is an excerpt from a service contract. Identify the potential risks from the contract into 1 paragraph.

CRITICAL INSTRUCTIONS:
1. AVOID DUPLICATES: Never include duplicate items.
2. BE CONCISE: Keep each line brief and to the point.
3. ASSUMPTIONS: You may make any and all assumptions about the potential risks in this contract.
4. FORMAT: Return output as a String.
5. EXPLANATION: Along with each identified risk, include an extremely brief explanation of why this may be a risk.
6. SEPARATE: Separate each risk with a new line.
7. FORMATTING: DO NOT include any special characters in the response. Only newline character is allowed.

Text from the service contract:
%s`

// extractInformation is stage 2: it asks the LLM for the four-list schema
// and advances status to 2 on success. Every failure mode degrades to the
// all-empty value so the pipeline continues with what it has.
func (s *DocumentService) extractInformation(ctx context.Context, textContent string, docID uint) model.UsefulInformation {
	response, err := s.llm.Complete(ctx, fmt.Sprintf(informationPrompt, textContent))
	if err != nil {
		log.Printf("Error in information extraction for document %d: %v", docID, err)
		return model.EmptyUsefulInformation()
	}

	info, err := parseUsefulInformation(response)
	if err != nil {
		log.Printf("Error parsing extraction response for document %d: %v", docID, err)
		return model.EmptyUsefulInformation()
	}

	if err := s.UpdateDocumentStatus(docID, model.StatusInfoExtracted); err != nil {
		log.Printf("Error in information extraction for document %d: %v", docID, err)
		return model.EmptyUsefulInformation()
	}

	return info
}

// parseUsefulInformation strips code fences, parses the JSON and checks that
// all four schema keys are present, to catch prompts the model answered
// loosely.
func parseUsefulInformation(response string) (model.UsefulInformation, error) {
	cleaned := stripCodeFence(response)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return model.UsefulInformation{}, fmt.Errorf("response is not a JSON object: %w", err)
	}
	for _, key := range []string{"parties_involved", "effective_dates", "renewal_terms", "compliance_requirements"} {
		if _, ok := raw[key]; !ok {
			return model.UsefulInformation{}, fmt.Errorf("response is missing required key %q", key)
		}
	}

	var info model.UsefulInformation
	if err := json.Unmarshal([]byte(cleaned), &info); err != nil {
		return model.UsefulInformation{}, fmt.Errorf("response does not match the schema: %w", err)
	}

	// All four fields must come back as lists, possibly empty.
	if info.PartiesInvolved == nil {
		info.PartiesInvolved = []string{}
	}
	if info.EffectiveDates == nil {
		info.EffectiveDates = []string{}
	}
	if info.RenewalTerms == nil {
		info.RenewalTerms = []string{}
	}
	if info.ComplianceRequirements == nil {
		info.ComplianceRequirements = []string{}
	}
	return info, nil
}

// summarize is stage 3: one paragraph covering parties, dates, terms,
// requirements and cost. Returns the "No summary" sentinel on failure.
func (s *DocumentService) summarize(ctx context.Context, textContent string, docID uint) string {
	summary, err := s.llm.Complete(ctx, fmt.Sprintf(summaryPrompt, textContent))
	if err != nil {
		log.Printf("Error in summarization for document %d: %v", docID, err)
		return NoSummarySentinel
	}

	if err := s.UpdateDocumentStatus(docID, model.StatusSummarized); err != nil {
		log.Printf("Error in summarization for document %d: %v", docID, err)
		return NoSummarySentinel
	}

	return summary
}

// findPotentialRisks is stage 4: a newline-separated risk listing with brief
// rationale. Returns the "No risks identified" sentinel on failure.
func (s *DocumentService) findPotentialRisks(ctx context.Context, textContent string, docID uint) string {
	risks, err := s.llm.Complete(ctx, fmt.Sprintf(risksPrompt, textContent))
	if err != nil {
		log.Printf("Error in risk finding for document %d: %v", docID, err)
		return NoRisksSentinel
	}

	if err := s.UpdateDocumentStatus(docID, model.StatusRisksFound); err != nil {
		log.Printf("Error in risk finding for document %d: %v", docID, err)
		return NoRisksSentinel
	}

	return risks
}
