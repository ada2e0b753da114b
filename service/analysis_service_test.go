package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/contractiq/backend/models"
)

const extractionJSON = `{
	"parties_involved": ["Acme Corp", "Globex Inc"],
	"effective_dates": ["03/15/2024", "03/15/2025"],
	"renewal_terms": ["Auto-renews annually"],
	"compliance_requirements": ["SOC 2 Type II"]
}`

func TestParseUsefulInformation(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
	}{
		{"PlainJSON", extractionJSON, false},
		{"FencedJSON", "```json\n" + extractionJSON + "\n```", false},
		{"NotJSON", "I could not find anything useful.", true},
		{"MissingKey", `{"parties_involved": [], "effective_dates": [], "renewal_terms": []}`, true},
		{"WrongValueType", `{"parties_involved": "Acme", "effective_dates": [], "renewal_terms": [], "compliance_requirements": []}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := parseUsefulInformation(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"Acme Corp", "Globex Inc"}, info.PartiesInvolved)
			assert.Equal(t, []string{"03/15/2024", "03/15/2025"}, info.EffectiveDates)
		})
	}
}

func TestParseUsefulInformationNullListsBecomeEmpty(t *testing.T) {
	info, err := parseUsefulInformation(`{
		"parties_involved": null,
		"effective_dates": null,
		"renewal_terms": null,
		"compliance_requirements": null
	}`)
	require.NoError(t, err)
	assert.NotNil(t, info.PartiesInvolved)
	assert.Len(t, info.PartiesInvolved, 0)
	assert.NotNil(t, info.ComplianceRequirements)
}

func TestExtractInformationSuccessAdvancesStatus(t *testing.T) {
	svc := newTestService(t)
	svc.llm = &mockCompletion{respond: func(string) (string, error) {
		return "```json\n" + extractionJSON + "\n```", nil
	}}

	doc := createTestDocument(t, svc, []byte("pdf"))
	require.NoError(t, svc.UpdateDocumentText(doc.ID, "some text"))

	info := svc.extractInformation(context.Background(), "some text", doc.ID)
	assert.Equal(t, []string{"Acme Corp", "Globex Inc"}, info.PartiesInvolved)

	stored, err := svc.GetDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInfoExtracted, stored.Status)
}

func TestExtractInformationDegradesOnMalformedResponse(t *testing.T) {
	svc := newTestService(t)
	svc.llm = &mockCompletion{respond: func(string) (string, error) {
		return "definitely not json", nil
	}}

	doc := createTestDocument(t, svc, []byte("pdf"))
	require.NoError(t, svc.UpdateDocumentText(doc.ID, "some text"))

	info := svc.extractInformation(context.Background(), "some text", doc.ID)
	assert.Len(t, info.PartiesInvolved, 0)
	assert.Len(t, info.EffectiveDates, 0)
	assert.Len(t, info.RenewalTerms, 0)
	assert.Len(t, info.ComplianceRequirements, 0)

	// Status stays frozen at the last completed stage.
	stored, err := svc.GetDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTextExtracted, stored.Status)
}

func TestExtractInformationDegradesOnClientError(t *testing.T) {
	svc := newTestService(t)
	svc.llm = &mockCompletion{respond: func(string) (string, error) {
		return "", errors.New("backend unavailable")
	}}

	doc := createTestDocument(t, svc, []byte("pdf"))
	info := svc.extractInformation(context.Background(), "some text", doc.ID)
	assert.Len(t, info.PartiesInvolved, 0)
}

func TestSummarize(t *testing.T) {
	svc := newTestService(t)
	doc := createTestDocument(t, svc, []byte("pdf"))
	require.NoError(t, svc.UpdateDocumentText(doc.ID, "some text"))

	t.Run("Success", func(t *testing.T) {
		svc.llm = &mockCompletion{respond: func(string) (string, error) {
			return "The contract is between Acme Corp and Globex Inc.", nil
		}}
		summary := svc.summarize(context.Background(), "some text", doc.ID)
		assert.Equal(t, "The contract is between Acme Corp and Globex Inc.", summary)

		stored, err := svc.GetDocument(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusSummarized, stored.Status)
	})

	t.Run("FailureReturnsSentinel", func(t *testing.T) {
		svc.llm = &mockCompletion{respond: func(string) (string, error) {
			return "", errors.New("backend unavailable")
		}}
		summary := svc.summarize(context.Background(), "some text", doc.ID)
		assert.Equal(t, NoSummarySentinel, summary)
	})
}

func TestFindPotentialRisks(t *testing.T) {
	svc := newTestService(t)
	doc := createTestDocument(t, svc, []byte("pdf"))
	require.NoError(t, svc.UpdateDocumentText(doc.ID, "some text"))

	t.Run("Success", func(t *testing.T) {
		svc.llm = &mockCompletion{respond: func(string) (string, error) {
			return "Unlimited liability because no cap is specified\nAuto renewal because notice period is short", nil
		}}
		risks := svc.findPotentialRisks(context.Background(), "some text", doc.ID)
		assert.Contains(t, risks, "Unlimited liability")

		stored, err := svc.GetDocument(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusRisksFound, stored.Status)
	})

	t.Run("FailureReturnsSentinel", func(t *testing.T) {
		svc.llm = &mockCompletion{respond: func(string) (string, error) {
			return "", errors.New("backend unavailable")
		}}
		risks := svc.findPotentialRisks(context.Background(), "some text", doc.ID)
		assert.Equal(t, NoRisksSentinel, risks)
	})
}

func TestPromptsCarryDocumentText(t *testing.T) {
	svc := newTestService(t)
	doc := createTestDocument(t, svc, []byte("pdf"))

	var seen []string
	svc.llm = &mockCompletion{respond: func(prompt string) (string, error) {
		seen = append(seen, prompt)
		return "ok", nil
	}}

	svc.summarize(context.Background(), "UNIQUE-CONTRACT-TEXT", doc.ID)
	svc.findPotentialRisks(context.Background(), "UNIQUE-CONTRACT-TEXT", doc.ID)

	require.Len(t, seen, 2)
	for _, prompt := range seen {
		assert.Contains(t, prompt, "UNIQUE-CONTRACT-TEXT")
	}
}
