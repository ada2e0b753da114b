package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/contractiq/backend/config"
	model "github.com/contractiq/backend/models"
)

// mockCompletion stands in for the Groq backend in tests.
type mockCompletion struct {
	respond func(prompt string) (string, error)
	calls   int
}

func (m *mockCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	m.calls++
	return m.respond(prompt)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            "8080",
		SQLitePath:      ":memory:",
		GroqModel:       "llama-3.3-70b-versatile",
		LLMTimeout:      time.Second,
		LLMMaxRetries:   1,
		AnalysisWorkers: 2,
	}
}

// newTestService opens a fresh in-memory store named after the test, so
// parallel test runs never share state.
func newTestService(t *testing.T) *DocumentService {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Document{}))

	svc, err := NewDocumentService(db, testConfig())
	require.NoError(t, err)
	return svc
}

// createTestDocument inserts a record directly, bypassing PDF validation.
func createTestDocument(t *testing.T, svc *DocumentService, data []byte) *model.Document {
	t.Helper()

	doc := model.Document{
		Filename:    "contract.pdf",
		ContentType: "application/pdf",
		FileData:    data,
		FileSize:    int64(len(data)),
		UploadDate:  time.Now().UTC(),
		Status:      model.StatusCreated,
	}
	require.NoError(t, svc.db.Create(&doc).Error)
	return &doc
}
