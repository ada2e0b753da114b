package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"github.com/contractiq/backend/config"
	model "github.com/contractiq/backend/models"
)

// ErrInvalidPDF is returned when an uploaded payload does not parse as a PDF.
var ErrInvalidPDF = errors.New("uploaded file is not a valid PDF")

// DocumentService owns the document store and drives the analysis pipeline.
type DocumentService struct {
	db       *gorm.DB
	cfg      *config.Config
	llm      CompletionClient
	chain    *EvaluationChain
	s3Client *s3.S3
	esClient *elasticsearch.Client
	workers  *semaphore.Weighted
}

// NewDocumentService initializes the service. S3 archival and Elasticsearch
// indexing are enabled only when configured; the pipeline works without them.
func NewDocumentService(db *gorm.DB, cfg *config.Config) (*DocumentService, error) {
	if db == nil {
		return nil, fmt.Errorf("nil database handle")
	}

	s := &DocumentService{
		db:      db,
		cfg:     cfg,
		llm:     NewGroqClient(cfg),
		chain:   NewEvaluationChain(),
		workers: semaphore.NewWeighted(cfg.AnalysisWorkers),
	}

	if cfg.S3Enabled() {
		sess, err := session.NewSession(&aws.Config{
			Region:           aws.String(cfg.S3Region),
			Endpoint:         aws.String(cfg.S3Endpoint),
			Credentials:      credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
			S3ForcePathStyle: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		s.s3Client = s3.New(sess)
	} else {
		log.Println("S3 archival not configured, uploads are kept in the database only")
	}

	if cfg.ElasticsearchURL != "" {
		esClient, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{cfg.ElasticsearchURL},
		})
		if err != nil {
			log.Printf("Warning: Failed to create Elasticsearch client: %v", err)
		} else {
			s.esClient = esClient
		}
	}

	return s, nil
}

// CreateDocument validates the payload as a PDF and inserts the record with
// status 0. The caller gets the assigned ID back immediately; analysis is
// scheduled separately.
func (s *DocumentService) CreateDocument(filename, contentType string, data []byte) (*model.Document, error) {
	if err := api.Validate(bytes.NewReader(data), nil); err != nil {
		log.Printf("PDF validation failed for %s: %v", filename, err)
		return nil, ErrInvalidPDF
	}

	doc := model.Document{
		Filename:    filename,
		ContentType: contentType,
		FileData:    data,
		FileSize:    int64(len(data)),
		UploadDate:  time.Now().UTC(),
		Status:      model.StatusCreated,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		log.Printf("ERROR saving document to database: %v", err)
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	log.Printf("Document %d created (%s, %d bytes)", doc.ID, filename, doc.FileSize)

	s.archiveDocument(&doc)

	return &doc, nil
}

// GetDocument retrieves one document by ID.
func (s *DocumentService) GetDocument(id uint) (*model.Document, error) {
	var doc model.Document
	if err := s.db.First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetAllDocuments retrieves every document, newest upload first.
func (s *DocumentService) GetAllDocuments() ([]model.Document, error) {
	var docs []model.Document
	result := s.db.Order("upload_date DESC").Find(&docs)
	if result.Error != nil {
		log.Printf("GetAllDocuments: Database query error: %v", result.Error)
		return nil, fmt.Errorf("failed to fetch documents: %w", result.Error)
	}
	log.Printf("GetAllDocuments: Retrieved %d documents", len(docs))
	return docs, nil
}

// UpdateDocumentStatus advances the pipeline status. The guard on the
// current value keeps status monotonically non-decreasing even if stages
// were ever replayed.
func (s *DocumentService) UpdateDocumentStatus(id uint, status int) error {
	result := s.db.Model(&model.Document{}).
		Where("id = ? AND status < ?", id, status).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update status for document %d: %w", id, result.Error)
	}
	return nil
}

// UpdateDocumentText stores the extracted text and advances status to 1 in
// one statement, so readers never see the text without the status.
func (s *DocumentService) UpdateDocumentText(id uint, text string) error {
	result := s.db.Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"file_text": text,
			"status":    model.StatusTextExtracted,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to store extracted text for document %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document %d not found", id)
	}
	return nil
}

// UpdateDocumentAnalysis persists everything the pipeline derived in a
// single statement, setting status to 5. The four lists and the three
// verdicts are committed together; readers never observe a torn write.
func (s *DocumentService) UpdateDocumentAnalysis(
	id uint,
	info model.UsefulInformation,
	compliance bool,
	risk string,
	renewal string,
	contractSummary string,
	potentialRisks string,
) error {
	parties, err := model.EncodeStringList(info.PartiesInvolved)
	if err != nil {
		return fmt.Errorf("failed to encode parties list: %w", err)
	}
	dates, err := model.EncodeStringList(info.EffectiveDates)
	if err != nil {
		return fmt.Errorf("failed to encode dates list: %w", err)
	}
	terms, err := model.EncodeStringList(info.RenewalTerms)
	if err != nil {
		return fmt.Errorf("failed to encode terms list: %w", err)
	}
	requirements, err := model.EncodeStringList(info.ComplianceRequirements)
	if err != nil {
		return fmt.Errorf("failed to encode requirements list: %w", err)
	}

	result := s.db.Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"parties_involved":        parties,
			"effective_dates":         dates,
			"renewal_terms":           terms,
			"compliance_requirements": requirements,
			"compliance":              compliance,
			"risk":                    risk,
			"renewal":                 renewal,
			"contract_summary":        contractSummary,
			"potential_risks":         potentialRisks,
			"status":                  model.StatusComplete,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to store analysis for document %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document %d not found", id)
	}
	return nil
}

// recordProcessingError marks an aborted run without touching status, so a
// frozen status plus a non-empty error is readable as "failed" rather than
// "still processing".
func (s *DocumentService) recordProcessingError(id uint, message string) {
	result := s.db.Model(&model.Document{}).
		Where("id = ?", id).
		Update("processing_error", message)
	if result.Error != nil {
		log.Printf("ERROR recording processing error for document %d: %v", id, result.Error)
	}
}

// archiveDocument copies the raw upload to S3 when configured. Failures are
// logged and swallowed; the database copy is authoritative.
func (s *DocumentService) archiveDocument(doc *model.Document) {
	if s.s3Client == nil {
		return
	}

	key := fmt.Sprintf("%s-%s", uuid.NewString(), doc.Filename)
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc.FileData),
		ContentType: aws.String(doc.ContentType),
	})
	if err != nil {
		log.Printf("S3 archival error for document %d: %v", doc.ID, err)
		return
	}
	log.Printf("Document %d archived to s3://%s/%s", doc.ID, s.cfg.S3Bucket, key)
}

// indexDocument indexes the extracted text in Elasticsearch so the search
// endpoint can find it. Indexing problems never break the pipeline.
func (s *DocumentService) indexDocument(doc *model.Document) {
	if s.esClient == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"document_id": doc.ID,
		"filename":    doc.Filename,
		"file_text":   doc.FileText,
		"timestamp":   time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Failed to marshal document %d for indexing: %v", doc.ID, err)
		return
	}

	res, err := s.esClient.Index(
		"contracts",
		bytes.NewReader(body),
		s.esClient.Index.WithDocumentID(fmt.Sprintf("%d", doc.ID)),
		s.esClient.Index.WithContext(context.Background()),
	)
	if err != nil {
		log.Printf("Elasticsearch indexing error: %v", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("Elasticsearch indexing failed: %s", res.String())
		return
	}
	log.Printf("Document %d indexed in Elasticsearch", doc.ID)
}

// SearchDocuments runs a full-text query over the indexed contracts.
func (s *DocumentService) SearchDocuments(query string) ([]map[string]interface{}, error) {
	if s.esClient == nil {
		return nil, fmt.Errorf("elasticsearch client is not initialized")
	}

	searchQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"file_text", "filename"},
			},
		},
	}
	body, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(context.Background()),
		s.esClient.Search.WithIndex("contracts"),
		s.esClient.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s", res.String())
	}

	var result map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hitsMap, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid hits structure in search response")
	}
	hitsArray, ok := hitsMap["hits"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid hits array in search response")
	}

	var documents []map[string]interface{}
	for _, hit := range hitsArray {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		source, ok := hitMap["_source"].(map[string]interface{})
		if !ok {
			continue
		}
		documents = append(documents, source)
	}

	return documents, nil
}
