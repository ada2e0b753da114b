package controller

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	model "github.com/contractiq/backend/models"
	service "github.com/contractiq/backend/service"
)

// DocumentController manages HTTP requests for document intake and retrieval.
type DocumentController struct {
	service *service.DocumentService
}

// NewDocumentController initializes the controller with the service.
func NewDocumentController(service *service.DocumentService) *DocumentController {
	return &DocumentController{service}
}

// UploadDocument accepts a PDF, creates the record and kicks off the
// analysis pipeline. The response carries the assigned ID immediately; the
// analysis fields fill in asynchronously.
func (dc *DocumentController) UploadDocument(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Failed to get file from request",
		})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "application/pdf" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Only PDF files are supported",
		})
		return
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		log.Printf("ERROR reading upload %s: %v", header.Filename, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to read file",
		})
		return
	}

	doc, err := dc.service.CreateDocument(header.Filename, contentType, fileBytes)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPDF) {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "Uploaded file is not a valid PDF",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": err.Error(),
		})
		return
	}

	dc.service.AnalyzeDocument(doc.ID)

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Document uploaded successfully, analysis started",
		"id":       doc.ID,
		"filename": doc.Filename,
		"size":     doc.FileSize,
		"status":   doc.Status,
	})
}

// GetDocument returns one document with whatever analysis fields are
// populated so far. Readers may hit this mid-pipeline; absent fields come
// back as null.
func (dc *DocumentController) GetDocument(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Document ID must be an integer",
		})
		return
	}

	doc, err := dc.service.GetDocument(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Document not found",
			})
			return
		}
		log.Printf("Error fetching document %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, documentResponse(doc))
}

// GetAllDocuments returns every document, newest first.
func (dc *DocumentController) GetAllDocuments(ctx *gin.Context) {
	docs, err := dc.service.GetAllDocuments()
	if err != nil {
		log.Printf("Error fetching documents: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to retrieve documents",
		})
		return
	}

	responses := make([]gin.H, 0, len(docs))
	for i := range docs {
		responses = append(responses, documentResponse(&docs[i]))
	}
	ctx.JSON(http.StatusOK, gin.H{
		"documents": responses,
		"total":     len(responses),
	})
}

// SearchDocuments runs a full-text query over indexed contract text.
func (dc *DocumentController) SearchDocuments(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Query parameter 'q' is required",
		})
		return
	}

	results, err := dc.service.SearchDocuments(query)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Search completed successfully",
		"results": results,
	})
}

// documentResponse shapes one document for JSON, decoding the stored list
// columns into arrays. Lists a stage never wrote stay null so clients can
// tell "not yet analyzed" from "analyzed, nothing found".
func documentResponse(doc *model.Document) gin.H {
	parties, _ := model.DecodeStringList(doc.PartiesInvolved)
	dates, _ := model.DecodeStringList(doc.EffectiveDates)
	terms, _ := model.DecodeStringList(doc.RenewalTerms)
	requirements, _ := model.DecodeStringList(doc.ComplianceRequirements)

	return gin.H{
		"id":                      doc.ID,
		"filename":                doc.Filename,
		"content_type":            doc.ContentType,
		"file_size":               doc.FileSize,
		"upload_date":             doc.UploadDate,
		"status":                  doc.Status,
		"file_text":               doc.FileText,
		"parties_involved":        parties,
		"effective_dates":         dates,
		"renewal_terms":           terms,
		"compliance_requirements": requirements,
		"compliance":              doc.Compliance,
		"risk":                    doc.Risk,
		"renewal":                 doc.Renewal,
		"contract_summary":        doc.ContractSummary,
		"potential_risks":         doc.PotentialRisks,
		"processing_error":        doc.ProcessingError,
	}
}
