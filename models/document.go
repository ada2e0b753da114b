package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Pipeline status values for a Document. Status only ever moves forward
// during a run; a failed run leaves it frozen at the last completed stage.
const (
	StatusCreated       = 0 // record inserted, raw bytes stored
	StatusTextExtracted = 1 // PDF text extracted into FileText
	StatusInfoExtracted = 2 // parties/dates/terms/requirements extracted
	StatusSummarized    = 3 // contract summary generated
	StatusRisksFound    = 4 // potential risks identified
	StatusComplete      = 5 // final verdicts persisted
)

// Document represents an uploaded contract and the analysis fields the
// pipeline fills in stage by stage.
type Document struct {
	// ID is the auto-assigned identifier, immutable after creation.
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Filename is the original name of the uploaded file.
	Filename string `gorm:"not null" json:"filename"`

	// ContentType is the MIME type sent with the upload (application/pdf).
	ContentType string `gorm:"not null" json:"content_type"`

	// FileData holds the raw PDF bytes.
	FileData []byte `gorm:"not null" json:"-"`

	// FileSize is the payload size in bytes.
	FileSize int64 `gorm:"not null" json:"file_size"`

	// UploadDate is set once when the record is created.
	UploadDate time.Time `json:"upload_date"`

	// Status tracks pipeline progress, see the Status* constants.
	Status int `gorm:"default:0" json:"status"`

	// FileText is the plain text extracted from the PDF (stage 1).
	FileText string `json:"file_text,omitempty"`

	// The four list fields below are stored as JSON arrays of strings and
	// are written together by the final analysis update (stage 2 data).
	PartiesInvolved        datatypes.JSON `json:"parties_involved,omitempty"`
	EffectiveDates         datatypes.JSON `json:"effective_dates,omitempty"`
	RenewalTerms           datatypes.JSON `json:"renewal_terms,omitempty"`
	ComplianceRequirements datatypes.JSON `json:"compliance_requirements,omitempty"`

	// Compliance, Risk and Renewal are the three verdicts derived from the
	// sequential evaluation chain (stage 5).
	Compliance bool   `gorm:"default:false" json:"compliance"`
	Risk       string `json:"risk,omitempty"`
	Renewal    string `json:"renewal,omitempty"`

	// ContractSummary is the one-paragraph summary (stage 3).
	ContractSummary string `json:"contract_summary,omitempty"`

	// PotentialRisks is the newline-separated risk listing (stage 4).
	PotentialRisks string `json:"potential_risks,omitempty"`

	// ProcessingError records why a run aborted, so callers can tell a
	// failed document apart from one that is still processing.
	ProcessingError string `json:"processing_error,omitempty"`
}

// EncodeStringList serializes a string slice into a JSON array column value.
// A nil slice encodes as an empty array so a completed stage never leaves a
// null list behind.
func EncodeStringList(items []string) (datatypes.JSON, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// DecodeStringList restores a string slice from a JSON array column value.
// Returns nil for a column that was never populated.
func DecodeStringList(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
