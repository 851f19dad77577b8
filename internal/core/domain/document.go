package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded             DocumentStatus = "uploaded"
	StatusOCRProcessing        DocumentStatus = "ocr_processing"
	StatusOCRComplete          DocumentStatus = "ocr_complete"
	StatusOCRFailed            DocumentStatus = "ocr_failed"
	StatusExtractionProcessing DocumentStatus = "extraction_processing"
	StatusExtractionComplete   DocumentStatus = "extraction_complete"
	StatusExtractionFailed     DocumentStatus = "extraction_failed"
	StatusReviewed             DocumentStatus = "reviewed"
)

// IsTerminal reports whether the backend pipeline is done with the
// document. Watching stops once every document in a project is terminal.
func (s DocumentStatus) IsTerminal() bool {
	switch s {
	case StatusOCRFailed, StatusExtractionFailed, StatusExtractionComplete, StatusReviewed:
		return true
	}
	return false
}

// IsFailed reports a failure status; these are terminal for the gateway
// and only a user-triggered reprocess starts another attempt.
func (s DocumentStatus) IsFailed() bool {
	return s == StatusOCRFailed || s == StatusExtractionFailed
}

type Document struct {
	ID                string         `json:"id"`
	ProjectID         string         `json:"project_id"`
	Filename          string         `json:"filename"`
	OriginalFilename  string         `json:"original_filename"`
	Status            DocumentStatus `json:"status"`
	PageCount         int            `json:"page_count,omitempty"`
	DetectedLanguage  string         `json:"detected_language,omitempty"`
	LanguageOverride  string         `json:"language_override,omitempty"`
	OCRConfidence     float64        `json:"ocr_confidence,omitempty"`
	OCRProcessingTime float64        `json:"ocr_processing_time,omitempty"`
	FileSize          int64          `json:"file_size,omitempty"`
	ErrorMessage      string         `json:"error_message,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

type DocumentSummary struct {
	ID       string         `json:"id"`
	Filename string         `json:"filename"`
	Status   DocumentStatus `json:"status"`
}

// DocumentUpload is the backend's acknowledgement for one submitted file.
type DocumentUpload struct {
	ID               string         `json:"id"`
	Filename         string         `json:"filename"`
	OriginalFilename string         `json:"original_filename"`
	Status           DocumentStatus `json:"status"`
	FileSize         int64          `json:"file_size,omitempty"`
	Message          string         `json:"message"`
}

type OcrPage struct {
	PageNumber int    `json:"page_number"`
	Markdown   string `json:"markdown"`
	Language   string `json:"language,omitempty"`
}

type OcrResult struct {
	Pages            []OcrPage `json:"pages"`
	PageCount        int       `json:"page_count"`
	DetectedLanguage string    `json:"detected_language"`
	ProcessingTime   float64   `json:"processing_time"`
	Confidence       float64   `json:"confidence"`
}

// StatusEvent records one observed document status transition.
type StatusEvent struct {
	ProjectID  string         `json:"project_id"`
	DocumentID string         `json:"document_id"`
	Filename   string         `json:"filename"`
	From       DocumentStatus `json:"from"`
	To         DocumentStatus `json:"to"`
	ObservedAt time.Time      `json:"observed_at"`
}
