package domain

import "time"

// ProcessingStatus describes how far image enrichment has progressed for
// a session.
type ProcessingStatus string

const (
	StatusNotStarted       ProcessingStatus = "not_started"
	StatusProcessingImages ProcessingStatus = "processing_images"
	StatusCompleted        ProcessingStatus = "completed"
	StatusError            ProcessingStatus = "error"
)

// Session is the persisted record of one upload-to-enrichment lifecycle.
// Items is written once at creation (stage 1, no images) and replaced
// wholesale when the background enrichment run finishes (stage 2).
type Session struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"createdAt"`
	ImagePath       string          `json:"imagePath"`
	ExtractedItems  []ExtractedItem `json:"extractedItems,omitempty"`
	Items           []EnrichedItem  `json:"items"`
	ImagesProcessed bool            `json:"imagesProcessed"`
	OCRError        string          `json:"ocrError,omitempty"`
}

// EnrichmentProgress is the process-local progress record for one
// session's enrichment run. It is never persisted.
type EnrichmentProgress struct {
	Status       ProcessingStatus `json:"status"`
	Total        int              `json:"total"`
	Completed    int              `json:"completed"`
	Progress     float64          `json:"progress"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
}

// SessionStatus is the merged polling view of a session: the persisted
// item list plus the live enrichment progress, if any.
type SessionStatus struct {
	SessionID    string           `json:"session_id"`
	Status       ProcessingStatus `json:"status"`
	Progress     float64          `json:"progress"`
	Items        []EnrichedItem   `json:"items"`
	TotalItems   int              `json:"total_items"`
	MatchedItems int              `json:"matched_items"`
	OCRError     string           `json:"ocr_error,omitempty"`
}
