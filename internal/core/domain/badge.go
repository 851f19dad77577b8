package domain

import "fmt"

// Badge is the presentational classification of a status value. The SPA
// renders it; the gateway owns the exhaustive mapping so an unknown status
// fails loudly instead of silently stringifying.
type Badge string

const (
	BadgeNeutral Badge = "neutral"
	BadgePending Badge = "pending"
	BadgeActive  Badge = "active"
	BadgeSuccess Badge = "success"
	BadgeError   Badge = "error"
)

var documentBadges = map[DocumentStatus]Badge{
	StatusUploaded:             BadgePending,
	StatusOCRProcessing:        BadgeActive,
	StatusOCRComplete:          BadgePending,
	StatusOCRFailed:            BadgeError,
	StatusExtractionProcessing: BadgeActive,
	StatusExtractionComplete:   BadgeSuccess,
	StatusExtractionFailed:     BadgeError,
	StatusReviewed:             BadgeSuccess,
}

var projectBadges = map[ProjectStatus]Badge{
	ProjectDraft:       BadgeNeutral,
	ProjectNeedsReview: BadgePending,
	ProjectExportReady: BadgeSuccess,
	ProjectExported:    BadgeSuccess,
}

var fieldBadges = map[FieldStatus]Badge{
	FieldUnconfirmed: BadgeNeutral,
	FieldConfirmed:   BadgeSuccess,
	FieldCorrected:   BadgePending,
	FieldManual:      BadgeActive,
}

// BadgeForDocument maps a document status to its badge. Callers log the
// error and fall back to BadgeNeutral when the status is unknown.
func BadgeForDocument(s DocumentStatus) (Badge, error) {
	if b, ok := documentBadges[s]; ok {
		return b, nil
	}
	return BadgeNeutral, fmt.Errorf("unknown document status %q", s)
}

func BadgeForProject(s ProjectStatus) (Badge, error) {
	if b, ok := projectBadges[s]; ok {
		return b, nil
	}
	return BadgeNeutral, fmt.Errorf("unknown project status %q", s)
}

func BadgeForField(s FieldStatus) (Badge, error) {
	if b, ok := fieldBadges[s]; ok {
		return b, nil
	}
	return BadgeNeutral, fmt.Errorf("unknown field status %q", s)
}
