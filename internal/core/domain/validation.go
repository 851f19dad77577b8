package domain

import "strings"

type FlagSeverity string

const (
	SeverityInfo     FlagSeverity = "info"
	SeverityWarning  FlagSeverity = "warning"
	SeverityBlocking FlagSeverity = "blocking"
)

// Flag codes emitted by the backend validation service.
const (
	CodeMissingRequired       = "MISSING_REQUIRED"
	CodeMissingDeclarant      = "MISSING_DECLARANT"
	CodeMissingEmissionFactor = "MISSING_EMISSION_FACTOR"
	CodeMissingConsumption    = "MISSING_CONSUMPTION"
	CodeMissingPeriod         = "MISSING_PERIOD"
	CodeUnitInvalid           = "UNIT_INVALID"
	CodeUnitMixed             = "UNIT_MIXED"
	CodeTotalLineMismatch     = "TOTAL_LINE_MISMATCH"
	CodePeriodOverlap         = "PERIOD_OVERLAP"
	CodeIncompleteExtraction  = "INCOMPLETE_EXTRACTION"
)

// ValidationFlag is ephemeral: regenerated by the backend on every
// validation request and held only in the query cache.
type ValidationFlag struct {
	Code           string       `json:"code"`
	Category       string       `json:"category"`
	Severity       FlagSeverity `json:"severity"`
	Message        string       `json:"message"`
	Suggestion     string       `json:"suggestion,omitempty"`
	FieldName      string       `json:"field_name,omitempty"`
	DocumentID     string       `json:"document_id,omitempty"`
	IsResolved     bool         `json:"is_resolved"`
	IsAcknowledged bool         `json:"is_acknowledged"`
}

// ValidationResult is the backend's verdict. CanExport is authoritative:
// the gateway reflects it and never recomputes it from the flag list.
type ValidationResult struct {
	Flags         []ValidationFlag `json:"flags"`
	BlockingCount int              `json:"blocking_count"`
	WarningCount  int              `json:"warning_count"`
	InfoCount     int              `json:"info_count"`
	CanExport     bool             `json:"can_export"`
}

// SeverityBuckets splits flags for the three rendering regions.
type SeverityBuckets struct {
	Blocking []ValidationFlag
	Warning  []ValidationFlag
	Info     []ValidationFlag
}

func (r *ValidationResult) Partition() SeverityBuckets {
	var b SeverityBuckets
	for _, f := range r.Flags {
		switch f.Severity {
		case SeverityBlocking:
			b.Blocking = append(b.Blocking, f)
		case SeverityWarning:
			b.Warning = append(b.Warning, f)
		default:
			b.Info = append(b.Info, f)
		}
	}
	return b
}

// RemediationReason names the inline remediation the export page offers
// for a blocking flag, when one exists.
type RemediationReason string

const (
	RemediationNone             RemediationReason = ""
	RemediationMissingDeclarant RemediationReason = "missing_declarant"
)

// RemediationFor routes a blocking flag to its inline remediation. Exact
// code matches are preferred; the substring match on the message is a
// fallback until the backend emits a machine-readable reason for every
// remediation-eligible flag.
func RemediationFor(f ValidationFlag) RemediationReason {
	if f.Severity != SeverityBlocking {
		return RemediationNone
	}
	if f.Code == CodeMissingDeclarant {
		return RemediationMissingDeclarant
	}
	if f.Code == CodeMissingRequired && strings.HasPrefix(f.FieldName, "declarant") {
		return RemediationMissingDeclarant
	}
	if strings.Contains(strings.ToLower(f.Message), "declarant") {
		return RemediationMissingDeclarant
	}
	return RemediationNone
}

// NeedsDeclarant reports whether any blocking flag calls for the inline
// declarant form.
func (r *ValidationResult) NeedsDeclarant() bool {
	for _, f := range r.Flags {
		if RemediationFor(f) == RemediationMissingDeclarant {
			return true
		}
	}
	return false
}
