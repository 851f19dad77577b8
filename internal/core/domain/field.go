package domain

import "time"

type FieldStatus string

const (
	FieldUnconfirmed FieldStatus = "unconfirmed"
	FieldConfirmed   FieldStatus = "confirmed"
	FieldCorrected   FieldStatus = "corrected"
	FieldManual      FieldStatus = "manual"
)

type FieldType string

const (
	FieldConsumption      FieldType = "consumption"
	FieldUnit             FieldType = "unit"
	FieldPeriodStart      FieldType = "period_start"
	FieldPeriodEnd        FieldType = "period_end"
	FieldBillingPeriod    FieldType = "billing_period"
	FieldMeterID          FieldType = "meter_id"
	FieldSiteAddress      FieldType = "site_address"
	FieldSupplier         FieldType = "supplier"
	FieldTotalAmount      FieldType = "total_amount"
	FieldCurrency         FieldType = "currency"
	FieldLineItem         FieldType = "line_item"
	FieldTotalConsumption FieldType = "total_consumption"
	FieldOther            FieldType = "other"
)

type ExtractedField struct {
	ID              string      `json:"id"`
	FieldName       string      `json:"field_name"`
	FieldType       FieldType   `json:"field_type"`
	Value           string      `json:"value,omitempty"`
	Unit            string      `json:"unit,omitempty"`
	NormalizedValue string      `json:"normalized_value,omitempty"`
	NormalizedUnit  string      `json:"normalized_unit,omitempty"`
	Confidence      float64     `json:"confidence,omitempty"`
	Status          FieldStatus `json:"status"`
	SourcePage      int         `json:"source_page,omitempty"`
	SourceQuote     string      `json:"source_quote,omitempty"`
	OriginalValue   string      `json:"original_value,omitempty"`
	EditReason      string      `json:"edit_reason,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// FieldUpdate carries a user edit. Status defaults to corrected when a
// value or unit changes; manual marks a value the user typed in from
// scratch rather than fixed up.
type FieldUpdate struct {
	Value      *string      `json:"value,omitempty"`
	Unit       *string      `json:"unit,omitempty"`
	Status     *FieldStatus `json:"status,omitempty"`
	EditReason *string      `json:"edit_reason,omitempty"`
}

type Extraction struct {
	ID             string           `json:"id"`
	DocumentID     string           `json:"document_id"`
	Version        int              `json:"version"`
	IsCurrent      bool             `json:"is_current"`
	ModelName      string           `json:"model_name,omitempty"`
	ProcessingTime float64          `json:"processing_time,omitempty"`
	CanonicalData  *CanonicalData   `json:"canonical_data,omitempty"`
	Fields         []ExtractedField `json:"fields"`
	CreatedAt      time.Time        `json:"created_at"`
}
