package domain

import "time"

type ProjectStatus string

const (
	ProjectDraft       ProjectStatus = "draft"
	ProjectNeedsReview ProjectStatus = "needs_review"
	ProjectExportReady ProjectStatus = "export_ready"
	ProjectExported    ProjectStatus = "exported"
)

type ReportingPeriod string

const (
	PeriodQ1 ReportingPeriod = "Q1"
	PeriodQ2 ReportingPeriod = "Q2"
	PeriodQ3 ReportingPeriod = "Q3"
	PeriodQ4 ReportingPeriod = "Q4"
)

type Address struct {
	Country              string `json:"country"`
	SubDivision          string `json:"sub_division,omitempty"`
	City                 string `json:"city"`
	Street               string `json:"street,omitempty"`
	StreetAdditionalLine string `json:"street_additional_line,omitempty"`
	Number               string `json:"number,omitempty"`
	Postcode             string `json:"postcode,omitempty"`
	POBox                string `json:"po_box,omitempty"`
}

// DeclarantInfo identifies the legal entity filing the report. Required
// before export; its absence is the one blocking flag the gateway can
// remediate inline.
type DeclarantInfo struct {
	IdentificationNumber string   `json:"identification_number"`
	Name                 string   `json:"name"`
	Role                 string   `json:"role,omitempty"`
	Address              *Address `json:"address,omitempty"`
}

// Validate enforces the inline remediation form's mandatory fields.
func (d DeclarantInfo) Validate() error {
	if d.IdentificationNumber == "" {
		return WrapError(ErrInvalidInput, "declarant", errMissing("identification_number"))
	}
	if d.Name == "" {
		return WrapError(ErrInvalidInput, "declarant", errMissing("name"))
	}
	return nil
}

type InstallationInfo struct {
	Name             string   `json:"name,omitempty"`
	Identifier       string   `json:"identifier,omitempty"`
	Country          string   `json:"country,omitempty"`
	Address          *Address `json:"address,omitempty"`
	EconomicActivity string   `json:"economic_activity,omitempty"`
}

// CanonicalData holds the backend-computed aggregate totals. The gateway
// never derives these values itself.
type CanonicalData struct {
	ReportingPeriod           string             `json:"reporting_period,omitempty"`
	ReportingYear             string             `json:"reporting_year,omitempty"`
	Declarant                 *DeclarantInfo     `json:"declarant,omitempty"`
	Installation              *InstallationInfo  `json:"installation,omitempty"`
	TotalElectricityMWh       *float64           `json:"total_electricity_mwh,omitempty"`
	IndirectEmissions         []IndirectEmission `json:"indirect_emissions,omitempty"`
	TotalIndirectEmissionsTCO2 *float64          `json:"total_indirect_emissions_tco2,omitempty"`
	ExtractionVersion         string             `json:"extraction_version,omitempty"`
	LastUpdated               string             `json:"last_updated,omitempty"`
}

type IndirectEmission struct {
	ElectricityConsumedMWh float64 `json:"electricity_consumed_mwh"`
	EmissionFactor         float64 `json:"emission_factor"`
	EmissionFactorSource   string  `json:"emission_factor_source"`
	EmissionsTCO2          float64 `json:"emissions_tco2"`
	PeriodStart            string  `json:"period_start,omitempty"`
	PeriodEnd              string  `json:"period_end,omitempty"`
}

type Project struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Description          string            `json:"description,omitempty"`
	Status               ProjectStatus     `json:"status"`
	ReportingPeriod      ReportingPeriod   `json:"reporting_period,omitempty"`
	ReportingYear        string            `json:"reporting_year,omitempty"`
	DeclarantInfo        *DeclarantInfo    `json:"declarant_info,omitempty"`
	InstallationInfo     *InstallationInfo `json:"installation_info,omitempty"`
	EmissionFactorSource string            `json:"emission_factor_source,omitempty"`
	EmissionFactorValue  string            `json:"emission_factor_value,omitempty"`
	CanonicalData        *CanonicalData    `json:"canonical_data,omitempty"`
	Documents            []DocumentSummary `json:"documents"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

type ProjectSummary struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Status          ProjectStatus   `json:"status"`
	ReportingPeriod ReportingPeriod `json:"reporting_period,omitempty"`
	ReportingYear   string          `json:"reporting_year,omitempty"`
	DocumentCount   int             `json:"document_count"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProjectUpdate is a partial update; nil fields are left untouched by the
// backend. Status transitions stay server-driven and are not settable here.
type ProjectUpdate struct {
	Name                 *string           `json:"name,omitempty"`
	Description          *string           `json:"description,omitempty"`
	ReportingPeriod      *ReportingPeriod  `json:"reporting_period,omitempty"`
	ReportingYear        *string           `json:"reporting_year,omitempty"`
	DeclarantInfo        *DeclarantInfo    `json:"declarant_info,omitempty"`
	InstallationInfo     *InstallationInfo `json:"installation_info,omitempty"`
	EmissionFactorSource *string           `json:"emission_factor_source,omitempty"`
	EmissionFactorValue  *string           `json:"emission_factor_value,omitempty"`
}

type ProjectCreate struct {
	Name                 string            `json:"name"`
	Description          string            `json:"description,omitempty"`
	ReportingPeriod      ReportingPeriod   `json:"reporting_period,omitempty"`
	ReportingYear        string            `json:"reporting_year,omitempty"`
	DeclarantInfo        *DeclarantInfo    `json:"declarant_info,omitempty"`
	InstallationInfo     *InstallationInfo `json:"installation_info,omitempty"`
	EmissionFactorSource string            `json:"emission_factor_source,omitempty"`
	EmissionFactorValue  string            `json:"emission_factor_value,omitempty"`
}

func errMissing(field string) error {
	return &missingFieldError{field: field}
}

type missingFieldError struct {
	field string
}

func (e *missingFieldError) Error() string {
	return e.field + " is required"
}
