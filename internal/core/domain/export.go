package domain

import (
	"fmt"
	"time"
)

type ExportFormat string

const (
	ExportExcel ExportFormat = "excel"
	ExportXML   ExportFormat = "xml"
	ExportZip   ExportFormat = "zip"
)

func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(raw) {
	case ExportExcel, ExportXML, ExportZip:
		return ExportFormat(raw), nil
	}
	return "", WrapError(ErrInvalidInput, "export format", fmt.Errorf("unknown format %q", raw))
}

// ExportArtifact is the produced download: binary for Excel/ZIP, text for
// XML (rendered in the preview pane, not downloaded).
type ExportArtifact struct {
	Format      ExportFormat
	Filename    string
	ContentType string
	Data        []byte
	XML         string
}

// ExportFilename embeds the project id prefix the way the original
// downloads do: osita_report_<id8>.xlsx, cbam_package_<id8>.zip.
func ExportFilename(format ExportFormat, projectID string) string {
	prefix := projectID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	switch format {
	case ExportExcel:
		return fmt.Sprintf("osita_report_%s.xlsx", prefix)
	case ExportZip:
		return fmt.Sprintf("cbam_package_%s.zip", prefix)
	default:
		return fmt.Sprintf("cbam_report_%s.xml", prefix)
	}
}

// ReviewWorkbookFilename names the locally generated field-review workbook.
func ReviewWorkbookFilename(projectID string) string {
	prefix := projectID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("osita_review_%s.xlsx", prefix)
}

type ExportRecord struct {
	ID                 string    `json:"id"`
	Format             string    `json:"format"`
	Filename           string    `json:"filename"`
	GeneratedAt        time.Time `json:"generated_at"`
	WarningsCount      int       `json:"warnings_count"`
	BlockingFlagsCount int       `json:"blocking_flags_count"`
}

// UploadFile is one file accepted at the dropzone, held in memory until
// the policy filter and preflight pass.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
