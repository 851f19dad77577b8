package workbook

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

func TestBuildProducesBothSheets(t *testing.T) {
	project := &domain.Project{ID: "p1", Name: "Steel Q1", Status: domain.ProjectNeedsReview}
	fields := map[string][]domain.ExtractedField{
		"invoice.pdf": {
			{FieldName: "consumption", FieldType: domain.FieldConsumption, Value: "1200", Unit: "kWh", Status: domain.FieldUnconfirmed},
		},
	}
	report := &domain.ValidationResult{
		Flags: []domain.ValidationFlag{
			{Code: domain.CodeMissingDeclarant, Severity: domain.SeverityBlocking, Message: "Declarant missing"},
			{Code: domain.CodeUnitMixed, Severity: domain.SeverityWarning, Message: "Mixed units"},
		},
		BlockingCount: 1,
		WarningCount:  1,
	}

	data, err := NewBuilder().Build(project, fields, report)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Extracted Fields" || sheets[1] != "Validation Flags" {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	name, err := f.GetCellValue("Extracted Fields", "A3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if name != "invoice.pdf" {
		t.Fatalf("first field row document = %q", name)
	}

	severity, err := f.GetCellValue("Validation Flags", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if severity != string(domain.SeverityBlocking) {
		t.Fatalf("blocking flags must come first, got %q", severity)
	}
}

func TestBuildHandlesEmptyProject(t *testing.T) {
	project := &domain.Project{ID: "p1", Name: "Empty", Status: domain.ProjectDraft}
	report := &domain.ValidationResult{CanExport: false}

	data, err := NewBuilder().Build(project, nil, report)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty workbook bytes")
	}
}
