package workbook

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

const (
	fieldsSheet = "Extracted Fields"
	flagsSheet  = "Validation Flags"
)

// Builder renders the review workbook: one sheet of extracted fields per
// document, one sheet of validation flags. Generated locally as a review
// aid; the filed Excel export stays a backend artifact.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Build(project *domain.Project, fields map[string][]domain.ExtractedField, report *domain.ValidationResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", fieldsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(flagsSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	if err := writeFields(f, project, fields); err != nil {
		return nil, err
	}
	if err := writeFlags(f, report); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFields(f *excelize.File, project *domain.Project, fields map[string][]domain.ExtractedField) error {
	header := []any{"Document", "Field", "Type", "Value", "Unit", "Normalized", "Confidence", "Status"}
	if err := setRow(f, fieldsSheet, 1, header); err != nil {
		return err
	}
	if err := setRow(f, fieldsSheet, 2, []any{"Project", project.Name, "", "", "", "", "", string(project.Status)}); err != nil {
		return err
	}

	filenames := make([]string, 0, len(fields))
	for name := range fields {
		filenames = append(filenames, name)
	}
	sort.Strings(filenames)

	row := 3
	for _, name := range filenames {
		for _, field := range fields[name] {
			values := []any{
				name,
				field.FieldName,
				string(field.FieldType),
				field.Value,
				field.Unit,
				field.NormalizedValue,
				field.Confidence,
				string(field.Status),
			}
			if err := setRow(f, fieldsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeFlags(f *excelize.File, report *domain.ValidationResult) error {
	header := []any{"Severity", "Code", "Category", "Message", "Suggestion", "Field", "Document"}
	if err := setRow(f, flagsSheet, 1, header); err != nil {
		return err
	}

	row := 2
	buckets := report.Partition()
	for _, group := range [][]domain.ValidationFlag{buckets.Blocking, buckets.Warning, buckets.Info} {
		for _, flag := range group {
			values := []any{
				string(flag.Severity),
				flag.Code,
				flag.Category,
				flag.Message,
				flag.Suggestion,
				flag.FieldName,
				flag.DocumentID,
			}
			if err := setRow(f, flagsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}

	summary := fmt.Sprintf("%d blocking / %d warnings / %d info / can_export=%t",
		report.BlockingCount, report.WarningCount, report.InfoCount, report.CanExport)
	return setRow(f, flagsSheet, row+1, []any{"Summary", summary})
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("set row: %w", err)
	}
	return nil
}
