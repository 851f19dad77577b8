package usecase

import (
	"context"
	"fmt"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/core/ports"
)

// ExportWorkflow gates and performs export actions. Gating uses the
// last-known validation verdict only: a blocked project is rejected
// before any backend call is made.
type ExportWorkflow struct {
	gateway   ports.BackendGateway
	validator ports.ValidationReader
	cache     ports.QueryCache
	workbook  ports.WorkbookBuilder
}

func NewExportWorkflow(
	gateway ports.BackendGateway,
	validator ports.ValidationReader,
	cache ports.QueryCache,
	workbook ports.WorkbookBuilder,
) *ExportWorkflow {
	return &ExportWorkflow{
		gateway:   gateway,
		validator: validator,
		cache:     cache,
		workbook:  workbook,
	}
}

func historyKey(projectID string) string {
	return "exports/history/" + projectID
}

// Export produces one artifact in exactly one of the three formats.
// Excel and ZIP are binary downloads; XML is text for the preview pane.
func (w *ExportWorkflow) Export(ctx context.Context, ident domain.Identity, projectID string, format domain.ExportFormat) (*domain.ExportArtifact, error) {
	if projectID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export", fmt.Errorf("empty project id"))
	}
	if !w.validator.LastKnown(projectID).CanExport() {
		return nil, domain.WrapError(domain.ErrExportBlocked, "export", fmt.Errorf("%s", domain.ExportBlockedMessage))
	}

	artifact := &domain.ExportArtifact{
		Format:   format,
		Filename: domain.ExportFilename(format, projectID),
	}

	switch format {
	case domain.ExportExcel:
		data, err := w.gateway.ExportExcel(ctx, ident, projectID)
		if err != nil {
			return nil, fmt.Errorf("export excel: %w", err)
		}
		artifact.Data = data
		artifact.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case domain.ExportZip:
		data, err := w.gateway.ExportZip(ctx, ident, projectID)
		if err != nil {
			return nil, fmt.Errorf("export zip: %w", err)
		}
		artifact.Data = data
		artifact.ContentType = "application/zip"
	case domain.ExportXML:
		xml, err := w.gateway.ExportXML(ctx, ident, projectID)
		if err != nil {
			return nil, fmt.Errorf("export xml: %w", err)
		}
		artifact.XML = xml
		artifact.ContentType = "application/xml"
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "export", fmt.Errorf("unknown format %q", format))
	}

	// History is server-owned; drop the cached copy so the page re-queries.
	w.cache.Invalidate(historyKey(projectID))
	return artifact, nil
}

// PreviewXML renders the XML preview without recording an export.
// Preview is read-derived and allowed regardless of gating so the user
// can inspect what would be produced.
func (w *ExportWorkflow) PreviewXML(ctx context.Context, ident domain.Identity, projectID string) (string, error) {
	xml, err := w.gateway.PreviewXML(ctx, ident, projectID)
	if err != nil {
		return "", fmt.Errorf("preview xml: %w", err)
	}
	return xml, nil
}

// SubmitDeclarant is the inline remediation flow: a partial project
// update carrying only declarant_info, then a fresh validation run. This
// is the only place the workflow mutates project state.
func (w *ExportWorkflow) SubmitDeclarant(ctx context.Context, ident domain.Identity, projectID string, info domain.DeclarantInfo) (*ports.ValidationReport, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}

	if _, err := w.gateway.UpdateProject(ctx, ident, projectID, domain.ProjectUpdate{DeclarantInfo: &info}); err != nil {
		return nil, fmt.Errorf("update declarant: %w", err)
	}

	w.cache.Invalidate("project/"+projectID, validationKey(projectID))
	return w.validator.Report(ctx, ident, projectID)
}

// History returns the project's export records, cached until the next
// successful export invalidates them.
func (w *ExportWorkflow) History(ctx context.Context, ident domain.Identity, projectID string) ([]domain.ExportRecord, error) {
	key := historyKey(projectID)
	if cached, ok := w.cache.Get(key); ok {
		return cached.([]domain.ExportRecord), nil
	}

	generation := w.cache.Generation(key)
	records, err := w.gateway.ExportHistory(ctx, ident, projectID)
	if err != nil {
		return nil, fmt.Errorf("export history: %w", err)
	}
	w.cache.SetIfCurrent(key, generation, records)
	return records, nil
}

// ReviewWorkbook assembles the locally generated workbook of extracted
// fields and validation flags. A review aid, not one of the three gated
// export formats.
func (w *ExportWorkflow) ReviewWorkbook(ctx context.Context, ident domain.Identity, projectID string) (*domain.ExportArtifact, error) {
	project, err := w.gateway.GetProject(ctx, ident, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	fields := make(map[string][]domain.ExtractedField, len(project.Documents))
	for _, doc := range project.Documents {
		docFields, err := w.gateway.GetFields(ctx, ident, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("load fields for %s: %w", doc.ID, err)
		}
		fields[doc.Filename] = docFields
	}

	report, err := w.validator.Report(ctx, ident, projectID)
	if err != nil {
		return nil, err
	}

	data, err := w.workbook.Build(project, fields, &report.Result)
	if err != nil {
		return nil, fmt.Errorf("build review workbook: %w", err)
	}

	return &domain.ExportArtifact{
		Format:      domain.ExportExcel,
		Filename:    domain.ReviewWorkbookFilename(projectID),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}
