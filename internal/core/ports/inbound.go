package ports

import (
	"context"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

// SessionManager is the inbound contract for authentication state.
type SessionManager interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// ValidationReader fetches and classifies a project's validation verdict.
type ValidationReader interface {
	Report(ctx context.Context, ident domain.Identity, projectID string) (*ValidationReport, error)
	LastKnown(projectID string) *ValidationReport
}

// ValidationReport is the aggregator's classified view of the backend
// result. Stale marks a result served from cache after a fetch failure.
type ValidationReport struct {
	Result  domain.ValidationResult `json:"result"`
	Buckets domain.SeverityBuckets  `json:"-"`
	Stale   bool                    `json:"stale"`
}

// CanExport reflects the backend verdict; a nil report gates exports off.
func (r *ValidationReport) CanExport() bool {
	return r != nil && r.Result.CanExport
}

// Exporter is the inbound contract for gated export actions.
type Exporter interface {
	Export(ctx context.Context, ident domain.Identity, projectID string, format domain.ExportFormat) (*domain.ExportArtifact, error)
	PreviewXML(ctx context.Context, ident domain.Identity, projectID string) (string, error)
	SubmitDeclarant(ctx context.Context, ident domain.Identity, projectID string, info domain.DeclarantInfo) (*ValidationReport, error)
	History(ctx context.Context, ident domain.Identity, projectID string) ([]domain.ExportRecord, error)
	ReviewWorkbook(ctx context.Context, ident domain.Identity, projectID string) (*domain.ExportArtifact, error)
}

// Uploader accepts local files and submits them to the backend.
type Uploader interface {
	Upload(ctx context.Context, ident domain.Identity, projectID string, files []domain.UploadFile) ([]domain.DocumentUpload, error)
	Reprocess(ctx context.Context, ident domain.Identity, documentID string) (*domain.Document, error)
}

// Watcher tracks asynchronous document processing to completion.
type Watcher interface {
	Watch(ctx context.Context, ident domain.Identity, projectID string) error
}

// Reviewer drives the field confirm/correct flow.
type Reviewer interface {
	Fields(ctx context.Context, ident domain.Identity, documentID string) ([]domain.ExtractedField, error)
	Confirm(ctx context.Context, ident domain.Identity, documentID, fieldID string) ([]domain.ExtractedField, error)
	Save(ctx context.Context, ident domain.Identity, documentID, fieldID string, update domain.FieldUpdate) ([]domain.ExtractedField, error)
	ConfirmAll(ctx context.Context, ident domain.Identity, documentID string) (int, []domain.ExtractedField, error)
}
