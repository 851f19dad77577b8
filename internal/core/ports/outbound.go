package ports

import (
	"context"
	"time"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

// BackendGateway wraps the filing backend's HTTP API. Every call carries
// the caller identity, stamped as a request header by the implementation.
// Reads are idempotent and retry-safe; mutations are one-shot.
type BackendGateway interface {
	ListProjects(ctx context.Context, ident domain.Identity) ([]domain.ProjectSummary, error)
	GetProject(ctx context.Context, ident domain.Identity, projectID string) (*domain.Project, error)
	CreateProject(ctx context.Context, ident domain.Identity, create domain.ProjectCreate) (*domain.Project, error)
	UpdateProject(ctx context.Context, ident domain.Identity, projectID string, update domain.ProjectUpdate) (*domain.Project, error)
	DeleteProject(ctx context.Context, ident domain.Identity, projectID string) error
	ValidateProject(ctx context.Context, ident domain.Identity, projectID string) (*domain.ValidationResult, error)

	UploadDocuments(ctx context.Context, ident domain.Identity, projectID string, files []domain.UploadFile) ([]domain.DocumentUpload, error)
	ListDocuments(ctx context.Context, ident domain.Identity, projectID string) ([]domain.Document, error)
	GetDocument(ctx context.Context, ident domain.Identity, documentID string) (*domain.Document, error)
	GetDocumentPDF(ctx context.Context, ident domain.Identity, documentID string) ([]byte, string, error)
	GetOCRResult(ctx context.Context, ident domain.Identity, documentID string) (*domain.OcrResult, error)
	ReprocessDocument(ctx context.Context, ident domain.Identity, documentID string) (*domain.Document, error)
	SetDocumentLanguage(ctx context.Context, ident domain.Identity, documentID, language string) error
	DeleteDocument(ctx context.Context, ident domain.Identity, documentID string) error

	GetFields(ctx context.Context, ident domain.Identity, documentID string) ([]domain.ExtractedField, error)
	UpdateField(ctx context.Context, ident domain.Identity, fieldID string, update domain.FieldUpdate) (*domain.ExtractedField, error)
	ConfirmField(ctx context.Context, ident domain.Identity, fieldID string) (*domain.ExtractedField, error)
	ConfirmAllFields(ctx context.Context, ident domain.Identity, documentID string) (int, error)

	ExportExcel(ctx context.Context, ident domain.Identity, projectID string) ([]byte, error)
	ExportXML(ctx context.Context, ident domain.Identity, projectID string) (string, error)
	PreviewXML(ctx context.Context, ident domain.Identity, projectID string) (string, error)
	ExportZip(ctx context.Context, ident domain.Identity, projectID string) ([]byte, error)
	ExportHistory(ctx context.Context, ident domain.Identity, projectID string) ([]domain.ExportRecord, error)
}

// QueryCache is the per-resource read cache with invalidate-on-mutation
// discipline. Generations guard against a superseded in-flight fetch
// overwriting a fresher entry.
type QueryCache interface {
	Get(key string) (any, bool)
	GetStale(key string) (any, bool)
	Generation(key string) uint64
	SetIfCurrent(key string, generation uint64, value any)
	Invalidate(keys ...string)
}

// SessionStore persists token -> session records.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// IdentityProvider fronts the external auth service.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, token string) error
	UserFromToken(ctx context.Context, token string) (*domain.User, error)
}

// StatusEventBus moves document status transitions from the watcher to
// SSE subscribers, and watch requests from the web tier to the watcher.
type StatusEventBus interface {
	PublishStatus(ctx context.Context, event domain.StatusEvent) error
	SubscribeStatus(ctx context.Context, projectID string, handler func(domain.StatusEvent)) (func(), error)
	PublishWatchRequest(ctx context.Context, projectID string, ident domain.Identity) error
	SubscribeWatchRequests(ctx context.Context, handler func(context.Context, string, domain.Identity) error) error
}

// UploadPreflight checks a file before it is submitted. A usability
// filter only, not a security boundary.
type UploadPreflight interface {
	Check(file domain.UploadFile) (pageCount int, err error)
}

// WorkbookBuilder renders the locally generated review workbook.
type WorkbookBuilder interface {
	Build(project *domain.Project, fields map[string][]domain.ExtractedField, report *domain.ValidationResult) ([]byte, error)
}
