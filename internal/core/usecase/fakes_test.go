package usecase

import (
	"context"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/core/ports"
)

// fakeGateway overrides only the calls a test exercises; anything else
// panics through the embedded nil interface.
type fakeGateway struct {
	ports.BackendGateway

	calls []string

	validateFn   func(projectID string) (*domain.ValidationResult, error)
	listDocsFn   func(projectID string) ([]domain.Document, error)
	uploadFn     func(projectID string, files []domain.UploadFile) ([]domain.DocumentUpload, error)
	getFieldsFn  func(documentID string) ([]domain.ExtractedField, error)
	updateFldFn  func(fieldID string, update domain.FieldUpdate) (*domain.ExtractedField, error)
	confirmFn    func(fieldID string) (*domain.ExtractedField, error)
	confirmAllFn func(documentID string) (int, error)
	exportXlsFn  func(projectID string) ([]byte, error)
	exportXMLFn  func(projectID string) (string, error)
	previewFn    func(projectID string) (string, error)
	exportZipFn  func(projectID string) ([]byte, error)
	historyFn    func(projectID string) ([]domain.ExportRecord, error)
	getProjFn    func(projectID string) (*domain.Project, error)
	updateProjFn func(projectID string, update domain.ProjectUpdate) (*domain.Project, error)
	reprocessFn  func(documentID string) (*domain.Document, error)
}

func (g *fakeGateway) record(call string) {
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) count(call string) int {
	n := 0
	for _, c := range g.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (g *fakeGateway) ValidateProject(_ context.Context, _ domain.Identity, projectID string) (*domain.ValidationResult, error) {
	g.record("validate")
	return g.validateFn(projectID)
}

func (g *fakeGateway) ListDocuments(_ context.Context, _ domain.Identity, projectID string) ([]domain.Document, error) {
	g.record("list_documents")
	return g.listDocsFn(projectID)
}

func (g *fakeGateway) UploadDocuments(_ context.Context, _ domain.Identity, projectID string, files []domain.UploadFile) ([]domain.DocumentUpload, error) {
	g.record("upload")
	return g.uploadFn(projectID, files)
}

func (g *fakeGateway) GetFields(_ context.Context, _ domain.Identity, documentID string) ([]domain.ExtractedField, error) {
	g.record("get_fields")
	return g.getFieldsFn(documentID)
}

func (g *fakeGateway) UpdateField(_ context.Context, _ domain.Identity, fieldID string, update domain.FieldUpdate) (*domain.ExtractedField, error) {
	g.record("update_field")
	return g.updateFldFn(fieldID, update)
}

func (g *fakeGateway) ConfirmField(_ context.Context, _ domain.Identity, fieldID string) (*domain.ExtractedField, error) {
	g.record("confirm_field")
	return g.confirmFn(fieldID)
}

func (g *fakeGateway) ConfirmAllFields(_ context.Context, _ domain.Identity, documentID string) (int, error) {
	g.record("confirm_all")
	return g.confirmAllFn(documentID)
}

func (g *fakeGateway) ExportExcel(_ context.Context, _ domain.Identity, projectID string) ([]byte, error) {
	g.record("export_excel")
	return g.exportXlsFn(projectID)
}

func (g *fakeGateway) ExportXML(_ context.Context, _ domain.Identity, projectID string) (string, error) {
	g.record("export_xml")
	return g.exportXMLFn(projectID)
}

func (g *fakeGateway) PreviewXML(_ context.Context, _ domain.Identity, projectID string) (string, error) {
	g.record("preview_xml")
	return g.previewFn(projectID)
}

func (g *fakeGateway) ExportZip(_ context.Context, _ domain.Identity, projectID string) ([]byte, error) {
	g.record("export_zip")
	return g.exportZipFn(projectID)
}

func (g *fakeGateway) ExportHistory(_ context.Context, _ domain.Identity, projectID string) ([]domain.ExportRecord, error) {
	g.record("export_history")
	return g.historyFn(projectID)
}

func (g *fakeGateway) GetProject(_ context.Context, _ domain.Identity, projectID string) (*domain.Project, error) {
	g.record("get_project")
	return g.getProjFn(projectID)
}

func (g *fakeGateway) UpdateProject(_ context.Context, _ domain.Identity, projectID string, update domain.ProjectUpdate) (*domain.Project, error) {
	g.record("update_project")
	return g.updateProjFn(projectID, update)
}

func (g *fakeGateway) ReprocessDocument(_ context.Context, _ domain.Identity, documentID string) (*domain.Document, error) {
	g.record("reprocess")
	return g.reprocessFn(documentID)
}

// fakeCache keeps every entry fresh and honors generation fencing.
type fakeCache struct {
	values map[string]any
	gens   map[string]uint64
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]any{}, gens: map[string]uint64{}}
}

func (c *fakeCache) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *fakeCache) GetStale(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *fakeCache) Generation(key string) uint64 {
	return c.gens[key]
}

func (c *fakeCache) SetIfCurrent(key string, generation uint64, value any) {
	if c.gens[key] != generation {
		return
	}
	c.values[key] = value
}

func (c *fakeCache) Invalidate(keys ...string) {
	for _, key := range keys {
		delete(c.values, key)
		c.gens[key]++
	}
}

type fakeBus struct {
	statusEvents  []domain.StatusEvent
	watchRequests []string
	publishErr    error
}

func (b *fakeBus) PublishStatus(_ context.Context, event domain.StatusEvent) error {
	b.statusEvents = append(b.statusEvents, event)
	return b.publishErr
}

func (b *fakeBus) SubscribeStatus(context.Context, string, func(domain.StatusEvent)) (func(), error) {
	return func() {}, nil
}

func (b *fakeBus) PublishWatchRequest(_ context.Context, projectID string, _ domain.Identity) error {
	b.watchRequests = append(b.watchRequests, projectID)
	return b.publishErr
}

func (b *fakeBus) SubscribeWatchRequests(ctx context.Context, _ func(context.Context, string, domain.Identity) error) error {
	<-ctx.Done()
	return ctx.Err()
}

type fakePreflight struct {
	pages int
	err   error
}

func (p *fakePreflight) Check(domain.UploadFile) (int, error) {
	return p.pages, p.err
}

type fakeWorkbook struct {
	data []byte
	err  error
}

func (w *fakeWorkbook) Build(*domain.Project, map[string][]domain.ExtractedField, *domain.ValidationResult) ([]byte, error) {
	return w.data, w.err
}

var testIdentity = domain.Identity{UserID: "user-1", Email: "filer@example.com"}
