package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/core/ports"
)

const goodToken = "tok-good"

type fakeSessions struct{}

func (fakeSessions) SignIn(_ context.Context, email, _ string) (*domain.Session, error) {
	return &domain.Session{Token: goodToken, UserID: "user-1", Email: email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (fakeSessions) SignOut(context.Context, string) error { return nil }

func (fakeSessions) Resolve(_ context.Context, token string) (*domain.Session, error) {
	if token != goodToken {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve session", domain.ErrSessionNotFound)
	}
	return &domain.Session{Token: token, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type fakeValidator struct {
	report *ports.ValidationReport
	err    error
}

func (v *fakeValidator) Report(context.Context, domain.Identity, string) (*ports.ValidationReport, error) {
	return v.report, v.err
}

func (v *fakeValidator) LastKnown(string) *ports.ValidationReport { return v.report }

type fakeExporter struct {
	artifact *domain.ExportArtifact
	err      error
	history  []domain.ExportRecord
}

func (e *fakeExporter) Export(context.Context, domain.Identity, string, domain.ExportFormat) (*domain.ExportArtifact, error) {
	return e.artifact, e.err
}

func (e *fakeExporter) PreviewXML(context.Context, domain.Identity, string) (string, error) {
	return "<Preview/>", nil
}

func (e *fakeExporter) SubmitDeclarant(context.Context, domain.Identity, string, domain.DeclarantInfo) (*ports.ValidationReport, error) {
	return &ports.ValidationReport{Result: domain.ValidationResult{CanExport: true}}, nil
}

func (e *fakeExporter) History(context.Context, domain.Identity, string) ([]domain.ExportRecord, error) {
	return e.history, nil
}

func (e *fakeExporter) ReviewWorkbook(context.Context, domain.Identity, string) (*domain.ExportArtifact, error) {
	return &domain.ExportArtifact{Filename: "osita_review_p1.xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Data: []byte("wb")}, nil
}

type fakeReviewer struct{}

func (fakeReviewer) Fields(context.Context, domain.Identity, string) ([]domain.ExtractedField, error) {
	return []domain.ExtractedField{{ID: "f1", Status: domain.FieldUnconfirmed}}, nil
}

func (fakeReviewer) Confirm(context.Context, domain.Identity, string, string) ([]domain.ExtractedField, error) {
	return []domain.ExtractedField{{ID: "f1", Status: domain.FieldConfirmed}}, nil
}

func (fakeReviewer) Save(context.Context, domain.Identity, string, string, domain.FieldUpdate) ([]domain.ExtractedField, error) {
	return []domain.ExtractedField{{ID: "f1", Status: domain.FieldCorrected}}, nil
}

func (fakeReviewer) ConfirmAll(context.Context, domain.Identity, string) (int, []domain.ExtractedField, error) {
	return 0, []domain.ExtractedField{{ID: "f1", Status: domain.FieldConfirmed}}, nil
}

type fakeUploader struct{}

func (fakeUploader) Upload(context.Context, domain.Identity, string, []domain.UploadFile) ([]domain.DocumentUpload, error) {
	return []domain.DocumentUpload{{ID: "d1", Status: domain.StatusUploaded}}, nil
}

func (fakeUploader) Reprocess(context.Context, domain.Identity, string) (*domain.Document, error) {
	return &domain.Document{ID: "d1", Status: domain.StatusOCRProcessing}, nil
}

type fakeBackend struct {
	ports.BackendGateway
}

func (fakeBackend) ListProjects(context.Context, domain.Identity) ([]domain.ProjectSummary, error) {
	return []domain.ProjectSummary{{ID: "p1", Name: "Steel Q1"}}, nil
}

func (fakeBackend) GetDocument(context.Context, domain.Identity, string) (*domain.Document, error) {
	return &domain.Document{ID: "d1", Status: domain.StatusExtractionComplete}, nil
}

type fakeEventBus struct{}

func (fakeEventBus) PublishStatus(context.Context, domain.StatusEvent) error { return nil }

func (fakeEventBus) SubscribeStatus(context.Context, string, func(domain.StatusEvent)) (func(), error) {
	return func() {}, nil
}

func (fakeEventBus) PublishWatchRequest(context.Context, string, domain.Identity) error { return nil }

func (fakeEventBus) SubscribeWatchRequests(ctx context.Context, _ func(context.Context, string, domain.Identity) error) error {
	<-ctx.Done()
	return ctx.Err()
}

func newTestRouter(validator *fakeValidator, exporter *fakeExporter) http.Handler {
	if validator == nil {
		validator = &fakeValidator{}
	}
	if exporter == nil {
		exporter = &fakeExporter{}
	}
	rt := NewRouter(RouterDeps{
		Sessions:        fakeSessions{},
		Validator:       validator,
		Exporter:        exporter,
		Uploader:        fakeUploader{},
		Reviewer:        fakeReviewer{},
		Gateway:         fakeBackend{},
		Events:          fakeEventBus{},
		CompanionAppURL: "https://app.osita.example",
	})
	return rt.Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	handler := newTestRouter(nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/v1/projects", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/v1/projects", "tok-bad", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/v1/projects", goodToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestSignInReturnsCompanionAppURL(t *testing.T) {
	handler := newTestRouter(nil, nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/auth/signin", "", `{"email":"filer@example.com","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp signInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session == nil || resp.Session.Token != goodToken {
		t.Fatalf("session missing from response: %s", rec.Body.String())
	}
	if resp.CompanionAppURL != "https://app.osita.example" {
		t.Fatalf("companion url = %q", resp.CompanionAppURL)
	}
}

func TestCurrentUserEchoesSession(t *testing.T) {
	handler := newTestRouter(nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/v1/auth/me", goodToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Session *domain.Session `json:"session"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session == nil || resp.Session.UserID != "user-1" {
		t.Fatalf("session lost: %s", rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/v1/auth/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rec.Code)
	}
}

func TestContractRejectsMalformedSignIn(t *testing.T) {
	handler := newTestRouter(nil, nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/auth/signin", "", `{"email":"filer@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password status = %d, want 400", rec.Code)
	}
}

func TestBlockedExportReturns409WithUserMessage(t *testing.T) {
	exporter := &fakeExporter{err: domain.WrapError(domain.ErrExportBlocked, "export", domain.ErrInvalidInput)}
	handler := newTestRouter(nil, exporter)

	rec := doRequest(t, handler, http.MethodPost, "/v1/projects/p1/export/excel", goodToken, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var resp struct {
		Error     string `json:"error"`
		CanExport bool   `json:"can_export"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != domain.ExportBlockedMessage {
		t.Fatalf("error message = %q, want %q", resp.Error, domain.ExportBlockedMessage)
	}
	if resp.CanExport {
		t.Fatalf("blocked response claims exportable")
	}
}

func TestExportDownloadsArtifact(t *testing.T) {
	exporter := &fakeExporter{artifact: &domain.ExportArtifact{
		Format:      domain.ExportExcel,
		Filename:    "osita_report_p1.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        []byte("xlsx-bytes"),
	}}
	handler := newTestRouter(nil, exporter)

	rec := doRequest(t, handler, http.MethodPost, "/v1/projects/p1/export/excel", goodToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "osita_report_p1.xlsx") {
		t.Fatalf("content disposition = %q", got)
	}
	if rec.Body.String() != "xlsx-bytes" {
		t.Fatalf("artifact body lost")
	}
}

func TestUnknownExportFormatIsRejected(t *testing.T) {
	handler := newTestRouter(nil, nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/projects/p1/export/pdf", goodToken, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestValidationResponseCarriesBucketsAndStaleness(t *testing.T) {
	validator := &fakeValidator{report: &ports.ValidationReport{
		Result: domain.ValidationResult{
			Flags: []domain.ValidationFlag{
				{Code: domain.CodeMissingDeclarant, Severity: domain.SeverityBlocking, Message: "Declarant missing"},
				{Code: domain.CodeUnitMixed, Severity: domain.SeverityWarning},
			},
			BlockingCount: 1,
			WarningCount:  1,
		},
		Buckets: domain.SeverityBuckets{
			Blocking: []domain.ValidationFlag{{Code: domain.CodeMissingDeclarant, Severity: domain.SeverityBlocking}},
			Warning:  []domain.ValidationFlag{{Code: domain.CodeUnitMixed, Severity: domain.SeverityWarning}},
		},
		Stale: true,
	}}
	handler := newTestRouter(validator, nil)

	rec := doRequest(t, handler, http.MethodGet, "/v1/projects/p1/validation", goodToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp validationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Stale {
		t.Fatalf("staleness flag lost")
	}
	if len(resp.Blocking) != 1 || len(resp.Warning) != 1 {
		t.Fatalf("buckets lost: %s", rec.Body.String())
	}
	if !resp.Declarant {
		t.Fatalf("declarant remediation not offered")
	}
	if resp.Result.CanExport {
		t.Fatalf("can_export must mirror the backend verdict")
	}
}

func TestConfirmAllReturnsCount(t *testing.T) {
	handler := newTestRouter(nil, nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/documents/d1/fields/confirm-all", goodToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ConfirmedCount int `json:"confirmed_count"`
		Total          int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ConfirmedCount != 0 || resp.Total != 1 {
		t.Fatalf("unexpected response %s", rec.Body.String())
	}
}

func TestExportHistoryHonorsLimit(t *testing.T) {
	exporter := &fakeExporter{history: []domain.ExportRecord{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}}
	handler := newTestRouter(nil, exporter)

	rec := doRequest(t, handler, http.MethodGet, "/v1/projects/p1/export/history?limit=2", goodToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Exports []domain.ExportRecord `json:"exports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Exports) != 2 {
		t.Fatalf("limit ignored, got %d records", len(resp.Exports))
	}
}

func TestRequestIDHeaderIsStamped(t *testing.T) {
	handler := newTestRouter(nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("request id header missing")
	}
}

func TestFlagCatalogueIsPublic(t *testing.T) {
	handler := newTestRouter(nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/v1/flags", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Flags []flagInfo `json:"flags"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Flags) != len(flagCatalogue) {
		t.Fatalf("catalogue truncated: %d", len(resp.Flags))
	}
}
