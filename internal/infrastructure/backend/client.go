package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/infrastructure/resilience"
)

// Client is the gateway to the filing backend's REST API. The caller
// identity rides along as the X-User-ID header on every request, the way
// the browser app's request interceptor attaches it.
type Client struct {
	baseURL    string
	httpClient httpDoer
	executor   *resilience.Executor
}

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
}

func New(baseURL string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	executor := options.Executor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api",
		httpClient: newHTTPClient(timeout),
		executor:   executor,
	}
}

func (c *Client) ListProjects(ctx context.Context, ident domain.Identity) ([]domain.ProjectSummary, error) {
	var out []domain.ProjectSummary
	if err := c.getJSON(ctx, ident, "/projects", &out, "projects.list"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, ident domain.Identity, projectID string) (*domain.Project, error) {
	var out domain.Project
	if err := c.getJSON(ctx, ident, "/projects/"+url.PathEscape(projectID), &out, "projects.get"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, ident domain.Identity, create domain.ProjectCreate) (*domain.Project, error) {
	var out domain.Project
	if err := c.sendJSON(ctx, ident, "POST", "/projects", create, &out, "projects.create"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, ident domain.Identity, projectID string, update domain.ProjectUpdate) (*domain.Project, error) {
	var out domain.Project
	if err := c.sendJSON(ctx, ident, "PUT", "/projects/"+url.PathEscape(projectID), update, &out, "projects.update"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, ident domain.Identity, projectID string) error {
	return c.sendJSON(ctx, ident, "DELETE", "/projects/"+url.PathEscape(projectID), nil, nil, "projects.delete")
}

func (c *Client) ValidateProject(ctx context.Context, ident domain.Identity, projectID string) (*domain.ValidationResult, error) {
	var out domain.ValidationResult
	// Validation is read-derived and idempotent despite the POST verb, so
	// it goes through the retrying path.
	if err := c.postIdempotent(ctx, ident, "/projects/"+url.PathEscape(projectID)+"/validate", &out, "projects.validate"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadDocuments(ctx context.Context, ident domain.Identity, projectID string, files []domain.UploadFile) ([]domain.DocumentUpload, error) {
	var out []domain.DocumentUpload
	if err := c.postMultipart(ctx, ident, "/documents/upload/"+url.PathEscape(projectID), files, &out, "documents.upload"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDocuments(ctx context.Context, ident domain.Identity, projectID string) ([]domain.Document, error) {
	var out struct {
		Documents []domain.Document `json:"documents"`
		Total     int               `json:"total"`
	}
	if err := c.getJSON(ctx, ident, "/documents/project/"+url.PathEscape(projectID), &out, "documents.list"); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

func (c *Client) GetDocument(ctx context.Context, ident domain.Identity, documentID string) (*domain.Document, error) {
	var out domain.Document
	if err := c.getJSON(ctx, ident, "/documents/"+url.PathEscape(documentID), &out, "documents.get"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDocumentPDF(ctx context.Context, ident domain.Identity, documentID string) ([]byte, string, error) {
	return c.getBlob(ctx, ident, "/documents/"+url.PathEscape(documentID)+"/pdf", "documents.pdf")
}

func (c *Client) GetOCRResult(ctx context.Context, ident domain.Identity, documentID string) (*domain.OcrResult, error) {
	var out domain.OcrResult
	if err := c.getJSON(ctx, ident, "/documents/"+url.PathEscape(documentID)+"/ocr", &out, "documents.ocr"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReprocessDocument(ctx context.Context, ident domain.Identity, documentID string) (*domain.Document, error) {
	var out domain.Document
	if err := c.sendJSON(ctx, ident, "POST", "/documents/"+url.PathEscape(documentID)+"/reprocess", nil, &out, "documents.reprocess"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetDocumentLanguage(ctx context.Context, ident domain.Identity, documentID, language string) error {
	path := "/documents/" + url.PathEscape(documentID) + "/language?language=" + url.QueryEscape(language)
	return c.sendJSON(ctx, ident, "PUT", path, nil, nil, "documents.language")
}

func (c *Client) DeleteDocument(ctx context.Context, ident domain.Identity, documentID string) error {
	return c.sendJSON(ctx, ident, "DELETE", "/documents/"+url.PathEscape(documentID), nil, nil, "documents.delete")
}

func (c *Client) GetFields(ctx context.Context, ident domain.Identity, documentID string) ([]domain.ExtractedField, error) {
	var out []domain.ExtractedField
	if err := c.getJSON(ctx, ident, "/extractions/document/"+url.PathEscape(documentID)+"/fields", &out, "extractions.fields"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateField(ctx context.Context, ident domain.Identity, fieldID string, update domain.FieldUpdate) (*domain.ExtractedField, error) {
	var out domain.ExtractedField
	if err := c.sendJSON(ctx, ident, "PUT", "/extractions/field/"+url.PathEscape(fieldID), update, &out, "extractions.update"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmField(ctx context.Context, ident domain.Identity, fieldID string) (*domain.ExtractedField, error) {
	var out domain.ExtractedField
	if err := c.sendJSON(ctx, ident, "POST", "/extractions/field/"+url.PathEscape(fieldID)+"/confirm", nil, &out, "extractions.confirm"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmAllFields(ctx context.Context, ident domain.Identity, documentID string) (int, error) {
	var out struct {
		ConfirmedCount int `json:"confirmed_count"`
	}
	if err := c.sendJSON(ctx, ident, "POST", "/extractions/document/"+url.PathEscape(documentID)+"/confirm-all", nil, &out, "extractions.confirm_all"); err != nil {
		return 0, err
	}
	return out.ConfirmedCount, nil
}

func (c *Client) ExportExcel(ctx context.Context, ident domain.Identity, projectID string) ([]byte, error) {
	return c.postBlob(ctx, ident, "/exports/project/"+url.PathEscape(projectID)+"/excel", "exports.excel")
}

func (c *Client) ExportXML(ctx context.Context, ident domain.Identity, projectID string) (string, error) {
	data, err := c.postBlob(ctx, ident, "/exports/project/"+url.PathEscape(projectID)+"/xml", "exports.xml")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) PreviewXML(ctx context.Context, ident domain.Identity, projectID string) (string, error) {
	var out struct {
		XML string `json:"xml"`
	}
	if err := c.getJSON(ctx, ident, "/exports/project/"+url.PathEscape(projectID)+"/preview-xml", &out, "exports.preview_xml"); err != nil {
		return "", err
	}
	return out.XML, nil
}

func (c *Client) ExportZip(ctx context.Context, ident domain.Identity, projectID string) ([]byte, error) {
	return c.postBlob(ctx, ident, "/exports/project/"+url.PathEscape(projectID)+"/zip", "exports.zip")
}

func (c *Client) ExportHistory(ctx context.Context, ident domain.Identity, projectID string) ([]domain.ExportRecord, error) {
	var out []domain.ExportRecord
	if err := c.getJSON(ctx, ident, "/exports/project/"+url.PathEscape(projectID)+"/history", &out, "exports.history"); err != nil {
		return nil, err
	}
	return out, nil
}

func requireIdentity(ident domain.Identity, operation string) error {
	if !ident.Valid() {
		return domain.WrapError(domain.ErrUnauthorized, operation, fmt.Errorf("missing identity"))
	}
	return nil
}
