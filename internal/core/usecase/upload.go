package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/core/ports"
)

// UploadPolicy bounds what the dropzone accepts before submission.
type UploadPolicy struct {
	MaxFiles     int
	AllowedMIMEs []string
}

func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxFiles:     10,
		AllowedMIMEs: []string{"application/pdf"},
	}
}

func (p UploadPolicy) allows(contentType string) bool {
	for _, m := range p.AllowedMIMEs {
		if m == contentType {
			return true
		}
	}
	return false
}

// DocumentUploader filters local files client-side and submits the
// survivors to the backend in one batch. The filter is a usability
// policy, not a security boundary.
type DocumentUploader struct {
	gateway   ports.BackendGateway
	preflight ports.UploadPreflight
	events    ports.StatusEventBus
	cache     ports.QueryCache
	policy    UploadPolicy
}

func NewDocumentUploader(
	gateway ports.BackendGateway,
	preflight ports.UploadPreflight,
	events ports.StatusEventBus,
	cache ports.QueryCache,
	policy UploadPolicy,
) *DocumentUploader {
	if policy.MaxFiles <= 0 {
		policy = DefaultUploadPolicy()
	}
	return &DocumentUploader{
		gateway:   gateway,
		preflight: preflight,
		events:    events,
		cache:     cache,
		policy:    policy,
	}
}

func documentsKey(projectID string) string {
	return "documents/" + projectID
}

// Upload rejects out-of-policy batches before any network call, submits
// the files, invalidates the document list and asks the watcher to track
// the project's processing.
func (u *DocumentUploader) Upload(ctx context.Context, ident domain.Identity, projectID string, files []domain.UploadFile) ([]domain.DocumentUpload, error) {
	if projectID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("empty project id"))
	}
	if len(files) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("no files selected"))
	}
	if len(files) > u.policy.MaxFiles {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload",
			fmt.Errorf("%d files exceed the limit of %d", len(files), u.policy.MaxFiles))
	}
	for _, f := range files {
		if !u.policy.allows(f.ContentType) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "upload",
				fmt.Errorf("%s: type %s is not accepted", f.Filename, f.ContentType))
		}
		if u.preflight != nil {
			pages, err := u.preflight.Check(f)
			if err != nil {
				return nil, domain.WrapError(domain.ErrInvalidInput, "upload",
					fmt.Errorf("%s: %w", f.Filename, err))
			}
			slog.Debug("upload_preflight_ok", "filename", f.Filename, "pages", pages)
		}
	}

	uploads, err := u.gateway.UploadDocuments(ctx, ident, projectID, files)
	if err != nil {
		return nil, fmt.Errorf("submit documents: %w", err)
	}

	u.cache.Invalidate(documentsKey(projectID), "project/"+projectID)

	if u.events != nil {
		if err := u.events.PublishWatchRequest(ctx, projectID, ident); err != nil {
			// Watch delivery is best-effort; the page poll still covers it.
			slog.Warn("watch_request_publish_failed", "project_id", projectID, "error", err)
		}
	}

	return uploads, nil
}

// Reprocess re-submits a failed document for another asynchronous
// attempt. Never triggered automatically.
func (u *DocumentUploader) Reprocess(ctx context.Context, ident domain.Identity, documentID string) (*domain.Document, error) {
	doc, err := u.gateway.ReprocessDocument(ctx, ident, documentID)
	if err != nil {
		return nil, fmt.Errorf("reprocess document: %w", err)
	}

	u.cache.Invalidate(documentsKey(doc.ProjectID))

	if u.events != nil {
		if err := u.events.PublishWatchRequest(ctx, doc.ProjectID, ident); err != nil {
			slog.Warn("watch_request_publish_failed", "project_id", doc.ProjectID, "error", err)
		}
	}
	return doc, nil
}
