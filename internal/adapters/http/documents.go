package httpadapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

const maxUploadBytes = 50 << 20

func (rt *Router) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	projectID := r.PathValue("projectID")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'files' is required"})
		return
	}

	var files []domain.UploadFile
	for _, header := range r.MultipartForm.File["files"] {
		part, err := header.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable file part"})
			return
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable file part"})
			return
		}
		files = append(files, domain.UploadFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	uploads, err := rt.uploader.Upload(r.Context(), ident, projectID, files)
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, len(files), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"documents": uploads, "total": len(uploads)})
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	projectID := r.PathValue("projectID")

	var statusFilter string
	if r.URL.Query().Has("status") {
		if err := runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &statusFilter); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status parameter"})
			return
		}
	}

	docs, err := rt.gateway.ListDocuments(r.Context(), ident, projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	if statusFilter != "" {
		filtered := docs[:0]
		for _, doc := range docs {
			if string(doc.Status) == statusFilter {
				filtered = append(filtered, doc)
			}
		}
		docs = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "total": len(docs)})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	doc, err := rt.gateway.GetDocument(r.Context(), ident, r.PathValue("documentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	badge, err := domain.BadgeForDocument(doc.Status)
	if err != nil {
		slog.Error("unknown_document_status", "document_id", doc.ID, "status", doc.Status)
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": doc, "badge": badge})
}

// getDocumentPDF streams the stored source file so the review pane can
// render it without exposing the backend origin to the browser.
func (rt *Router) getDocumentPDF(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	data, contentType, err := rt.gateway.GetDocumentPDF(r.Context(), ident, r.PathValue("documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if contentType == "" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("write_pdf", "error", err)
	}
}

func (rt *Router) getOCR(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	result, err := rt.gateway.GetOCRResult(r.Context(), ident, r.PathValue("documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) reprocessDocument(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	doc, err := rt.uploader.Reprocess(r.Context(), ident, r.PathValue("documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) setLanguage(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	var req struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "language is required"})
		return
	}

	if err := rt.gateway.SetDocumentLanguage(r.Context(), ident, r.PathValue("documentID"), language); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	if err := rt.gateway.DeleteDocument(r.Context(), ident, r.PathValue("documentID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
