package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/core/ports"
	"github.com/ositahq/cbam-gateway/internal/observability/metrics"
)

const serviceName = "web"

type Router struct {
	sessions  ports.SessionManager
	validator ports.ValidationReader
	exporter  ports.Exporter
	uploader  ports.Uploader
	reviewer  ports.Reviewer
	gateway   ports.BackendGateway
	events    ports.StatusEventBus
	metrics   *metrics.WebMetrics

	companionAppURL string
}

type RouterDeps struct {
	Sessions  ports.SessionManager
	Validator ports.ValidationReader
	Exporter  ports.Exporter
	Uploader  ports.Uploader
	Reviewer  ports.Reviewer
	Gateway   ports.BackendGateway
	Events    ports.StatusEventBus
	Metrics   *metrics.WebMetrics

	CompanionAppURL string
}

func NewRouter(deps RouterDeps) *Router {
	return &Router{
		sessions:        deps.Sessions,
		validator:       deps.Validator,
		exporter:        deps.Exporter,
		uploader:        deps.Uploader,
		reviewer:        deps.Reviewer,
		gateway:         deps.Gateway,
		events:          deps.Events,
		metrics:         deps.Metrics,
		companionAppURL: deps.CompanionAppURL,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/auth/signin", rt.signIn)
	mux.HandleFunc("POST /v1/auth/signout", rt.signOut)
	mux.HandleFunc("GET /v1/auth/me", rt.currentUser)
	mux.HandleFunc("GET /v1/flags", rt.flagCatalogue)

	auth := func(h http.HandlerFunc) http.Handler { return rt.authMiddleware(h) }

	mux.Handle("GET /v1/projects", auth(rt.listProjects))
	mux.Handle("POST /v1/projects", auth(rt.createProject))
	mux.Handle("GET /v1/projects/{projectID}", auth(rt.getProject))
	mux.Handle("PATCH /v1/projects/{projectID}", auth(rt.updateProject))
	mux.Handle("DELETE /v1/projects/{projectID}", auth(rt.deleteProject))

	mux.Handle("GET /v1/projects/{projectID}/validation", auth(rt.validation))
	mux.Handle("POST /v1/projects/{projectID}/declarant", auth(rt.submitDeclarant))

	mux.Handle("POST /v1/projects/{projectID}/export/{format}", auth(rt.export))
	mux.Handle("GET /v1/projects/{projectID}/export/preview-xml", auth(rt.previewXML))
	mux.Handle("GET /v1/projects/{projectID}/export/history", auth(rt.exportHistory))
	mux.Handle("GET /v1/projects/{projectID}/review-workbook", auth(rt.reviewWorkbook))

	mux.Handle("POST /v1/projects/{projectID}/documents", auth(rt.uploadDocuments))
	mux.Handle("GET /v1/projects/{projectID}/documents", auth(rt.listDocuments))
	mux.Handle("GET /v1/projects/{projectID}/events", auth(rt.streamEvents))

	mux.Handle("GET /v1/documents/{documentID}", auth(rt.getDocument))
	mux.Handle("GET /v1/documents/{documentID}/pdf", auth(rt.getDocumentPDF))
	mux.Handle("GET /v1/documents/{documentID}/ocr", auth(rt.getOCR))
	mux.Handle("POST /v1/documents/{documentID}/reprocess", auth(rt.reprocessDocument))
	mux.Handle("PUT /v1/documents/{documentID}/language", auth(rt.setLanguage))
	mux.Handle("DELETE /v1/documents/{documentID}", auth(rt.deleteDocument))

	mux.Handle("GET /v1/documents/{documentID}/fields", auth(rt.listFields))
	mux.Handle("POST /v1/documents/{documentID}/fields/confirm-all", auth(rt.confirmAllFields))
	mux.Handle("POST /v1/documents/{documentID}/fields/{fieldID}/confirm", auth(rt.confirmField))
	mux.Handle("PATCH /v1/documents/{documentID}/fields/{fieldID}", auth(rt.saveField))

	var handler http.Handler = mux
	handler = validateRequests(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("write_response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	if domain.IsKind(err, domain.ErrExportBlocked) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      domain.ExportBlockedMessage,
			"can_export": false,
		})
		return
	}
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeArtifact(w http.ResponseWriter, artifact *domain.ExportArtifact) {
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if artifact.XML != "" {
		if _, err := w.Write([]byte(artifact.XML)); err != nil {
			slog.Error("write_artifact", "error", err)
		}
		return
	}
	if _, err := w.Write(artifact.Data); err != nil {
		slog.Error("write_artifact", "error", err)
	}
}
