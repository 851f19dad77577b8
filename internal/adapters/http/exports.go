package httpadapter

import (
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

func (rt *Router) export(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	projectID := r.PathValue("projectID")

	format, err := domain.ParseExportFormat(r.PathValue("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	artifact, err := rt.exporter.Export(r.Context(), ident, projectID, format)
	if rt.metrics != nil {
		if domain.IsKind(err, domain.ErrExportBlocked) {
			rt.metrics.RecordExportBlocked()
		} else {
			rt.metrics.RecordExport(serviceName, string(format), err)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeArtifact(w, artifact)
}

func (rt *Router) previewXML(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	xml, err := rt.exporter.PreviewXML(r.Context(), ident, r.PathValue("projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"xml": xml})
}

func (rt *Router) exportHistory(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	var limit int
	if r.URL.Query().Has("limit") {
		if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit parameter"})
			return
		}
	}

	records, err := rt.exporter.History(r.Context(), ident, r.PathValue("projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": records, "total": len(records)})
}

func (rt *Router) reviewWorkbook(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	artifact, err := rt.exporter.ReviewWorkbook(r.Context(), ident, r.PathValue("projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeArtifact(w, artifact)
}
