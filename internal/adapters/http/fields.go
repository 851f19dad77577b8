package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

func (rt *Router) listFields(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	fields, err := rt.reviewer.Fields(r.Context(), ident, r.PathValue("documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields, "total": len(fields)})
}

func (rt *Router) confirmField(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	fields, err := rt.reviewer.Confirm(r.Context(), ident, r.PathValue("documentID"), r.PathValue("fieldID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordFieldAction(serviceName, "confirm")
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields, "total": len(fields)})
}

func (rt *Router) saveField(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	var update domain.FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	fields, err := rt.reviewer.Save(r.Context(), ident, r.PathValue("documentID"), r.PathValue("fieldID"), update)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordFieldAction(serviceName, "save")
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields, "total": len(fields)})
}

func (rt *Router) confirmAllFields(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	confirmed, fields, err := rt.reviewer.ConfirmAll(r.Context(), ident, r.PathValue("documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordFieldAction(serviceName, "confirm_all")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"confirmed_count": confirmed,
		"fields":          fields,
		"total":           len(fields),
	})
}
