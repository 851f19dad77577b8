package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

func (rt *Router) listProjects(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	projects, err := rt.gateway.ListProjects(r.Context(), ident)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects, "total": len(projects)})
}

func (rt *Router) createProject(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	var create domain.ProjectCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	project, err := rt.gateway.CreateProject(r.Context(), ident, create)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (rt *Router) getProject(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	project, err := rt.gateway.GetProject(r.Context(), ident, r.PathValue("projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (rt *Router) updateProject(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	var update domain.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	project, err := rt.gateway.UpdateProject(r.Context(), ident, r.PathValue("projectID"), update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (rt *Router) deleteProject(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	if err := rt.gateway.DeleteProject(r.Context(), ident, r.PathValue("projectID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type validationResponse struct {
	Result    domain.ValidationResult `json:"result"`
	Blocking  []domain.ValidationFlag `json:"blocking"`
	Warning   []domain.ValidationFlag `json:"warning"`
	Info      []domain.ValidationFlag `json:"info"`
	Stale     bool                    `json:"stale"`
	Declarant bool                    `json:"needs_declarant"`
}

func (rt *Router) validation(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())
	projectID := r.PathValue("projectID")

	report, err := rt.validator.Report(r.Context(), ident, projectID)
	if rt.metrics != nil {
		rt.metrics.RecordValidation(serviceName, report != nil && report.Stale, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, validationResponse{
		Result:    report.Result,
		Blocking:  report.Buckets.Blocking,
		Warning:   report.Buckets.Warning,
		Info:      report.Buckets.Info,
		Stale:     report.Stale,
		Declarant: report.Result.NeedsDeclarant(),
	})
}

func (rt *Router) submitDeclarant(w http.ResponseWriter, r *http.Request) {
	ident := identityFromContext(r.Context())

	var info domain.DeclarantInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	report, err := rt.exporter.SubmitDeclarant(r.Context(), ident, r.PathValue("projectID"), info)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, validationResponse{
		Result:    report.Result,
		Blocking:  report.Buckets.Blocking,
		Warning:   report.Buckets.Warning,
		Info:      report.Buckets.Info,
		Stale:     report.Stale,
		Declarant: report.Result.NeedsDeclarant(),
	})
}
