package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Session         *domain.Session `json:"session"`
	CompanionAppURL string          `json:"companion_app_url,omitempty"`
}

func (rt *Router) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	session, err := rt.sessions.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, signInResponse{
		Session:         session,
		CompanionAppURL: rt.companionAppURL,
	})
}

func (rt *Router) signOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing bearer token"})
		return
	}

	if err := rt.sessions.SignOut(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// currentUser echoes the session behind the presented token so the SPA
// can restore authentication state on page load.
func (rt *Router) currentUser(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, domain.WrapError(domain.ErrUnauthorized, "http.current_user", errMissingToken))
		return
	}

	session, err := rt.sessions.Resolve(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

type flagInfo struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
}

// The catalogue mirrors the codes the backend validation service emits,
// so the review page can explain a flag without an extra round trip.
var flagCatalogue = []flagInfo{
	{domain.CodeMissingRequired, string(domain.SeverityBlocking), "A required report field is empty."},
	{domain.CodeMissingDeclarant, string(domain.SeverityBlocking), "Declarant identification is incomplete."},
	{domain.CodeMissingEmissionFactor, string(domain.SeverityBlocking), "A goods line has no emission factor."},
	{domain.CodeMissingConsumption, string(domain.SeverityBlocking), "A goods line has no consumption quantity."},
	{domain.CodeMissingPeriod, string(domain.SeverityBlocking), "The reporting period is not set."},
	{domain.CodeUnitInvalid, string(domain.SeverityWarning), "A quantity uses an unrecognized unit."},
	{domain.CodeUnitMixed, string(domain.SeverityWarning), "Quantities mix incompatible units."},
	{domain.CodeTotalLineMismatch, string(domain.SeverityWarning), "Line totals do not add up to the document total."},
	{domain.CodePeriodOverlap, string(domain.SeverityWarning), "Two documents cover overlapping periods."},
	{domain.CodeIncompleteExtraction, string(domain.SeverityInfo), "Some fields could not be extracted automatically."},
}

func (rt *Router) flagCatalogue(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"flags": flagCatalogue})
}
