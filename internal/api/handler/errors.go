package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/contractlens/internal/ai"
	mw "github.com/kiranshivaraju/contractlens/internal/api/middleware"
	"github.com/kiranshivaraju/contractlens/internal/api/response"
	"github.com/kiranshivaraju/contractlens/internal/extract"
	"github.com/kiranshivaraju/contractlens/internal/store"
)

// writeServiceError maps domain errors to HTTP status codes and machine codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "CONTRACT_NOT_FOUND", "Contract not found", nil)
	case errors.Is(err, store.ErrAnalysisInProgress):
		response.Error(w, http.StatusConflict, "ANALYSIS_IN_PROGRESS",
			"An analysis of this contract is already running", nil)
	case errors.Is(err, store.ErrUsageLimitReached):
		response.Error(w, http.StatusForbidden, "LIMIT_REACHED",
			"Monthly analysis limit reached", nil)
	case errors.Is(err, ai.ErrConfiguration):
		response.Error(w, http.StatusServiceUnavailable, "AI_NOT_CONFIGURED",
			"No AI provider is configured", nil)
	case errors.Is(err, extract.ErrUnsupportedFileType):
		response.Error(w, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE",
			"Only PDF and DOCX files are supported", nil)
	case errors.Is(err, ai.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
			"The AI provider is not available", nil)
	case errors.Is(err, ai.ErrInferenceTimeout):
		response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
			"AI analysis took too long and was cancelled", nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

func requireTenant(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	tenantID, ok := mw.GetTenantID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
	}
	return tenantID, ok
}

func contractIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "contractID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_CONTRACT_ID", "Contract ID must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}
