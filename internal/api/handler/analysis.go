package handler

import (
	"net/http"

	"github.com/kiranshivaraju/contractlens/internal/api/response"
)

// NewAnalyzeHandler returns POST /api/v1/contracts/{contractID}/analyze.
// The run continues in the background; the response is 202 with the contract.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := requireTenant(w, r)
		if !ok {
			return
		}
		contractID, ok := contractIDParam(w, r)
		if !ok {
			return
		}

		contract, err := svc.TriggerAnalysis(r.Context(), contractID, tenantID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		response.Accepted(w, map[string]any{
			"contract_id": contract.ID,
			"status":      contract.Status,
		})
	}
}

// NewAnalysisStatusHandler returns GET /api/v1/contracts/{contractID}/analysis.
func NewAnalysisStatusHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := requireTenant(w, r)
		if !ok {
			return
		}
		contractID, ok := contractIDParam(w, r)
		if !ok {
			return
		}

		status, err := svc.GetAnalysisStatus(r.Context(), contractID, tenantID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		response.JSON(w, status)
	}
}
