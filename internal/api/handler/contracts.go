package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/contractlens/internal/ai"
	"github.com/kiranshivaraju/contractlens/internal/api/response"
	"github.com/kiranshivaraju/contractlens/internal/extract"
	"github.com/kiranshivaraju/contractlens/internal/storage"
	"github.com/kiranshivaraju/contractlens/internal/store"
	"github.com/kiranshivaraju/contractlens/pkg/models"
)

// multipartOverhead is the allowance for form boundaries and headers on top of the file itself.
const multipartOverhead = 1 << 20

var (
	pdfMagic  = []byte("%PDF-")
	docxMagic = []byte("PK\x03\x04")
)

// Analyzer is the part of the analysis service the handlers depend on.
type Analyzer interface {
	TriggerAnalysis(ctx context.Context, contractID, tenantID uuid.UUID) (*models.Contract, error)
	GetAnalysisStatus(ctx context.Context, contractID, tenantID uuid.UUID) (*ai.AnalysisStatus, error)
	GetAnalysis(ctx context.Context, contractID uuid.UUID) (*models.Analysis, error)
}

// ContractHandler serves the contract upload and management endpoints.
type ContractHandler struct {
	store     store.Store
	files     storage.Storage
	analyzer  Analyzer
	maxUpload int64
}

// NewContractHandler creates a ContractHandler. maxUpload is the largest accepted file in bytes.
func NewContractHandler(st store.Store, files storage.Storage, analyzer Analyzer, maxUpload int64) *ContractHandler {
	return &ContractHandler{store: st, files: files, analyzer: analyzer, maxUpload: maxUpload}
}

type contractResponse struct {
	*models.Contract
	Analysis *models.Analysis `json:"analysis,omitempty"`
}

// Upload handles POST /api/v1/contracts with a multipart "file" field.
func (h *ContractHandler) Upload(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fileTooLarge(w)
			return
		}
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Expected a multipart form upload", nil)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "MISSING_FILE", "No file provided", nil)
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		h.fileTooLarge(w)
		return
	}

	ft, err := extract.DetectFileType(header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read uploaded file", nil)
		return
	}
	if int64(len(data)) > h.maxUpload {
		h.fileTooLarge(w)
		return
	}
	if len(data) == 0 {
		response.Error(w, http.StatusBadRequest, "EMPTY_FILE", "The uploaded file is empty", nil)
		return
	}
	if !matchesMagic(data, ft) {
		response.Error(w, http.StatusBadRequest, "INVALID_FILE",
			"File content does not match its declared type", nil)
		return
	}

	fileName := filepath.Base(header.Filename)
	key := storage.GenerateKey(tenantID, fileName)
	contentType := extract.ContentType(ft)
	if err := h.files.Save(r.Context(), key, data, contentType); err != nil {
		writeServiceError(w, r, err)
		return
	}

	now := time.Now().UTC()
	contract := &models.Contract{
		ID:          uuid.New(),
		TenantID:    tenantID,
		FileName:    fileName,
		FileKey:     key,
		FileSize:    int64(len(data)),
		ContentType: contentType,
		Status:      models.ContractStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.CreateContract(r.Context(), contract); err != nil {
		if delErr := h.files.Delete(context.Background(), key); delErr != nil {
			slog.Warn("removing orphaned upload", "key", key, "error", delErr)
		}
		writeServiceError(w, r, err)
		return
	}

	slog.Info("contract uploaded",
		"contract_id", contract.ID,
		"tenant_id", tenantID,
		"file_size", contract.FileSize,
		"file_type", ft)

	response.Created(w, contract)
}

func (h *ContractHandler) fileTooLarge(w http.ResponseWriter) {
	response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
		"File too large. Maximum size is "+strconv.FormatInt(h.maxUpload>>20, 10)+"MB", nil)
}

func matchesMagic(data []byte, ft extract.FileType) bool {
	switch ft {
	case extract.FileTypePDF:
		return bytes.HasPrefix(data, pdfMagic)
	case extract.FileTypeDOCX:
		return bytes.HasPrefix(data, docxMagic)
	default:
		return false
	}
}

// List handles GET /api/v1/contracts.
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	status := q.Get("status")
	switch status {
	case "", models.ContractStatusPending, models.ContractStatusProcessing,
		models.ContractStatusCompleted, models.ContractStatusFailed:
	default:
		response.Error(w, http.StatusBadRequest, "INVALID_STATUS",
			"status must be one of pending, processing, completed, failed", nil)
		return
	}

	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(q.Get("limit"), 20)
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	contracts, total, err := h.store.ListContracts(r.Context(), store.ContractFilter{
		TenantID: tenantID,
		Status:   status,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Collection(w, contracts, response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: page*limit < total,
	})
}

// Get handles GET /api/v1/contracts/{contractID}, including the analysis when one exists.
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	contractID, ok := contractIDParam(w, r)
	if !ok {
		return
	}

	contract, err := h.store.GetContract(r.Context(), contractID, tenantID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := contractResponse{Contract: contract}
	if contract.Status == models.ContractStatusCompleted {
		a, err := h.analyzer.GetAnalysis(r.Context(), contract.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			writeServiceError(w, r, err)
			return
		}
		out.Analysis = a
	}

	response.JSON(w, out)
}

// Delete handles DELETE /api/v1/contracts/{contractID}. The stored file is
// removed on a best-effort basis; the record is always deleted.
func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	contractID, ok := contractIDParam(w, r)
	if !ok {
		return
	}

	contract, err := h.store.GetContract(r.Context(), contractID, tenantID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if contract.Status == models.ContractStatusProcessing {
		writeServiceError(w, r, store.ErrAnalysisInProgress)
		return
	}

	if err := h.files.Delete(r.Context(), contract.FileKey); err != nil {
		slog.Warn("deleting stored file", "contract_id", contract.ID, "key", contract.FileKey, "error", err)
	}

	if err := h.store.DeleteContract(r.Context(), contract.ID, tenantID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.NoContent(w)
}

func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
